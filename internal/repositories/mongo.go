package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stylesync/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names inside the Mongo database.
const (
	UsersCollection    = "users"
	ProductsCollection = "products"
	ReviewsCollection  = "reviews"
	OrdersCollection   = "orders"
)

// NewMongoSet returns repositories backed by the collections of db.
func NewMongoSet(db *mongo.Database) Set {
	return Set{
		Users:    NewMongoUserRepository(db.Collection(UsersCollection)),
		Products: NewMongoProductRepository(db.Collection(ProductsCollection)),
		Reviews:  NewMongoReviewRepository(db.Collection(ReviewsCollection)),
		Orders:   NewMongoOrderRepository(db.Collection(OrdersCollection)),
	}
}

func findOptions(p models.Page) *options.FindOptions {
	opts := options.Find()
	if p.Offset > 0 {
		opts.SetSkip(int64(p.Offset))
	}
	if p.Limit > 0 {
		opts.SetLimit(int64(p.Limit))
	}
	return opts
}

// objectID parses a hex id. Ids that are not ObjectIDs cannot match any
// document, so they are reported as not found.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("id %q: %w", id, ErrNotFound)
	}
	return oid, nil
}

type userDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Name     string             `bson:"name"`
	Email    string             `bson:"email"`
	Password string             `bson:"password"`
	Role     string             `bson:"role"`
}

func (d userDocument) model() *models.User {
	return &models.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		Role:         d.Role,
	}
}

// MongoUserRepository stores users in a Mongo collection with a unique
// index on email (see database.EnsureIndexes).
type MongoUserRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository creates a new instance of MongoUserRepository.
func NewMongoUserRepository(coll *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{coll: coll}
}

// Create inserts the user and sets its ID.
func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	doc := userDocument{
		ID:       primitive.NewObjectID(),
		Name:     user.Name,
		Email:    user.Email,
		Password: user.PasswordHash,
		Role:     user.Role,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user with email %s: %w", user.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = doc.ID.Hex()
	return nil
}

// GetByEmail retrieves a user by email.
func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, "email "+email)
}

// GetByID retrieves a user by ID.
func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid}, "ID "+id)
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M, desc string) (*models.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user with %s: %w", desc, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user with %s: %w", desc, err)
	}
	return doc.model(), nil
}

type productDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Image       string             `bson:"image"`
	Title       string             `bson:"title"`
	Rating      float64            `bson:"rating"`
	Price       float64            `bson:"price"`
	Brand       string             `bson:"brand"`
	Description string             `bson:"description"`
	Sale        bool               `bson:"sale"`
	SalePrice   float64            `bson:"salePrice"`
	Category    string             `bson:"category,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d productDocument) model() models.Product {
	return models.Product{
		ID:          d.ID.Hex(),
		Image:       d.Image,
		Title:       d.Title,
		Rating:      d.Rating,
		Price:       d.Price,
		Brand:       d.Brand,
		Description: d.Description,
		Sale:        d.Sale,
		SalePrice:   d.SalePrice,
		Category:    d.Category,
		CreatedAt:   d.CreatedAt,
	}
}

// MongoProductRepository stores products in a Mongo collection.
type MongoProductRepository struct {
	coll *mongo.Collection
}

// NewMongoProductRepository creates a new instance of MongoProductRepository.
func NewMongoProductRepository(coll *mongo.Collection) *MongoProductRepository {
	return &MongoProductRepository{coll: coll}
}

// List returns products in natural (insertion) order.
func (r *MongoProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}

	cur, err := r.coll.Find(ctx, query, findOptions(filter.Page))
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	var docs []productDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]models.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, d.model())
	}
	return products, nil
}

// GetByID retrieves a product by ID.
func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc productDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	product := doc.model()
	return &product, nil
}

// Create inserts the product and sets its ID.
func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	doc := productDocument{
		ID:          primitive.NewObjectID(),
		Image:       product.Image,
		Title:       product.Title,
		Rating:      product.Rating,
		Price:       product.Price,
		Brand:       product.Brand,
		Description: product.Description,
		Sale:        product.Sale,
		SalePrice:   product.SalePrice,
		Category:    product.Category,
		CreatedAt:   product.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	product.ID = doc.ID.Hex()
	return nil
}

type reviewDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Review    string             `bson:"review"`
	ProductID string             `bson:"productId"`
	UserName  string             `bson:"userName"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// MongoReviewRepository stores reviews in a Mongo collection.
type MongoReviewRepository struct {
	coll *mongo.Collection
}

// NewMongoReviewRepository creates a new instance of MongoReviewRepository.
func NewMongoReviewRepository(coll *mongo.Collection) *MongoReviewRepository {
	return &MongoReviewRepository{coll: coll}
}

// Create inserts the review and sets its ID.
func (r *MongoReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
	doc := reviewDocument{
		ID:        primitive.NewObjectID(),
		Review:    review.Review,
		ProductID: review.ProductID,
		UserName:  review.UserName,
		CreatedAt: review.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	review.ID = doc.ID.Hex()
	return nil
}

// ListByProduct returns the reviews whose productId equals productID.
func (r *MongoReviewRepository) ListByProduct(ctx context.Context, productID string) ([]models.Review, error) {
	cur, err := r.coll.Find(ctx, bson.M{"productId": productID})
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews for product %s: %w", productID, err)
	}
	var docs []reviewDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	reviews := make([]models.Review, 0, len(docs))
	for _, d := range docs {
		reviews = append(reviews, models.Review{
			ID:        d.ID.Hex(),
			Review:    d.Review,
			ProductID: d.ProductID,
			UserName:  d.UserName,
			CreatedAt: d.CreatedAt,
		})
	}
	return reviews, nil
}

// orderDocument keeps caller-supplied fields inline, next to the
// server-owned ones in a single flat document.
type orderDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"userId,omitempty"`
	Status    string             `bson:"status,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	Fields    bson.M             `bson:",inline"`
}

func (d orderDocument) model() models.Order {
	fields := make(map[string]any, len(d.Fields))
	for k, v := range d.Fields {
		fields[k] = plain(v)
	}
	return models.Order{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Status:    d.Status,
		Fields:    fields,
		CreatedAt: d.CreatedAt,
	}
}

// plain converts decoded BSON containers into the map and slice types the
// other stores return.
func plain(v any) any {
	switch t := v.(type) {
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	case primitive.M:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plain(e)
		}
		return out
	case primitive.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = plain(e.Value)
		}
		return out
	default:
		return v
	}
}

// MongoOrderRepository stores orders in a Mongo collection.
type MongoOrderRepository struct {
	coll *mongo.Collection
}

// NewMongoOrderRepository creates a new instance of MongoOrderRepository.
func NewMongoOrderRepository(coll *mongo.Collection) *MongoOrderRepository {
	return &MongoOrderRepository{coll: coll}
}

// Create inserts the order and sets its ID.
func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	doc := orderDocument{
		ID:        primitive.NewObjectID(),
		UserID:    order.UserID,
		Status:    order.Status,
		CreatedAt: order.CreatedAt,
		Fields:    bson.M(order.Fields),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	order.ID = doc.ID.Hex()
	return nil
}

// List returns all orders.
func (r *MongoOrderRepository) List(ctx context.Context, page models.Page) ([]models.Order, error) {
	return r.find(ctx, bson.M{}, page)
}

// ListByUser returns the orders whose userId equals userID.
func (r *MongoOrderRepository) ListByUser(ctx context.Context, userID string, page models.Page) ([]models.Order, error) {
	return r.find(ctx, bson.M{"userId": userID}, page)
}

func (r *MongoOrderRepository) find(ctx context.Context, filter bson.M, page models.Page) ([]models.Order, error) {
	cur, err := r.coll.Find(ctx, filter, findOptions(page))
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	var docs []orderDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	orders := make([]models.Order, 0, len(docs))
	for _, d := range docs {
		orders = append(orders, d.model())
	}
	return orders, nil
}

// SetStatus runs a single $set on the order.
func (r *MongoOrderRepository) SetStatus(ctx context.Context, id, status string) (models.UpdateResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return models.UpdateResult{}, nil
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("failed to update status for order %s: %w", id, err)
	}
	return models.UpdateResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}
