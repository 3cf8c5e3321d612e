package repositories

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"stylesync/internal/models"

	"github.com/google/uuid"
)

// NewMemorySet returns repositories that keep everything in process memory.
func NewMemorySet() Set {
	return Set{
		Users:    NewMemoryUserRepository(),
		Products: NewMemoryProductRepository(),
		Reviews:  NewMemoryReviewRepository(),
		Orders:   NewMemoryOrderRepository(),
	}
}

// MemoryUserRepository is an in-memory implementation of UserRepository.
type MemoryUserRepository struct {
	users   map[string]models.User
	byEmail map[string]string
	mu      sync.RWMutex
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:   make(map[string]models.User),
		byEmail: make(map[string]string),
	}
}

// Create adds a user. The email check and the insert happen under one lock.
func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return fmt.Errorf("user with email %s: %w", user.Email, ErrDuplicate)
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	r.users[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

// GetByEmail returns a user by email.
func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
	}
	user := r.users[id]
	return &user, nil
}

// GetByID returns a user by ID.
func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
	}
	return &user, nil
}

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// Products are kept in insertion order.
type MemoryProductRepository struct {
	products []models.Product
	index    map[string]int
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		index: make(map[string]int),
	}
}

// List returns products matching the filter.
func (r *MemoryProductRepository) List(_ context.Context, filter models.ProductFilter) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		productList = append(productList, p)
	}
	return models.Apply(productList, filter.Page), nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	product := r.products[i]
	return &product, nil
}

// Create adds a new product.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	r.index[product.ID] = len(r.products)
	r.products = append(r.products, *product)
	return nil
}

// MemoryReviewRepository is an in-memory implementation of ReviewRepository.
type MemoryReviewRepository struct {
	reviews []models.Review
	mu      sync.RWMutex
}

// NewMemoryReviewRepository creates a new instance of MemoryReviewRepository.
func NewMemoryReviewRepository() *MemoryReviewRepository {
	return &MemoryReviewRepository{}
}

// Create adds a new review.
func (r *MemoryReviewRepository) Create(_ context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
	r.reviews = append(r.reviews, *review)
	return nil
}

// ListByProduct returns the reviews of one product.
func (r *MemoryReviewRepository) ListByProduct(_ context.Context, productID string) ([]models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reviews := make([]models.Review, 0)
	for _, rv := range r.reviews {
		if rv.ProductID == productID {
			reviews = append(reviews, rv)
		}
	}
	return reviews, nil
}

// MemoryOrderRepository is an in-memory implementation of OrderRepository.
type MemoryOrderRepository struct {
	orders []models.Order
	index  map[string]int
	mu     sync.RWMutex
}

// NewMemoryOrderRepository creates a new instance of MemoryOrderRepository.
func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		index: make(map[string]int),
	}
}

// Create adds a new order.
func (r *MemoryOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	stored := *order
	stored.Fields = maps.Clone(order.Fields)
	r.index[order.ID] = len(r.orders)
	r.orders = append(r.orders, stored)
	return nil
}

// List returns all orders.
func (r *MemoryOrderRepository) List(_ context.Context, page models.Page) ([]models.Order, error) {
	return r.filter(func(models.Order) bool { return true }, page), nil
}

// ListByUser returns the orders placed by one user.
func (r *MemoryOrderRepository) ListByUser(_ context.Context, userID string, page models.Page) ([]models.Order, error) {
	return r.filter(func(o models.Order) bool { return o.UserID == userID }, page), nil
}

func (r *MemoryOrderRepository) filter(keep func(models.Order) bool, page models.Page) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if keep(o) {
			o.Fields = maps.Clone(o.Fields)
			orderList = append(orderList, o)
		}
	}
	return models.Apply(orderList, page)
}

// SetStatus updates the status of an order.
func (r *MemoryOrderRepository) SetStatus(_ context.Context, id, status string) (models.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return models.UpdateResult{}, nil
	}
	res := models.UpdateResult{MatchedCount: 1}
	if r.orders[i].Status != status {
		r.orders[i].Status = status
		res.ModifiedCount = 1
	}
	return res, nil
}
