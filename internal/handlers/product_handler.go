package handlers

import (
	"errors"

	"stylesync/internal/models"
	"stylesync/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product routes. guard wraps the mutating
// route and may be nil.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, guard fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", withGuard(guard, h.HandleCreateProduct)...)
}

// CreateProductRequest represents the request body for a new product.
type CreateProductRequest struct {
	Image       string  `json:"image"`
	Title       string  `json:"title" validate:"required,max=255"`
	Rating      float64 `json:"rating" validate:"gte=0,lte=5"`
	Price       float64 `json:"price" validate:"gte=0"`
	Brand       string  `json:"brand"`
	Description string  `json:"description"`
	Sale        bool    `json:"sale"`
	SalePrice   float64 `json:"salePrice" validate:"gte=0"`
	Category    string  `json:"category"`
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req CreateProductRequest
	if handled, err := parseBody(c, h.validate, &req); handled {
		return err
	}

	product := &models.Product{
		Image:       req.Image,
		Title:       req.Title,
		Rating:      req.Rating,
		Price:       req.Price,
		Brand:       req.Brand,
		Description: req.Description,
		Sale:        req.Sale,
		SalePrice:   req.SalePrice,
		Category:    req.Category,
	}
	if err := h.service.CreateProduct(c.UserContext(), product); err != nil {
		return failInternal(c, "Could not create product", err)
	}
	return respond(c, fiber.StatusCreated, "Products created successfully", product)
}

// HandleGetProducts lists products, optionally filtered by ?category.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid pagination", err)
	}

	products, err := h.service.ListProducts(c.UserContext(), models.ProductFilter{
		Category: c.Query("category"),
		Page:     page,
	})
	if err != nil {
		return failInternal(c, "Failed to retrieve products", err)
	}
	return respond(c, fiber.StatusOK, "Products retrieved successfully", products)
}

// HandleGetProductByID returns one product. A missing product is still a
// 200, with null data.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return respond(c, fiber.StatusOK, "Product not found", (*models.Product)(nil))
		}
		return failInternal(c, "Failed to retrieve product", err)
	}
	return respond(c, fiber.StatusOK, "Products retrieved successfully", product)
}

func withGuard(guard fiber.Handler, h fiber.Handler) []fiber.Handler {
	if guard == nil {
		return []fiber.Handler{h}
	}
	return []fiber.Handler{guard, h}
}
