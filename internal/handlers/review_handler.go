package handlers

import (
	"stylesync/internal/models"
	"stylesync/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ReviewHandler handles HTTP requests for product reviews.
type ReviewHandler struct {
	service  *services.ReviewService
	validate *validator.Validate
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(service *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the review routes. guard may be nil.
func (h *ReviewHandler) RegisterRoutes(router fiber.Router, guard fiber.Handler) {
	reviewRoutes := router.Group("/reviews")
	reviewRoutes.Post("/", withGuard(guard, h.HandleCreateReview)...)
	reviewRoutes.Get("/:productId", h.HandleGetReviewsByProduct)
}

// CreateReviewRequest represents the request body for a review.
type CreateReviewRequest struct {
	Review    string `json:"review" validate:"required"`
	ProductID string `json:"productId" validate:"required"`
	UserName  string `json:"userName" validate:"required,max=100"`
}

// HandleCreateReview posts a review.
func (h *ReviewHandler) HandleCreateReview(c *fiber.Ctx) error {
	var req CreateReviewRequest
	if handled, err := parseBody(c, h.validate, &req); handled {
		return err
	}

	review := &models.Review{
		Review:    req.Review,
		ProductID: req.ProductID,
		UserName:  req.UserName,
	}
	if err := h.service.CreateReview(c.UserContext(), review); err != nil {
		return failInternal(c, "Could not post review", err)
	}
	return respond(c, fiber.StatusOK, "Review posted successfully", review)
}

// HandleGetReviewsByProduct lists the reviews of a product. The 201 status
// is what existing clients of this endpoint expect.
func (h *ReviewHandler) HandleGetReviewsByProduct(c *fiber.Ctx) error {
	reviews, err := h.service.ListReviewsByProduct(c.UserContext(), c.Params("productId"))
	if err != nil {
		return failInternal(c, "Internal server error", err)
	}
	return respond(c, fiber.StatusCreated, "Reviews retrieved successfully", reviews)
}
