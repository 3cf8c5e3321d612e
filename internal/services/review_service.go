package services

import (
	"context"

	"stylesync/internal/models"
	"stylesync/internal/repositories"
)

// ReviewService handles product reviews.
type ReviewService struct {
	repo repositories.ReviewRepository
}

// NewReviewService creates a new ReviewService.
func NewReviewService(repo repositories.ReviewRepository) *ReviewService {
	return &ReviewService{repo: repo}
}

// CreateReview stores a review. The product it points at is not checked.
func (s *ReviewService) CreateReview(ctx context.Context, review *models.Review) error {
	review.ID = ""
	return s.repo.Create(ctx, review)
}

// ListReviewsByProduct returns the reviews of one product.
func (s *ReviewService) ListReviewsByProduct(ctx context.Context, productID string) ([]models.Review, error) {
	return s.repo.ListByProduct(ctx, productID)
}
