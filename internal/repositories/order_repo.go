package repositories

import (
	"context"

	"stylesync/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	List(ctx context.Context, page models.Page) ([]models.Order, error)
	ListByUser(ctx context.Context, userID string, page models.Page) ([]models.Order, error)
	// SetStatus writes status unconditionally. An unknown id is not an error;
	// it yields a zero MatchedCount.
	SetStatus(ctx context.Context, id, status string) (models.UpdateResult, error)
}

// Set bundles one implementation of every repository.
type Set struct {
	Users    UserRepository
	Products ProductRepository
	Reviews  ReviewRepository
	Orders   OrderRepository
}
