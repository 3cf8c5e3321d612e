package repositories

import (
	"context"

	"stylesync/internal/models"
)

// UserRepository defines the interface for user data access.
// Create must return ErrDuplicate when the email is already taken; the
// uniqueness check belongs to the store, not the caller.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
