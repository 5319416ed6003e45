package userRepo

import (
	"context"
	"errors"

	"caresaviour/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository defines read access to customer profiles.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
}
