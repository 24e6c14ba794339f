// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"warbler/internal/domain/entity"

	"github.com/google/uuid"
)

// UserRepository defines the standard operations for user persistence.
// Finders return domainerrors.ErrUserNotFound when no row matches.
type UserRepository interface {
	// Create persists a new user. Duplicate username or email is an integrity violation.
	Create(ctx context.Context, user *entity.User) error

	// Update saves the mutable profile fields of an existing user.
	Update(ctx context.Context, user *entity.User) error

	// Delete removes the user row only. Dependent rows are the caller's responsibility.
	Delete(ctx context.Context, id uuid.UUID) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// Search returns users whose username contains query, ordered by username.
	Search(ctx context.Context, query string, limit int) ([]*entity.User, error)

	// DeleteAll empties the users table.
	DeleteAll(ctx context.Context) error
}
