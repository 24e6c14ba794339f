// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"warbler/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// SignupInput defines the data required to create an account.
type SignupInput struct {
	Username string `validate:"required,max=50"`
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required"`
	ImageURL string `validate:"omitempty,max=2048"`
}

// UpdateProfileInput carries the editable profile fields. Empty Username or Email keep the current
// value; empty image fields fall back to the configured placeholders.
type UpdateProfileInput struct {
	Username        string `validate:"omitempty,max=50"`
	Email           string `validate:"omitempty,email,max=255"`
	ImageURL        string `validate:"omitempty,max=2048"`
	HeaderImageURL  string `validate:"omitempty,max=2048"`
	Bio             string
	Location        string `validate:"max=100"`
	CurrentPassword string `validate:"required"`
}

// AccountUsecase defines user account operations: signup, authentication and profile management.
type AccountUsecase interface {
	// Signup stores a new user with a hashed password. A taken username or email is an integrity violation.
	Signup(ctx context.Context, input *SignupInput) (*entity.User, error)

	// Authenticate returns the user when the password matches. An unknown username or a wrong password
	// yields (nil, false, nil). A stored hash that cannot be read is a validation error.
	Authenticate(ctx context.Context, username, password string) (*entity.User, bool, error)

	GetUser(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	GetUserByUsername(ctx context.Context, username string) (*entity.User, error)

	// UpdateProfile re-authenticates with CurrentPassword before saving.
	UpdateProfile(ctx context.Context, userID uuid.UUID, input *UpdateProfileInput) (*entity.User, error)

	// DeleteUser applies the configured deletion policy.
	DeleteUser(ctx context.Context, userID uuid.UUID) error

	SearchUsers(ctx context.Context, query string) ([]*entity.User, error)

	// ResetAll deletes every like, follow, message and user.
	ResetAll(ctx context.Context) error
}
