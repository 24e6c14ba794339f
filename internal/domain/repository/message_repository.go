package repository

import (
	"context"

	"warbler/internal/domain/entity"

	"github.com/google/uuid"
)

// MessageRepository defines persistence for messages.
// Deleting a message always deletes the likes that reference it in the same transaction.
type MessageRepository interface {
	// Create persists a new message. Empty text or a missing owner is an integrity violation.
	Create(ctx context.Context, message *entity.Message) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error)

	// Delete removes the message and its likes.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByUser returns the user's messages, most recent first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Message, error)

	// ListByUsers returns up to limit messages owned by any of userIDs, most recent first.
	ListByUsers(ctx context.Context, userIDs []uuid.UUID, limit int) ([]*entity.Message, error)

	// DeleteByUser removes every message the user owns, with their likes.
	DeleteByUser(ctx context.Context, userID uuid.UUID) error

	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	DeleteAll(ctx context.Context) error
}
