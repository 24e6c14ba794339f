package repository

import (
	"context"

	"warbler/internal/domain/entity"

	"github.com/google/uuid"
)

// LikeRepository defines persistence for likes.
type LikeRepository interface {
	// Create persists the like. Liking the same message twice is an integrity violation.
	Create(ctx context.Context, like *entity.Like) error

	// Find returns domainerrors.ErrLikeNotFound when userID has not liked messageID.
	Find(ctx context.Context, userID, messageID uuid.UUID) (*entity.Like, error)

	// Delete removes the like, returning domainerrors.ErrLikeNotFound when it does not exist.
	Delete(ctx context.Context, userID, messageID uuid.UUID) error

	// LikedMessages returns the messages userID has liked.
	LikedMessages(ctx context.Context, userID uuid.UUID) ([]*entity.Message, error)

	// DeleteByUser removes the likes userID gave.
	DeleteByUser(ctx context.Context, userID uuid.UUID) error

	// CountByUser counts the likes userID gave.
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	DeleteAll(ctx context.Context) error
}
