package repository

import (
	"context"

	"warbler/internal/domain/entity"

	"github.com/google/uuid"
)

// FollowRepository defines persistence for follow edges.
type FollowRepository interface {
	// Create persists the edge. An existing identical edge is an integrity violation.
	Create(ctx context.Context, follow *entity.Follow) error

	// Delete removes the edge, returning domainerrors.ErrFollowNotFound when it does not exist.
	Delete(ctx context.Context, followedID, followingID uuid.UUID) error

	Exists(ctx context.Context, followedID, followingID uuid.UUID) (bool, error)

	// Followers returns the users following userID.
	Followers(ctx context.Context, userID uuid.UUID) ([]*entity.User, error)

	// Following returns the users userID follows.
	Following(ctx context.Context, userID uuid.UUID) ([]*entity.User, error)

	// FollowingIDs returns the ids of the users userID follows.
	FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	// DeleteByUser removes every edge touching userID, in either direction.
	DeleteByUser(ctx context.Context, userID uuid.UUID) error

	// CountByUser counts edges touching userID, in either direction.
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	DeleteAll(ctx context.Context) error
}
