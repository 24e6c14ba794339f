package usecase

import (
	"context"

	"warbler/internal/domain/entity"

	"github.com/google/uuid"
)

// SocialGraphUsecase exposes the follow and like graph. Projections of an unknown user are empty, not errors.
type SocialGraphUsecase interface {
	// MessagesOf returns the user's messages, most recent first.
	MessagesOf(ctx context.Context, userID uuid.UUID) ([]*entity.Message, error)

	// FollowersOf returns the users following userID.
	FollowersOf(ctx context.Context, userID uuid.UUID) ([]*entity.User, error)

	// FollowingOf returns the users userID follows.
	FollowingOf(ctx context.Context, userID uuid.UUID) ([]*entity.User, error)

	// IsFollowedBy reports whether otherID follows userID.
	IsFollowedBy(ctx context.Context, userID, otherID uuid.UUID) (bool, error)

	// IsFollowing reports whether userID follows otherID.
	IsFollowing(ctx context.Context, userID, otherID uuid.UUID) (bool, error)

	// LikesOf returns the messages the user has liked.
	LikesOf(ctx context.Context, userID uuid.UUID) ([]*entity.Message, error)

	Follow(ctx context.Context, followerID, followedID uuid.UUID) error
	Unfollow(ctx context.Context, followerID, followedID uuid.UUID) error

	Like(ctx context.Context, userID, messageID uuid.UUID) error
	Unlike(ctx context.Context, userID, messageID uuid.UUID) error

	// ToggleLike likes or unlikes the message and reports whether it is liked afterwards.
	// Liking one's own message is forbidden.
	ToggleLike(ctx context.Context, userID, messageID uuid.UUID) (bool, error)

	// Timeline returns messages of the users userID follows and of userID itself, most recent first.
	// A non-positive limit uses the configured default.
	Timeline(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Message, error)
}
