package impl

import (
	"context"
	"log/slog"

	"warbler/config"
	"warbler/internal/domain/entity"
	domainerrors "warbler/internal/domain/errors"
	"warbler/internal/domain/repository"
	logs "warbler/internal/infra/log"
	"warbler/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// socialGraphService implements the SocialGraphUsecase interface.
// Projections read straight from the repositories; mutations run in a transaction.
type socialGraphService struct {
	txManager     repository.TransactionManager
	messageRepo   repository.MessageRepository
	followRepo    repository.FollowRepository
	likeRepo      repository.LikeRepository
	timelineLimit int
	logger        *slog.Logger
}

// SocialGraphServiceParams holds dependencies for SocialGraphService, injected by Fx.
type SocialGraphServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	MessageRepo repository.MessageRepository
	FollowRepo  repository.FollowRepository
	LikeRepo    repository.LikeRepository
	Config      *config.Config
	Logger      *slog.Logger
}

// NewSocialGraphService is the constructor for socialGraphService.
func NewSocialGraphService(params SocialGraphServiceParams) usecase.SocialGraphUsecase {
	limit := config.DefaultTimelineLimit
	if params.Config != nil && params.Config.Timeline != nil && params.Config.Timeline.Limit > 0 {
		limit = params.Config.Timeline.Limit
	}

	return &socialGraphService{
		txManager:     params.TxManager,
		messageRepo:   params.MessageRepo,
		followRepo:    params.FollowRepo,
		likeRepo:      params.LikeRepo,
		timelineLimit: limit,
		logger:        params.Logger,
	}
}

func (srv *socialGraphService) log(ctx context.Context) *slog.Logger {
	return logs.FromContextOrDefault(ctx, srv.logger)
}

func (srv *socialGraphService) MessagesOf(ctx context.Context, userID uuid.UUID) ([]*entity.Message, error) {
	messages, err := srv.messageRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list messages of user")
	}

	return messages, nil
}

func (srv *socialGraphService) FollowersOf(ctx context.Context, userID uuid.UUID) ([]*entity.User, error) {
	users, err := srv.followRepo.Followers(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list followers")
	}

	return users, nil
}

func (srv *socialGraphService) FollowingOf(ctx context.Context, userID uuid.UUID) ([]*entity.User, error) {
	users, err := srv.followRepo.Following(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list following")
	}

	return users, nil
}

func (srv *socialGraphService) IsFollowedBy(ctx context.Context, userID, otherID uuid.UUID) (bool, error) {
	exists, err := srv.followRepo.Exists(ctx, userID, otherID)
	if err != nil {
		return false, errors.Wrap(err, "failed to check follower")
	}

	return exists, nil
}

func (srv *socialGraphService) IsFollowing(ctx context.Context, userID, otherID uuid.UUID) (bool, error) {
	exists, err := srv.followRepo.Exists(ctx, otherID, userID)
	if err != nil {
		return false, errors.Wrap(err, "failed to check following")
	}

	return exists, nil
}

func (srv *socialGraphService) LikesOf(ctx context.Context, userID uuid.UUID) ([]*entity.Message, error) {
	messages, err := srv.likeRepo.LikedMessages(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list liked messages")
	}

	return messages, nil
}

// Follow records that followerID follows followedID. Self-follow is allowed.
func (srv *socialGraphService) Follow(ctx context.Context, followerID, followedID uuid.UUID) error {
	srv.log(ctx).Debug("Creating follow", slog.Any("followerID", followerID), slog.Any("followedID", followedID))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.FollowRepo().Create(ctx, &entity.Follow{FollowedID: followedID, FollowingID: followerID})
	})
	if err != nil {
		return errors.Wrap(err, "failed to follow user")
	}

	return nil
}

func (srv *socialGraphService) Unfollow(ctx context.Context, followerID, followedID uuid.UUID) error {
	srv.log(ctx).Debug("Removing follow", slog.Any("followerID", followerID), slog.Any("followedID", followedID))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.FollowRepo().Delete(ctx, followedID, followerID)
	})
	if err != nil {
		return errors.Wrap(err, "failed to unfollow user")
	}

	return nil
}

// Like records a like without the ownership rule ToggleLike enforces.
func (srv *socialGraphService) Like(ctx context.Context, userID, messageID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.LikeRepo().Create(ctx, &entity.Like{UserID: userID, MessageID: messageID})
	})
	if err != nil {
		return errors.Wrap(err, "failed to like message")
	}

	return nil
}

func (srv *socialGraphService) Unlike(ctx context.Context, userID, messageID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.LikeRepo().Delete(ctx, userID, messageID)
	})
	if err != nil {
		return errors.Wrap(err, "failed to unlike message")
	}

	return nil
}

func (srv *socialGraphService) ToggleLike(ctx context.Context, userID, messageID uuid.UUID) (bool, error) {
	var liked bool

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		message, err := repoFactory.MessageRepo().FindByID(ctx, messageID)
		if err != nil {
			return errors.Wrap(err, "failed to find message")
		}
		if message.UserID == userID {
			return domainerrors.ErrForbidden.WrapMessage("users cannot like their own messages")
		}

		likeRepo := repoFactory.LikeRepo()
		_, err = likeRepo.Find(ctx, userID, messageID)
		switch {
		case err == nil:
			liked = false

			return likeRepo.Delete(ctx, userID, messageID)
		case errors.Is(err, domainerrors.ErrLikeNotFound):
			liked = true

			return likeRepo.Create(ctx, &entity.Like{UserID: userID, MessageID: messageID})
		default:
			return errors.Wrap(err, "failed to find like")
		}
	})
	if err != nil {
		srv.log(ctx).Warn("Toggle like failed", slog.Any("userID", userID), slog.Any("messageID", messageID), slog.Any("error", err))

		return false, errors.Wrap(err, "failed to toggle like")
	}

	return liked, nil
}

func (srv *socialGraphService) Timeline(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Message, error) {
	if limit <= 0 {
		limit = srv.timelineLimit
	}

	followingIDs, err := srv.followRepo.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list followed users")
	}

	messages, err := srv.messageRepo.ListByUsers(ctx, append(followingIDs, userID), limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list timeline messages")
	}

	return messages, nil
}
