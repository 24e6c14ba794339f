package rdb

import (
	"context"

	"warbler/internal/domain/entity"
	domainerrors "warbler/internal/domain/errors"
	"warbler/internal/domain/repository"
	"warbler/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository is the constructor for likeRepository.
func NewLikeRepository(db *gorm.DB) repository.LikeRepository {
	return &likeRepository{db: db}
}

func (repo *likeRepository) Create(ctx context.Context, like *entity.Like) error {
	likeM := fromLikeDomain(like)
	if err := repo.db.WithContext(ctx).Create(likeM).Error; err != nil {
		return translateWriteError(err, "failed to create like")
	}

	like.ID = likeM.ID

	return nil
}

func (repo *likeRepository) Find(ctx context.Context, userID, messageID uuid.UUID) (*entity.Like, error) {
	var likeM model.LikeModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		First(&likeM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrLikeNotFound
		}

		return nil, errors.Wrap(err, "failed to find like")
	}

	return toLikeDomain(&likeM), nil
}

func (repo *likeRepository) Delete(ctx context.Context, userID, messageID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Delete(&model.LikeModel{})
	if result.Error != nil {
		return translateWriteError(result.Error, "failed to delete like")
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrLikeNotFound
	}

	return nil
}

// LikedMessages returns the liked messages, most recently posted first.
func (repo *likeRepository) LikedMessages(ctx context.Context, userID uuid.UUID) ([]*entity.Message, error) {
	var messageMs []*model.MessageModel
	err := repo.db.WithContext(ctx).
		Joins("JOIN likes ON likes.message_id = messages.id").
		Where("likes.user_id = ?", userID).
		Order("messages.timestamp DESC, messages.id DESC").
		Find(&messageMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list liked messages")
	}

	return toMessageDomains(messageMs), nil
}

func (repo *likeRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	if err := repo.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.LikeModel{}).Error; err != nil {
		return translateWriteError(err, "failed to delete likes of user")
	}

	return nil
}

func (repo *likeRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&model.LikeModel{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count likes of user")
	}

	return count, nil
}

func (repo *likeRepository) DeleteAll(ctx context.Context) error {
	err := repo.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.LikeModel{}).Error
	if err != nil {
		return translateWriteError(err, "failed to delete all likes")
	}

	return nil
}

func toLikeDomain(data *model.LikeModel) *entity.Like {
	return &entity.Like{
		ID:        data.ID,
		UserID:    data.UserID,
		MessageID: data.MessageID,
	}
}

func fromLikeDomain(data *entity.Like) *model.LikeModel {
	return &model.LikeModel{
		ID:        data.ID,
		UserID:    data.UserID,
		MessageID: data.MessageID,
	}
}
