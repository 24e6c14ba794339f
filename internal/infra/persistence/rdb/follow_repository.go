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

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository is the constructor for followRepository.
func NewFollowRepository(db *gorm.DB) repository.FollowRepository {
	return &followRepository{db: db}
}

func (repo *followRepository) Create(ctx context.Context, follow *entity.Follow) error {
	if err := repo.db.WithContext(ctx).Create(fromFollowDomain(follow)).Error; err != nil {
		return translateWriteError(err, "failed to create follow")
	}

	return nil
}

func (repo *followRepository) Delete(ctx context.Context, followedID, followingID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("user_being_followed_id = ? AND user_following_id = ?", followedID, followingID).
		Delete(&model.FollowModel{})
	if result.Error != nil {
		return translateWriteError(result.Error, "failed to delete follow")
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrFollowNotFound
	}

	return nil
}

func (repo *followRepository) Exists(ctx context.Context, followedID, followingID uuid.UUID) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&model.FollowModel{}).
		Where("user_being_followed_id = ? AND user_following_id = ?", followedID, followingID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check follow")
	}

	return count > 0, nil
}

// Followers joins through follows on the followed side.
func (repo *followRepository) Followers(ctx context.Context, userID uuid.UUID) ([]*entity.User, error) {
	var userMs []*model.UserModel
	err := repo.db.WithContext(ctx).
		Joins("JOIN follows ON follows.user_following_id = users.id").
		Where("follows.user_being_followed_id = ?", userID).
		Order("users.username ASC").
		Find(&userMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list followers")
	}

	return toUserDomains(userMs), nil
}

// Following joins through follows on the following side.
func (repo *followRepository) Following(ctx context.Context, userID uuid.UUID) ([]*entity.User, error) {
	var userMs []*model.UserModel
	err := repo.db.WithContext(ctx).
		Joins("JOIN follows ON follows.user_being_followed_id = users.id").
		Where("follows.user_following_id = ?", userID).
		Order("users.username ASC").
		Find(&userMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list following")
	}

	return toUserDomains(userMs), nil
}

func (repo *followRepository) FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := repo.db.WithContext(ctx).
		Model(&model.FollowModel{}).
		Where("user_following_id = ?", userID).
		Pluck("user_being_followed_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list followed user ids")
	}

	return ids, nil
}

func (repo *followRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	err := repo.db.WithContext(ctx).
		Where("user_being_followed_id = ? OR user_following_id = ?", userID, userID).
		Delete(&model.FollowModel{}).Error
	if err != nil {
		return translateWriteError(err, "failed to delete follows of user")
	}

	return nil
}

func (repo *followRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&model.FollowModel{}).
		Where("user_being_followed_id = ? OR user_following_id = ?", userID, userID).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count follows of user")
	}

	return count, nil
}

func (repo *followRepository) DeleteAll(ctx context.Context) error {
	err := repo.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.FollowModel{}).Error
	if err != nil {
		return translateWriteError(err, "failed to delete all follows")
	}

	return nil
}

func fromFollowDomain(data *entity.Follow) *model.FollowModel {
	return &model.FollowModel{
		UserBeingFollowedID: data.FollowedID,
		UserFollowingID:     data.FollowingID,
	}
}
