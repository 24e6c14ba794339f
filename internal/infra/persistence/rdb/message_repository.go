package rdb

import (
	"context"
	"fmt"
	"unicode/utf8"

	"warbler/internal/domain/entity"
	domainerrors "warbler/internal/domain/errors"
	"warbler/internal/domain/repository"
	"warbler/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const messageOrder = "timestamp DESC, id DESC"

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository is the constructor for messageRepository.
func NewMessageRepository(db *gorm.DB) repository.MessageRepository {
	return &messageRepository{db: db}
}

// Create persists a new message. Empty text and a nil owner are stored as NULL and rejected by the schema.
func (repo *messageRepository) Create(ctx context.Context, message *entity.Message) error {
	// SQLite does not enforce varchar lengths.
	if utf8.RuneCountInString(message.Text) > entity.MaxMessageLength {
		return domainerrors.ErrIntegrityViolation.WrapMessage(
			fmt.Sprintf("failed to create message: text longer than %d characters", entity.MaxMessageLength))
	}

	messageM := fromMessageDomain(message)
	if err := repo.db.WithContext(ctx).Create(messageM).Error; err != nil {
		return translateWriteError(err, "failed to create message")
	}

	message.ID = messageM.ID
	message.Timestamp = messageM.Timestamp

	return nil
}

func (repo *messageRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error) {
	var messageM model.MessageModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&messageM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrMessageNotFound
		}

		return nil, errors.Wrap(err, "failed to find message by id")
	}

	return toMessageDomain(&messageM), nil
}

// Delete removes the likes on the message and then the message itself. Nested inside an outer
// transaction this runs as a savepoint.
func (repo *messageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&model.LikeModel{}).Error; err != nil {
			return translateWriteError(err, "failed to delete likes of message")
		}

		result := tx.Delete(&model.MessageModel{}, "id = ?", id)
		if result.Error != nil {
			return translateWriteError(result.Error, "failed to delete message")
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrMessageNotFound
		}

		return nil
	})
}

// ListByUser returns every message the user owns, most recent first.
func (repo *messageRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Message, error) {
	var messageMs []*model.MessageModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(messageOrder).
		Find(&messageMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list messages of user")
	}

	return toMessageDomains(messageMs), nil
}

func (repo *messageRepository) ListByUsers(ctx context.Context, userIDs []uuid.UUID, limit int) ([]*entity.Message, error) {
	if len(userIDs) == 0 {
		return []*entity.Message{}, nil
	}

	tx := repo.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order(messageOrder)
	if limit > 0 {
		tx = tx.Limit(limit)
	}

	var messageMs []*model.MessageModel
	if err := tx.Find(&messageMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list messages of users")
	}

	return toMessageDomains(messageMs), nil
}

// DeleteByUser removes every message the user owns together with the likes they received.
func (repo *messageRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&model.MessageModel{}).Select("id").Where("user_id = ?", userID)
		if err := tx.Where("message_id IN (?)", owned).Delete(&model.LikeModel{}).Error; err != nil {
			return translateWriteError(err, "failed to delete likes on user's messages")
		}

		if err := tx.Where("user_id = ?", userID).Delete(&model.MessageModel{}).Error; err != nil {
			return translateWriteError(err, "failed to delete user's messages")
		}

		return nil
	})
}

func (repo *messageRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&model.MessageModel{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count messages of user")
	}

	return count, nil
}

// DeleteAll empties the messages table along with every like.
func (repo *messageRepository) DeleteAll(ctx context.Context) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		global := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := global.Delete(&model.LikeModel{}).Error; err != nil {
			return translateWriteError(err, "failed to delete all likes")
		}
		if err := global.Delete(&model.MessageModel{}).Error; err != nil {
			return translateWriteError(err, "failed to delete all messages")
		}

		return nil
	})
}

// --- Mapper Functions ---

func toMessageDomain(data *model.MessageModel) *entity.Message {
	if data == nil {
		return nil
	}

	message := &entity.Message{
		ID:        data.ID,
		Timestamp: data.Timestamp,
	}
	if data.Text != nil {
		message.Text = *data.Text
	}
	if data.UserID != nil {
		message.UserID = *data.UserID
	}

	return message
}

func toMessageDomains(data []*model.MessageModel) []*entity.Message {
	messages := make([]*entity.Message, 0, len(data))
	for _, messageM := range data {
		messages = append(messages, toMessageDomain(messageM))
	}

	return messages
}

// fromMessageDomain maps empty text and a nil owner to NULL.
func fromMessageDomain(data *entity.Message) *model.MessageModel {
	if data == nil {
		return nil
	}

	messageM := &model.MessageModel{
		ID:        data.ID,
		Timestamp: data.Timestamp,
	}
	if data.Text != "" {
		text := data.Text
		messageM.Text = &text
	}
	if data.UserID != uuid.Nil {
		userID := data.UserID
		messageM.UserID = &userID
	}

	return messageM
}
