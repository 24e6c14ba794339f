package usecase

import (
	"context"

	"warbler/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateMessageInput defines the data required to post a message.
type CreateMessageInput struct {
	UserID uuid.UUID
	Text   string `validate:"required,max=140"`
}

// MessageUsecase defines the operations on individual messages.
type MessageUsecase interface {
	CreateMessage(ctx context.Context, input *CreateMessageInput) (*entity.Message, error)
	GetMessage(ctx context.Context, messageID uuid.UUID) (*entity.Message, error)

	// DeleteMessage removes the message and its likes. Only the owner may delete it.
	DeleteMessage(ctx context.Context, userID, messageID uuid.UUID) error
}
