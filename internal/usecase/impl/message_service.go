package impl

import (
	"context"
	"log/slog"

	"warbler/internal/domain/entity"
	domainerrors "warbler/internal/domain/errors"
	"warbler/internal/domain/repository"
	logs "warbler/internal/infra/log"
	"warbler/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// messageService implements the MessageUsecase interface.
type messageService struct {
	txManager   repository.TransactionManager
	messageRepo repository.MessageRepository
	logger      *slog.Logger
}

// MessageServiceParams holds dependencies for MessageService, injected by Fx.
type MessageServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	MessageRepo repository.MessageRepository
	Logger      *slog.Logger
}

// NewMessageService is the constructor for messageService.
func NewMessageService(params MessageServiceParams) usecase.MessageUsecase {
	return &messageService{
		txManager:   params.TxManager,
		messageRepo: params.MessageRepo,
		logger:      params.Logger,
	}
}

func (srv *messageService) log(ctx context.Context) *slog.Logger {
	return logs.FromContextOrDefault(ctx, srv.logger)
}

// CreateMessage posts a message for input.UserID. An unknown or nil owner is rejected by the store.
func (srv *messageService) CreateMessage(ctx context.Context, input *usecase.CreateMessageInput) (*entity.Message, error) {
	if err := validateInput(input); err != nil {
		return nil, errors.Wrap(err, "invalid message input")
	}

	message := &entity.Message{Text: input.Text, UserID: input.UserID}
	if err := srv.messageRepo.Create(ctx, message); err != nil {
		srv.log(ctx).Warn("Failed to create message", slog.Any("userID", input.UserID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create message")
	}

	srv.log(ctx).Debug("Message created", slog.Any("messageID", message.ID), slog.Any("userID", message.UserID))

	return message, nil
}

func (srv *messageService) GetMessage(ctx context.Context, messageID uuid.UUID) (*entity.Message, error) {
	message, err := srv.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get message")
	}

	return message, nil
}

func (srv *messageService) DeleteMessage(ctx context.Context, userID, messageID uuid.UUID) error {
	srv.log(ctx).Info("Deleting message", slog.Any("userID", userID), slog.Any("messageID", messageID))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		messageRepo := repoFactory.MessageRepo()

		message, err := messageRepo.FindByID(ctx, messageID)
		if err != nil {
			return errors.Wrap(err, "failed to find message")
		}
		if message.UserID != userID {
			return domainerrors.ErrForbidden.WrapMessage("only the author may delete a message")
		}

		if err := messageRepo.Delete(ctx, messageID); err != nil {
			return errors.Wrap(err, "failed to delete message")
		}

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to execute message deletion transaction")
	}

	return nil
}
