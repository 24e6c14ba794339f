package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"warbler/config"
	"warbler/internal/domain/repository"
	mockRepo "warbler/internal/mocks/repository"

	"github.com/stretchr/testify/mock"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig(policy string) *config.Config {
	return &config.Config{
		Accounts: &config.AccountsConfig{
			UserDeletion:          policy,
			DefaultImageURL:       config.PlaceholderImageURL,
			DefaultHeaderImageURL: config.PlaceholderHeaderImageURL,
		},
		Timeline: &config.TimelineConfig{Limit: config.DefaultTimelineLimit},
	}
}

// repoMocks are the repositories a mocked transaction hands out.
type repoMocks struct {
	factory  *mockRepo.MockRepositoryFactory
	users    *mockRepo.MockUserRepository
	messages *mockRepo.MockMessageRepository
	follows  *mockRepo.MockFollowRepository
	likes    *mockRepo.MockLikeRepository
}

func newRepoMocks(t *testing.T) repoMocks {
	mocks := repoMocks{
		factory:  mockRepo.NewMockRepositoryFactory(t),
		users:    mockRepo.NewMockUserRepository(t),
		messages: mockRepo.NewMockMessageRepository(t),
		follows:  mockRepo.NewMockFollowRepository(t),
		likes:    mockRepo.NewMockLikeRepository(t),
	}

	mocks.factory.EXPECT().UserRepo().Return(mocks.users).Maybe()
	mocks.factory.EXPECT().MessageRepo().Return(mocks.messages).Maybe()
	mocks.factory.EXPECT().FollowRepo().Return(mocks.follows).Maybe()
	mocks.factory.EXPECT().LikeRepo().Return(mocks.likes).Maybe()

	return mocks
}

// expectTransaction makes txManager run the callback against repos and return its error.
func expectTransaction(txManager *mockRepo.MockTransactionManager, repos repoMocks) {
	txManager.EXPECT().
		Execute(mock.Anything, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(_ context.Context, fn func(repository.RepositoryFactory) error) error {
			return fn(repos.factory)
		})
}
