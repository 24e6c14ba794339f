package impl

import (
	"context"
	"testing"

	"warbler/config"
	"warbler/internal/domain/entity"
	domainerrors "warbler/internal/domain/errors"
	mockRepo "warbler/internal/mocks/repository"
	mockSvc "warbler/internal/mocks/service"
	"warbler/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// accountServiceFixtures holds all test dependencies for account service tests.
type accountServiceFixtures struct {
	service   usecase.AccountUsecase
	txManager *mockRepo.MockTransactionManager
	userRepo  *mockRepo.MockUserRepository
	hasher    *mockSvc.MockPasswordHasher
	repos     repoMocks
}

func createTestAccountService(t *testing.T, policy string) accountServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	userRepo := mockRepo.NewMockUserRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)

	service := NewAccountService(AccountServiceParams{
		TxManager: txManager,
		UserRepo:  userRepo,
		Hasher:    hasher,
		Config:    newTestConfig(policy),
		Logger:    newDiscardLogger(),
	})

	return accountServiceFixtures{
		service:   service,
		txManager: txManager,
		userRepo:  userRepo,
		hasher:    hasher,
		repos:     newRepoMocks(t),
	}
}

func TestAccountService_Signup_Success(t *testing.T) {
	fx := createTestAccountService(t, config.UserDeletionCascade)
	ctx := context.Background()
	input := &usecase.SignupInput{Username: "testuser", Email: "test@test.com", Password: "password"}

	fx.hasher.EXPECT().ValidatePasswordStrength("password").Return(nil)
	fx.hasher.EXPECT().Hash("password").Return("hashed_password", nil)
	expectTransaction(fx.txManager, fx.repos)
	fx.repos.users.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.User")).
		Run(func(_ context.Context, user *entity.User) {
			user.ID = uuid.New()
		}).
		Return(nil)

	user, err := fx.service.Signup(ctx, input)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, "hashed_password", user.Password)
	assert.Equal(t, config.PlaceholderImageURL, user.ImageURL)
	assert.Equal(t, config.PlaceholderHeaderImageURL, user.HeaderImageURL)
}

func TestAccountService_Signup_InvalidInput(t *testing.T) {
	fx := createTestAccountService(t, config.UserDeletionCascade)

	testCases := []*usecase.SignupInput{
		{Username: "", Email: "test@test.com", Password: "password"},
		{Username: "testuser", Email: "not-an-email", Password: "password"},
		{Username: "testuser", Email: "test@test.com", Password: ""},
	}

	for _, input := range testCases {
		_, err := fx.service.Signup(context.Background(), input)
		assert.True(t, domainerrors.IsValidation(err), "input %+v: got %v", input, err)
	}
}

func TestAccountService_Signup_WeakPassword(t *testing.T) {
	fx := createTestAccountService(t, config.UserDeletionCascade)
	input := &usecase.SignupInput{Username: "testuser", Email: "test@test.com", Password: "weak"}

	fx.hasher.EXPECT().ValidatePasswordStrength("weak").
		Return(domainerrors.ErrPasswordStrength.WrapMessage("password must be at least 8 characters long"))

	_, err := fx.service.Signup(context.Background(), input)

	assert.True(t, domainerrors.IsValidation(err), "got %v", err)
	assert.Contains(t, err.Error(), "at least 8 characters")
}

func TestAccountService_Signup_HashFailure(t *testing.T) {
	fx := createTestAccountService(t, config.UserDeletionCascade)
	input := &usecase.SignupInput{Username: "testuser", Email: "test@test.com", Password: "password"}

	fx.hasher.EXPECT().ValidatePasswordStrength("password").Return(nil)
	fx.hasher.EXPECT().Hash("password").Return("", domainerrors.ErrPasswordHashFailed)

	_, err := fx.service.Signup(context.Background(), input)

	assert.True(t, errors.Is(err, domainerrors.ErrPasswordHashFailed))
}

func TestAccountService_Signup_Duplicate(t *testing.T) {
	fx := createTestAccountService(t, config.UserDeletionCascade)
	ctx := context.Background()
	input := &usecase.SignupInput{Username: "testuser", Email: "test@test.com", Password: "password"}

	fx.hasher.EXPECT().ValidatePasswordStrength("password").Return(nil)
	fx.hasher.EXPECT().Hash("password").Return("hashed_password", nil)
	expectTransaction(fx.txManager, fx.repos)
	fx.repos.users.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.User")).
		Return(domainerrors.ErrIntegrityViolation.WrapMessage("failed to create user: duplicate key"))

	user, err := fx.service.Signup(ctx, input)

	assert.Nil(t, user)
	assert.True(t, domainerrors.IsIntegrityViolation(err), "got %v", err)
}

func TestAccountService_Authenticate(t *testing.T) {
	ctx := context.Background()
	stored := &entity.User{ID: uuid.New(), Username: "testuser", Password: "stored_hash"}

	t.Run("match", func(t *testing.T) {
		fx := createTestAccountService(t, config.UserDeletionCascade)
		fx.userRepo.EXPECT().FindByUsername(ctx, "testuser").Return(stored, nil)
		fx.hasher.EXPECT().Verify("password", "stored_hash").Return(true, nil)

		user, ok, err := fx.service.Authenticate(ctx, "testuser", "password")

		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, stored.ID, user.ID)
	})

	t.Run("mismatch", func(t *testing.T) {
		fx := createTestAccountService(t, config.UserDeletionCascade)
		fx.userRepo.EXPECT().FindByUsername(ctx, "testuser").Return(stored, nil)
		fx.hasher.EXPECT().Verify("wrong", "stored_hash").Return(false, nil)

		user, ok, err := fx.service.Authenticate(ctx, "testuser", "wrong")

		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, user)
	})

	t.Run("unknown username", func(t *testing.T) {
		fx := createTestAccountService(t, config.UserDeletionCascade)
		fx.userRepo.EXPECT().FindByUsername(ctx, "nobody").Return(nil, domainerrors.ErrUserNotFound)

		user, ok, err := fx.service.Authenticate(ctx, "nobody", "password")

		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, user)
	})

	t.Run("unreadable hash", func(t *testing.T) {
		fx := createTestAccountService(t, config.UserDeletionCascade)
		fx.userRepo.EXPECT().FindByUsername(ctx, "testuser").Return(stored, nil)
		fx.hasher.EXPECT().Verify("password", "stored_hash").
			Return(false, errors.Wrap(domainerrors.ErrValidationFailed, "stored password hash is unreadable"))

		user, ok, err := fx.service.Authenticate(ctx, "testuser", "password")

		assert.True(t, domainerrors.IsValidation(err), "got %v", err)
		assert.False(t, ok)
		assert.Nil(t, user)
	})

	t.Run("store failure", func(t *testing.T) {
		fx := createTestAccountService(t, config.UserDeletionCascade)
		fx.userRepo.EXPECT().FindByUsername(ctx, "testuser").Return(nil, errors.New("connection refused"))

		_, ok, err := fx.service.Authenticate(ctx, "testuser", "password")

		require.Error(t, err)
		assert.False(t, ok)
		assert.False(t, domainerrors.IsValidation(err))
	})
}

func TestAccountService_UpdateProfile_WrongPassword(t *testing.T) {
	fx := createTestAccountService(t, config.UserDeletionCascade)
	ctx := context.Background()
	userID := uuid.New()

	expectTransaction(fx.txManager, fx.repos)
	fx.repos.users.EXPECT().FindByID(ctx, userID).Return(&entity.User{ID: userID, Password: "stored_hash"}, nil)
	fx.hasher.EXPECT().Verify("wrong", "stored_hash").Return(false, nil)

	_, err := fx.service.UpdateProfile(ctx, userID, &usecase.UpdateProfileInput{Bio: "hi", CurrentPassword: "wrong"})

	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials), "got %v", err)
}

func TestAccountService_DeleteUser_RestrictWithDependents(t *testing.T) {
	fx := createTestAccountService(t, config.UserDeletionRestrict)
	ctx := context.Background()
	userID := uuid.New()

	expectTransaction(fx.txManager, fx.repos)
	fx.repos.users.EXPECT().FindByID(ctx, userID).Return(&entity.User{ID: userID}, nil)
	fx.repos.messages.EXPECT().CountByUser(ctx, userID).Return(int64(0), nil)
	fx.repos.follows.EXPECT().CountByUser(ctx, userID).Return(int64(2), nil)

	err := fx.service.DeleteUser(ctx, userID)

	assert.True(t, domainerrors.IsIntegrityViolation(err), "got %v", err)
	assert.Contains(t, err.Error(), "follows")
}

func TestAccountService_DeleteUser_CascadeOrder(t *testing.T) {
	fx := createTestAccountService(t, config.UserDeletionCascade)
	ctx := context.Background()
	userID := uuid.New()

	expectTransaction(fx.txManager, fx.repos)
	fx.repos.users.EXPECT().FindByID(ctx, userID).Return(&entity.User{ID: userID}, nil)
	likes := fx.repos.likes.EXPECT().DeleteByUser(ctx, userID).Return(nil).Call
	messages := fx.repos.messages.EXPECT().DeleteByUser(ctx, userID).Return(nil).NotBefore(likes)
	follows := fx.repos.follows.EXPECT().DeleteByUser(ctx, userID).Return(nil).NotBefore(messages)
	fx.repos.users.EXPECT().Delete(ctx, userID).Return(nil).NotBefore(follows)

	require.NoError(t, fx.service.DeleteUser(ctx, userID))
}

func TestAccountService_DeleteUser_NotFound(t *testing.T) {
	fx := createTestAccountService(t, config.UserDeletionCascade)
	ctx := context.Background()
	userID := uuid.New()

	expectTransaction(fx.txManager, fx.repos)
	fx.repos.users.EXPECT().FindByID(ctx, userID).Return(nil, domainerrors.ErrUserNotFound)

	err := fx.service.DeleteUser(ctx, userID)

	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}

func TestNewAccountService_IgnoresUnknownPolicy(t *testing.T) {
	srv := NewAccountService(AccountServiceParams{
		Config: &config.Config{Accounts: &config.AccountsConfig{UserDeletion: "orphan"}},
		Logger: newDiscardLogger(),
	}).(*accountService)

	assert.Equal(t, entity.DeletionPolicyCascade, srv.deletionPolicy)
	assert.Equal(t, config.PlaceholderImageURL, srv.defaultImageURL)
}
