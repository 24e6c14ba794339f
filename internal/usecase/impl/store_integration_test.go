package impl

import (
	"context"
	"strings"
	"testing"

	"warbler/config"
	"warbler/internal/domain/entity"
	domainerrors "warbler/internal/domain/errors"
	"warbler/internal/infra/auth"
	"warbler/internal/infra/persistence/rdb"
	"warbler/internal/infra/persistence/rdb/rdbtest"
	"warbler/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// warblerFixtures wires the real services to a fresh in-memory store.
type warblerFixtures struct {
	db       *gorm.DB
	accounts usecase.AccountUsecase
	graph    usecase.SocialGraphUsecase
	messages usecase.MessageUsecase
}

func createTestWarbler(t *testing.T, policy string) warblerFixtures {
	db := rdbtest.Open(t)
	cfg := newTestConfig(policy)
	logger := newDiscardLogger()
	txManager := rdb.NewTransactionManager(db)
	messageRepo := rdb.NewMessageRepository(db)

	return warblerFixtures{
		db: db,
		accounts: NewAccountService(AccountServiceParams{
			TxManager: txManager,
			UserRepo:  rdb.NewUserRepository(db),
			Hasher:    auth.NewBcryptHasherWithCost(bcrypt.MinCost, config.PasswordStrengthConfig{}),
			Config:    cfg,
			Logger:    logger,
		}),
		graph: NewSocialGraphService(SocialGraphServiceParams{
			TxManager:   txManager,
			MessageRepo: messageRepo,
			FollowRepo:  rdb.NewFollowRepository(db),
			LikeRepo:    rdb.NewLikeRepository(db),
			Config:      cfg,
			Logger:      logger,
		}),
		messages: NewMessageService(MessageServiceParams{
			TxManager:   txManager,
			MessageRepo: messageRepo,
			Logger:      logger,
		}),
	}
}

func (f warblerFixtures) signup(t *testing.T, username string) *entity.User {
	t.Helper()

	user, err := f.accounts.Signup(context.Background(), &usecase.SignupInput{
		Username: username,
		Email:    username + "@test.com",
		Password: "password",
	})
	require.NoError(t, err)

	return user
}

func (f warblerFixtures) post(t *testing.T, author *entity.User, text string) *entity.Message {
	t.Helper()

	message, err := f.messages.CreateMessage(context.Background(), &usecase.CreateMessageInput{UserID: author.ID, Text: text})
	require.NoError(t, err)

	return message
}

func TestWarbler_SignupStoresHash(t *testing.T) {
	f := createTestWarbler(t, config.UserDeletionCascade)

	user := f.signup(t, "testuser")

	stored, err := f.accounts.GetUserByUsername(context.Background(), "testuser")
	require.NoError(t, err)
	assert.Equal(t, "testuser", stored.Username)
	assert.NotEqual(t, "password", stored.Password)
	assert.True(t, strings.HasPrefix(stored.Password, "$2a$"))
	assert.Equal(t, user.ID, stored.ID)
	assert.Equal(t, config.PlaceholderImageURL, stored.ImageURL)
}

func TestWarbler_DuplicateSignup(t *testing.T) {
	f := createTestWarbler(t, config.UserDeletionCascade)
	ctx := context.Background()

	first := f.signup(t, "testuser")

	_, err := f.accounts.Signup(ctx, &usecase.SignupInput{Username: "testuser", Email: "other@test.com", Password: "password"})
	assert.True(t, domainerrors.IsIntegrityViolation(err), "got %v", err)

	stored, err := f.accounts.GetUserByUsername(ctx, "testuser")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, "testuser@test.com", stored.Email)

	users, err := f.accounts.SearchUsers(ctx, "")
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestWarbler_Authenticate(t *testing.T) {
	f := createTestWarbler(t, config.UserDeletionCascade)
	ctx := context.Background()

	user := f.signup(t, "testuser")

	found, ok, err := f.accounts.Authenticate(ctx, "testuser", "password")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, user.ID, found.ID)

	found, ok, err = f.accounts.Authenticate(ctx, "testuser", "wrongpassword")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, found)

	_, ok, err = f.accounts.Authenticate(ctx, "nobody", "password")
	require.NoError(t, err)
	assert.False(t, ok)

	// Overwrite the hash with something bcrypt cannot read.
	require.NoError(t, f.db.Table("users").Where("id = ?", user.ID).Update("password", "HASHED_PASSWORD").Error)

	_, ok, err = f.accounts.Authenticate(ctx, "testuser", "password")
	assert.False(t, ok)
	assert.True(t, domainerrors.IsValidation(err), "got %v", err)
}

func TestWarbler_MessagesOf(t *testing.T) {
	f := createTestWarbler(t, config.UserDeletionCascade)
	ctx := context.Background()

	user := f.signup(t, "testuser")
	f.post(t, user, "text")

	messages, err := f.graph.MessagesOf(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "text", messages[0].Text)

	_, err = f.messages.CreateMessage(ctx, &usecase.CreateMessageInput{UserID: user.ID, Text: strings.Repeat("x", 141)})
	assert.True(t, domainerrors.IsValidation(err), "got %v", err)

	_, err = f.messages.CreateMessage(ctx, &usecase.CreateMessageInput{UserID: user.ID})
	assert.True(t, domainerrors.IsValidation(err), "got %v", err)

	_, err = f.messages.CreateMessage(ctx, &usecase.CreateMessageInput{Text: "orphan"})
	assert.True(t, domainerrors.IsIntegrityViolation(err), "got %v", err)
}

func TestWarbler_LikesFollowMessageDeletion(t *testing.T) {
	f := createTestWarbler(t, config.UserDeletionCascade)
	ctx := context.Background()

	u1 := f.signup(t, "testuser1")
	u2 := f.signup(t, "testuser2")
	message := f.post(t, u1, "text")

	require.NoError(t, f.graph.Like(ctx, u2.ID, message.ID))

	likes, err := f.graph.LikesOf(ctx, u2.ID)
	require.NoError(t, err)
	assert.Len(t, likes, 1)

	require.NoError(t, f.messages.DeleteMessage(ctx, u1.ID, message.ID))

	likes, err = f.graph.LikesOf(ctx, u2.ID)
	require.NoError(t, err)
	assert.Empty(t, likes)
}

func TestWarbler_FollowProjections(t *testing.T) {
	f := createTestWarbler(t, config.UserDeletionCascade)
	ctx := context.Background()

	u1 := f.signup(t, "testuser1")
	u2 := f.signup(t, "testuser2")

	require.NoError(t, f.graph.Follow(ctx, u2.ID, u1.ID))

	followers, err := f.graph.FollowersOf(ctx, u1.ID)
	require.NoError(t, err)
	assert.Len(t, followers, 1)

	following, err := f.graph.FollowingOf(ctx, u2.ID)
	require.NoError(t, err)
	assert.Len(t, following, 1)

	following, err = f.graph.FollowingOf(ctx, u1.ID)
	require.NoError(t, err)
	assert.Empty(t, following)

	followers, err = f.graph.FollowersOf(ctx, u2.ID)
	require.NoError(t, err)
	assert.Empty(t, followers)

	followed, err := f.graph.IsFollowedBy(ctx, u1.ID, u2.ID)
	require.NoError(t, err)
	assert.True(t, followed)

	isFollowing, err := f.graph.IsFollowing(ctx, u2.ID, u1.ID)
	require.NoError(t, err)
	assert.True(t, isFollowing)

	isFollowing, err = f.graph.IsFollowing(ctx, u1.ID, u2.ID)
	require.NoError(t, err)
	assert.False(t, isFollowing)

	err = f.graph.Follow(ctx, u2.ID, u1.ID)
	assert.True(t, domainerrors.IsIntegrityViolation(err), "got %v", err)

	require.NoError(t, f.graph.Unfollow(ctx, u2.ID, u1.ID))
	err = f.graph.Unfollow(ctx, u2.ID, u1.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrFollowNotFound))
}

func TestWarbler_UserString(t *testing.T) {
	f := createTestWarbler(t, config.UserDeletionCascade)

	user := f.signup(t, "testuser")
	stored, err := f.accounts.GetUser(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, "<User #"+user.ID.String()+": testuser, testuser@test.com>", stored.String())
	assert.Equal(t, stored.String(), stored.String())
}

func TestWarbler_ToggleLike(t *testing.T) {
	f := createTestWarbler(t, config.UserDeletionCascade)
	ctx := context.Background()

	author := f.signup(t, "testuser1")
	fan := f.signup(t, "testuser2")
	message := f.post(t, author, "text")

	liked, err := f.graph.ToggleLike(ctx, fan.ID, message.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = f.graph.ToggleLike(ctx, fan.ID, message.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	_, err = f.graph.ToggleLike(ctx, author.ID, message.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrForbidden), "got %v", err)

	_, err = f.graph.ToggleLike(ctx, fan.ID, uuid.New())
	assert.True(t, errors.Is(err, domainerrors.ErrMessageNotFound), "got %v", err)

	// The primitive allows self-likes.
	require.NoError(t, f.graph.Like(ctx, author.ID, message.ID))
	require.NoError(t, f.graph.Unlike(ctx, author.ID, message.ID))
}

func TestWarbler_DeleteMessageOwnership(t *testing.T) {
	f := createTestWarbler(t, config.UserDeletionCascade)
	ctx := context.Background()

	author := f.signup(t, "testuser1")
	other := f.signup(t, "testuser2")
	message := f.post(t, author, "text")

	err := f.messages.DeleteMessage(ctx, other.ID, message.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrForbidden), "got %v", err)

	_, err = f.messages.GetMessage(ctx, message.ID)
	require.NoError(t, err)

	require.NoError(t, f.messages.DeleteMessage(ctx, author.ID, message.ID))
	_, err = f.messages.GetMessage(ctx, message.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrMessageNotFound))
}

func TestWarbler_Timeline(t *testing.T) {
	f := createTestWarbler(t, config.UserDeletionCascade)
	ctx := context.Background()

	me := f.signup(t, "testuser1")
	friend := f.signup(t, "testuser2")
	stranger := f.signup(t, "testuser3")
	require.NoError(t, f.graph.Follow(ctx, me.ID, friend.ID))

	f.post(t, me, "mine")
	f.post(t, friend, "friend")
	f.post(t, stranger, "stranger")

	timeline, err := f.graph.Timeline(ctx, me.ID, 0)
	require.NoError(t, err)
	require.Len(t, timeline, 2)
	for _, message := range timeline {
		assert.NotEqual(t, stranger.ID, message.UserID)
	}
	assert.False(t, timeline[0].Timestamp.Before(timeline[1].Timestamp))

	timeline, err = f.graph.Timeline(ctx, me.ID, 1)
	require.NoError(t, err)
	assert.Len(t, timeline, 1)
}

func TestWarbler_UpdateProfile(t *testing.T) {
	f := createTestWarbler(t, config.UserDeletionCascade)
	ctx := context.Background()

	user := f.signup(t, "testuser1")
	f.signup(t, "testuser2")

	updated, err := f.accounts.UpdateProfile(ctx, user.ID, &usecase.UpdateProfileInput{
		Username:        "renamed",
		Bio:             "bio",
		Location:        "Earth",
		HeaderImageURL:  "/img/header.png",
		CurrentPassword: "password",
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Username)
	assert.Equal(t, "testuser1@test.com", updated.Email)

	stored, err := f.accounts.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", stored.Username)
	assert.Equal(t, "bio", stored.Bio)
	assert.Equal(t, "/img/header.png", stored.HeaderImageURL)
	assert.Equal(t, config.PlaceholderImageURL, stored.ImageURL)

	_, err = f.accounts.UpdateProfile(ctx, user.ID, &usecase.UpdateProfileInput{Username: "testuser2", CurrentPassword: "password"})
	assert.True(t, domainerrors.IsIntegrityViolation(err), "got %v", err)

	_, err = f.accounts.UpdateProfile(ctx, user.ID, &usecase.UpdateProfileInput{Bio: "x", CurrentPassword: "nope"})
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials), "got %v", err)

	// Failed updates left the profile untouched.
	stored, err = f.accounts.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", stored.Username)
	assert.Equal(t, "bio", stored.Bio)
}

func seedGraph(t *testing.T, f warblerFixtures) (*entity.User, *entity.User) {
	t.Helper()
	ctx := context.Background()

	doomed := f.signup(t, "testuser1")
	other := f.signup(t, "testuser2")

	own := f.post(t, doomed, "doomed")
	theirs := f.post(t, other, "survivor")
	require.NoError(t, f.graph.Like(ctx, other.ID, own.ID))
	require.NoError(t, f.graph.Like(ctx, doomed.ID, theirs.ID))
	require.NoError(t, f.graph.Follow(ctx, doomed.ID, other.ID))
	require.NoError(t, f.graph.Follow(ctx, other.ID, doomed.ID))

	return doomed, other
}

func TestWarbler_DeleteUser_Cascade(t *testing.T) {
	f := createTestWarbler(t, config.UserDeletionCascade)
	ctx := context.Background()

	doomed, other := seedGraph(t, f)

	require.NoError(t, f.accounts.DeleteUser(ctx, doomed.ID))

	_, err := f.accounts.GetUser(ctx, doomed.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))

	likes, err := f.graph.LikesOf(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, likes)

	followers, err := f.graph.FollowersOf(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, followers)

	messages, err := f.graph.MessagesOf(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "survivor", messages[0].Text)
}

func TestWarbler_DeleteUser_Restrict(t *testing.T) {
	f := createTestWarbler(t, config.UserDeletionRestrict)
	ctx := context.Background()

	doomed, _ := seedGraph(t, f)

	err := f.accounts.DeleteUser(ctx, doomed.ID)
	assert.True(t, domainerrors.IsIntegrityViolation(err), "got %v", err)

	_, err = f.accounts.GetUser(ctx, doomed.ID)
	require.NoError(t, err)

	loner := f.signup(t, "testuser3")
	require.NoError(t, f.accounts.DeleteUser(ctx, loner.ID))
}

func TestWarbler_ResetAll(t *testing.T) {
	f := createTestWarbler(t, config.UserDeletionCascade)
	ctx := context.Background()

	seedGraph(t, f)

	require.NoError(t, f.accounts.ResetAll(ctx))

	users, err := f.accounts.SearchUsers(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, users)

	// Usernames are free again.
	f.signup(t, "testuser1")
}
