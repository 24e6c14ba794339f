package rdb_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"warbler/internal/domain/entity"
	domainerrors "warbler/internal/domain/errors"
	"warbler/internal/domain/repository"
	"warbler/internal/infra/persistence/rdb"
	"warbler/internal/infra/persistence/rdb/rdbtest"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFixtures holds repositories sharing one fresh database.
type storeFixtures struct {
	users     repository.UserRepository
	messages  repository.MessageRepository
	follows   repository.FollowRepository
	likes     repository.LikeRepository
	txManager repository.TransactionManager
}

func createTestStore(t *testing.T) storeFixtures {
	db := rdbtest.Open(t)

	return storeFixtures{
		users:     rdb.NewUserRepository(db),
		messages:  rdb.NewMessageRepository(db),
		follows:   rdb.NewFollowRepository(db),
		likes:     rdb.NewLikeRepository(db),
		txManager: rdb.NewTransactionManager(db),
	}
}

func (f storeFixtures) createUser(t *testing.T, username string) *entity.User {
	t.Helper()

	user := &entity.User{
		Email:    username + "@test.com",
		Username: username,
		Password: "$2a$04$hashedhashedhashedhashedhashedhashedhashedhashedhash",
	}
	require.NoError(t, f.users.Create(context.Background(), user))

	return user
}

func (f storeFixtures) createMessage(t *testing.T, owner *entity.User, text string) *entity.Message {
	t.Helper()

	message := &entity.Message{Text: text, UserID: owner.ID}
	require.NoError(t, f.messages.Create(context.Background(), message))

	return message
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	f := createTestStore(t)
	ctx := context.Background()

	user := f.createUser(t, "testuser")
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	byID, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "testuser", byID.Username)
	assert.Equal(t, "testuser@test.com", byID.Email)

	byName, err := f.users.FindByUsername(ctx, "testuser")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	_, err = f.users.FindByUsername(ctx, "nobody")
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))

	_, err = f.users.FindByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}

func TestUserRepository_DuplicateUsernameAndEmail(t *testing.T) {
	f := createTestStore(t)
	ctx := context.Background()

	first := f.createUser(t, "testuser")

	err := f.users.Create(ctx, &entity.User{Email: "other@test.com", Username: "testuser", Password: "hash"})
	assert.True(t, domainerrors.IsIntegrityViolation(err), "got %v", err)

	err = f.users.Create(ctx, &entity.User{Email: "testuser@test.com", Username: "other", Password: "hash"})
	assert.True(t, domainerrors.IsIntegrityViolation(err), "got %v", err)

	stored, err := f.users.FindByUsername(ctx, "testuser")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, first.Email, stored.Email)

	found, err := f.users.Search(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestUserRepository_Update(t *testing.T) {
	f := createTestStore(t)
	ctx := context.Background()

	user := f.createUser(t, "testuser")
	user.Bio = "hello"
	user.Location = "Earth"
	require.NoError(t, f.users.Update(ctx, user))

	stored, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", stored.Bio)
	assert.Equal(t, "Earth", stored.Location)

	// Zero values are written as well.
	user.Bio = ""
	require.NoError(t, f.users.Update(ctx, user))
	stored, err = f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Bio)

	other := f.createUser(t, "other")
	other.Username = "testuser"
	err = f.users.Update(ctx, other)
	assert.True(t, domainerrors.IsIntegrityViolation(err), "got %v", err)

	err = f.users.Update(ctx, &entity.User{ID: uuid.New(), Username: "ghost", Email: "ghost@test.com", Password: "hash"})
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}

func TestUserRepository_Search(t *testing.T) {
	f := createTestStore(t)
	ctx := context.Background()

	f.createUser(t, "alice")
	f.createUser(t, "malice")
	f.createUser(t, "bob")
	f.createUser(t, "a_b")

	found, err := f.users.Search(ctx, "ALI", 0)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "alice", found[0].Username)
	assert.Equal(t, "malice", found[1].Username)

	// Wildcards in the query match literally.
	found, err = f.users.Search(ctx, "_", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "a_b", found[0].Username)

	found, err = f.users.Search(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestUserRepository_DeleteRestrictedByDependents(t *testing.T) {
	f := createTestStore(t)
	ctx := context.Background()

	user := f.createUser(t, "testuser")
	f.createMessage(t, user, "hello")

	err := f.users.Delete(ctx, user.ID)
	assert.True(t, domainerrors.IsIntegrityViolation(err), "got %v", err)

	require.NoError(t, f.messages.DeleteByUser(ctx, user.ID))
	require.NoError(t, f.users.Delete(ctx, user.ID))

	err = f.users.Delete(ctx, user.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))

	// A follow edge alone also blocks the delete, in either direction.
	follower := f.createUser(t, "follower")
	followed := f.createUser(t, "followed")
	require.NoError(t, f.follows.Create(ctx, &entity.Follow{FollowedID: followed.ID, FollowingID: follower.ID}))

	err = f.users.Delete(ctx, follower.ID)
	assert.True(t, domainerrors.IsIntegrityViolation(err), "got %v", err)
	err = f.users.Delete(ctx, followed.ID)
	assert.True(t, domainerrors.IsIntegrityViolation(err), "got %v", err)

	_, err = f.users.FindByID(ctx, followed.ID)
	require.NoError(t, err)
}

func TestMessageRepository_CreateAndList(t *testing.T) {
	f := createTestStore(t)
	ctx := context.Background()

	user := f.createUser(t, "testuser")
	message := f.createMessage(t, user, "text")
	assert.NotEqual(t, uuid.Nil, message.ID)
	assert.False(t, message.Timestamp.IsZero())

	messages, err := f.messages.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "text", messages[0].Text)
	assert.Equal(t, user.ID, messages[0].UserID)

	stored, err := f.messages.FindByID(ctx, message.ID)
	require.NoError(t, err)
	assert.Equal(t, "text", stored.Text)

	_, err = f.messages.FindByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, domainerrors.ErrMessageNotFound))
}

func TestMessageRepository_MostRecentFirst(t *testing.T) {
	f := createTestStore(t)
	ctx := context.Background()

	user := f.createUser(t, "testuser")
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, text := range []string{"first", "second", "third"} {
		message := &entity.Message{Text: text, UserID: user.ID, Timestamp: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, f.messages.Create(ctx, message))
	}

	messages, err := f.messages.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "third", messages[0].Text)
	assert.Equal(t, "second", messages[1].Text)
	assert.Equal(t, "first", messages[2].Text)

	limited, err := f.messages.ListByUsers(ctx, []uuid.UUID{user.ID}, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "third", limited[0].Text)

	none, err := f.messages.ListByUsers(ctx, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMessageRepository_IntegrityViolations(t *testing.T) {
	f := createTestStore(t)
	ctx := context.Background()

	user := f.createUser(t, "testuser")

	testCases := []struct {
		name    string
		message *entity.Message
	}{
		{"null text", &entity.Message{UserID: user.ID}},
		{"null user", &entity.Message{Text: "orphan"}},
		{"unknown user", &entity.Message{Text: "orphan", UserID: uuid.New()}},
		{"text too long", &entity.Message{Text: strings.Repeat("x", entity.MaxMessageLength+1), UserID: user.ID}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := f.messages.Create(ctx, tc.message)
			assert.True(t, domainerrors.IsIntegrityViolation(err), "got %v", err)
		})
	}

	count, err := f.messages.CountByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Exactly the limit is accepted, counted in characters.
	f.createMessage(t, user, strings.Repeat("é", entity.MaxMessageLength))
}

func TestMessageRepository_DeleteCascadesToLikes(t *testing.T) {
	f := createTestStore(t)
	ctx := context.Background()

	author := f.createUser(t, "testuser1")
	fan := f.createUser(t, "testuser2")
	message := f.createMessage(t, author, "text")
	require.NoError(t, f.likes.Create(ctx, &entity.Like{UserID: fan.ID, MessageID: message.ID}))

	liked, err := f.likes.LikedMessages(ctx, fan.ID)
	require.NoError(t, err)
	assert.Len(t, liked, 1)

	require.NoError(t, f.messages.Delete(ctx, message.ID))

	liked, err = f.likes.LikedMessages(ctx, fan.ID)
	require.NoError(t, err)
	assert.Empty(t, liked)

	count, err := f.likes.CountByUser(ctx, fan.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	err = f.messages.Delete(ctx, message.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrMessageNotFound))
}

func TestMessageRepository_DeleteByUser(t *testing.T) {
	f := createTestStore(t)
	ctx := context.Background()

	author := f.createUser(t, "testuser1")
	fan := f.createUser(t, "testuser2")
	kept := f.createMessage(t, fan, "mine")
	for _, text := range []string{"a", "b"} {
		message := f.createMessage(t, author, text)
		require.NoError(t, f.likes.Create(ctx, &entity.Like{UserID: fan.ID, MessageID: message.ID}))
	}

	require.NoError(t, f.messages.DeleteByUser(ctx, author.ID))

	count, err := f.messages.CountByUser(ctx, author.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = f.likes.CountByUser(ctx, fan.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = f.messages.FindByID(ctx, kept.ID)
	assert.NoError(t, err)
}

func TestFollowRepository(t *testing.T) {
	f := createTestStore(t)
	ctx := context.Background()

	u1 := f.createUser(t, "testuser1")
	u2 := f.createUser(t, "testuser2")

	// u2 follows u1.
	require.NoError(t, f.follows.Create(ctx, &entity.Follow{FollowedID: u1.ID, FollowingID: u2.ID}))

	followers, err := f.follows.Followers(ctx, u1.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, u2.ID, followers[0].ID)

	following, err := f.follows.Following(ctx, u2.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, u1.ID, following[0].ID)

	following, err = f.follows.Following(ctx, u1.ID)
	require.NoError(t, err)
	assert.Empty(t, following)

	followers, err = f.follows.Followers(ctx, u2.ID)
	require.NoError(t, err)
	assert.Empty(t, followers)

	exists, err := f.follows.Exists(ctx, u1.ID, u2.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = f.follows.Exists(ctx, u2.ID, u1.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	ids, err := f.follows.FollowingIDs(ctx, u2.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{u1.ID}, ids)

	err = f.follows.Create(ctx, &entity.Follow{FollowedID: u1.ID, FollowingID: u2.ID})
	assert.True(t, domainerrors.IsIntegrityViolation(err), "got %v", err)

	err = f.follows.Create(ctx, &entity.Follow{FollowedID: uuid.New(), FollowingID: u2.ID})
	assert.True(t, domainerrors.IsIntegrityViolation(err), "got %v", err)

	require.NoError(t, f.follows.Delete(ctx, u1.ID, u2.ID))
	err = f.follows.Delete(ctx, u1.ID, u2.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrFollowNotFound))
}

func TestFollowRepository_SelfFollowAllowed(t *testing.T) {
	f := createTestStore(t)
	ctx := context.Background()

	user := f.createUser(t, "testuser")
	require.NoError(t, f.follows.Create(ctx, &entity.Follow{FollowedID: user.ID, FollowingID: user.ID}))

	count, err := f.follows.CountByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, f.follows.DeleteByUser(ctx, user.ID))
	count, err = f.follows.CountByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLikeRepository(t *testing.T) {
	f := createTestStore(t)
	ctx := context.Background()

	author := f.createUser(t, "testuser1")
	fan := f.createUser(t, "testuser2")
	message := f.createMessage(t, author, "text")

	like := &entity.Like{UserID: fan.ID, MessageID: message.ID}
	require.NoError(t, f.likes.Create(ctx, like))
	assert.NotEqual(t, uuid.Nil, like.ID)

	found, err := f.likes.Find(ctx, fan.ID, message.ID)
	require.NoError(t, err)
	assert.Equal(t, like.ID, found.ID)

	err = f.likes.Create(ctx, &entity.Like{UserID: fan.ID, MessageID: message.ID})
	assert.True(t, domainerrors.IsIntegrityViolation(err), "got %v", err)

	err = f.likes.Create(ctx, &entity.Like{UserID: fan.ID, MessageID: uuid.New()})
	assert.True(t, domainerrors.IsIntegrityViolation(err), "got %v", err)

	// Self-like is allowed by the store.
	require.NoError(t, f.likes.Create(ctx, &entity.Like{UserID: author.ID, MessageID: message.ID}))

	require.NoError(t, f.likes.Delete(ctx, fan.ID, message.ID))
	_, err = f.likes.Find(ctx, fan.ID, message.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrLikeNotFound))
	err = f.likes.Delete(ctx, fan.ID, message.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrLikeNotFound))

	require.NoError(t, f.likes.DeleteByUser(ctx, author.ID))
	count, err := f.likes.CountByUser(ctx, author.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDeleteAll(t *testing.T) {
	f := createTestStore(t)
	ctx := context.Background()

	u1 := f.createUser(t, "testuser1")
	u2 := f.createUser(t, "testuser2")
	message := f.createMessage(t, u1, "text")
	require.NoError(t, f.likes.Create(ctx, &entity.Like{UserID: u2.ID, MessageID: message.ID}))
	require.NoError(t, f.follows.Create(ctx, &entity.Follow{FollowedID: u1.ID, FollowingID: u2.ID}))

	require.NoError(t, f.likes.DeleteAll(ctx))
	require.NoError(t, f.follows.DeleteAll(ctx))
	require.NoError(t, f.messages.DeleteAll(ctx))
	require.NoError(t, f.users.DeleteAll(ctx))

	users, err := f.users.Search(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestTransactionManager_RollbackOnError(t *testing.T) {
	f := createTestStore(t)
	ctx := context.Background()

	f.createUser(t, "testuser")

	err := f.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		if err := repos.UserRepo().Create(ctx, &entity.User{Email: "new@test.com", Username: "newuser", Password: "hash"}); err != nil {
			return err
		}

		// Duplicate username fails after the first insert succeeded.
		return repos.UserRepo().Create(ctx, &entity.User{Email: "dup@test.com", Username: "testuser", Password: "hash"})
	})
	assert.True(t, domainerrors.IsIntegrityViolation(err), "got %v", err)

	_, err = f.users.FindByUsername(ctx, "newuser")
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}

func TestTransactionManager_Commit(t *testing.T) {
	f := createTestStore(t)
	ctx := context.Background()

	author := f.createUser(t, "testuser1")
	fan := f.createUser(t, "testuser2")
	message := f.createMessage(t, author, "text")
	require.NoError(t, f.likes.Create(ctx, &entity.Like{UserID: fan.ID, MessageID: message.ID}))

	// Message delete nests its own transaction inside the outer one.
	err := f.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		if err := repos.MessageRepo().Delete(ctx, message.ID); err != nil {
			return err
		}

		return repos.FollowRepo().Create(ctx, &entity.Follow{FollowedID: author.ID, FollowingID: fan.ID})
	})
	require.NoError(t, err)

	_, err = f.messages.FindByID(ctx, message.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrMessageNotFound))

	exists, err := f.follows.Exists(ctx, author.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestTransactionManager_RollbackOnPanic(t *testing.T) {
	f := createTestStore(t)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = f.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
			_ = repos.UserRepo().Create(ctx, &entity.User{Email: "p@test.com", Username: "panicky", Password: "hash"})
			panic("boom")
		})
	})

	_, err := f.users.FindByUsername(ctx, "panicky")
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}
