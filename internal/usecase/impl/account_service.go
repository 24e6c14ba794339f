// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"

	"warbler/config"
	"warbler/internal/domain/entity"
	domainerrors "warbler/internal/domain/errors"
	"warbler/internal/domain/repository"
	"warbler/internal/domain/service"
	logs "warbler/internal/infra/log"
	"warbler/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// accountService implements the AccountUsecase interface.
type accountService struct {
	txManager             repository.TransactionManager
	userRepo              repository.UserRepository
	hasher                service.PasswordHasher
	deletionPolicy        entity.DeletionPolicy
	defaultImageURL       string
	defaultHeaderImageURL string
	logger                *slog.Logger
}

// AccountServiceParams holds dependencies for AccountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	UserRepo  repository.UserRepository
	Hasher    service.PasswordHasher
	Config    *config.Config
	Logger    *slog.Logger
}

// NewAccountService is the constructor for accountService. It receives all dependencies as interfaces.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	srv := &accountService{
		txManager:             params.TxManager,
		userRepo:              params.UserRepo,
		hasher:                params.Hasher,
		deletionPolicy:        entity.DeletionPolicyCascade,
		defaultImageURL:       config.PlaceholderImageURL,
		defaultHeaderImageURL: config.PlaceholderHeaderImageURL,
		logger:                params.Logger,
	}

	if params.Config != nil && params.Config.Accounts != nil {
		accounts := params.Config.Accounts
		if policy := entity.DeletionPolicy(accounts.UserDeletion); policy.IsValid() {
			srv.deletionPolicy = policy
		}
		if accounts.DefaultImageURL != "" {
			srv.defaultImageURL = accounts.DefaultImageURL
		}
		if accounts.DefaultHeaderImageURL != "" {
			srv.defaultHeaderImageURL = accounts.DefaultHeaderImageURL
		}
	}

	return srv
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return logs.FromContextOrDefault(ctx, srv.logger)
}

// Signup validates the input, hashes the password and stores the user in one transaction.
func (srv *accountService) Signup(ctx context.Context, input *usecase.SignupInput) (*entity.User, error) {
	srv.log(ctx).Info("Starting signup", slog.String("username", input.Username))

	if err := validateInput(input); err != nil {
		return nil, errors.Wrap(err, "invalid signup input")
	}

	if err := srv.hasher.ValidatePasswordStrength(input.Password); err != nil {
		srv.log(ctx).Warn("Password validation failed during signup", slog.String("username", input.Username), slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrValidationFailed, err.Error())
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during signup", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash password during signup")
	}

	newUser := &entity.User{
		Username:       input.Username,
		Email:          input.Email,
		Password:       hashedPassword,
		ImageURL:       orDefault(input.ImageURL, srv.defaultImageURL),
		HeaderImageURL: srv.defaultHeaderImageURL,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.UserRepo().Create(ctx, newUser); err != nil {
			return errors.Wrap(err, "failed to create user during signup")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Signup failed", slog.String("username", input.Username), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute signup transaction")
	}

	srv.log(ctx).Debug("Signup completed", slog.Any("userID", newUser.ID))

	return newUser, nil
}

// Authenticate checks the password outside any transaction (bcrypt is CPU-bound).
func (srv *accountService) Authenticate(ctx context.Context, username, password string) (*entity.User, bool, error) {
	user, err := srv.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			srv.log(ctx).Debug("Authentication failed: unknown username", slog.String("username", username))

			return nil, false, nil
		}

		return nil, false, errors.Wrap(err, "failed to find user for authentication")
	}

	ok, err := srv.hasher.Verify(password, user.Password)
	if err != nil {
		srv.log(ctx).Error("Stored password hash is unreadable", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, false, errors.Wrap(err, "failed to verify password")
	}
	if !ok {
		srv.log(ctx).Debug("Authentication failed: password mismatch", slog.Any("userID", user.ID))

		return nil, false, nil
	}

	return user, true, nil
}

func (srv *accountService) GetUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}

	return user, nil
}

func (srv *accountService) GetUserByUsername(ctx context.Context, username string) (*entity.User, error) {
	user, err := srv.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user by username")
	}

	return user, nil
}

// UpdateProfile loads the user, re-checks the current password and saves the new profile fields.
func (srv *accountService) UpdateProfile(ctx context.Context, userID uuid.UUID, input *usecase.UpdateProfileInput) (*entity.User, error) {
	srv.log(ctx).Info("Updating user profile", slog.Any("userID", userID))

	if err := validateInput(input); err != nil {
		return nil, errors.Wrap(err, "invalid profile input")
	}

	var updated *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		user, err := userRepo.FindByID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to find user")
		}

		ok, err := srv.hasher.Verify(input.CurrentPassword, user.Password)
		if err != nil {
			return errors.Wrap(err, "failed to verify current password")
		}
		if !ok {
			return errors.Wrap(domainerrors.ErrInvalidCredentials, "current password does not match")
		}

		applyProfile(user, input, srv.defaultImageURL, srv.defaultHeaderImageURL)

		if err := userRepo.Update(ctx, user); err != nil {
			return errors.Wrap(err, "failed to update user")
		}
		updated = user

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Profile update failed", slog.Any("userID", userID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute profile update transaction")
	}

	return updated, nil
}

// DeleteUser removes the user under the configured policy in one transaction.
func (srv *accountService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	srv.log(ctx).Info("Deleting user", slog.Any("userID", userID), slog.String("policy", string(srv.deletionPolicy)))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if _, err := repoFactory.UserRepo().FindByID(ctx, userID); err != nil {
			return errors.Wrap(err, "failed to find user")
		}

		switch srv.deletionPolicy {
		case entity.DeletionPolicyRestrict:
			if err := ensureNoDependents(ctx, repoFactory, userID); err != nil {
				return err
			}
		default:
			if err := deleteDependents(ctx, repoFactory, userID); err != nil {
				return err
			}
		}

		if err := repoFactory.UserRepo().Delete(ctx, userID); err != nil {
			return errors.Wrap(err, "failed to delete user")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("User deletion failed", slog.Any("userID", userID), slog.Any("error", err))

		return errors.Wrap(err, "failed to execute user deletion transaction")
	}

	return nil
}

// deleteDependents removes, in order, the likes the user gave, the user's messages with the likes
// they received, and every follow edge touching the user.
func deleteDependents(ctx context.Context, repoFactory repository.RepositoryFactory, userID uuid.UUID) error {
	if err := repoFactory.LikeRepo().DeleteByUser(ctx, userID); err != nil {
		return errors.Wrap(err, "failed to delete likes of user")
	}
	if err := repoFactory.MessageRepo().DeleteByUser(ctx, userID); err != nil {
		return errors.Wrap(err, "failed to delete messages of user")
	}
	if err := repoFactory.FollowRepo().DeleteByUser(ctx, userID); err != nil {
		return errors.Wrap(err, "failed to delete follows of user")
	}

	return nil
}

func ensureNoDependents(ctx context.Context, repoFactory repository.RepositoryFactory, userID uuid.UUID) error {
	counters := []struct {
		what  string
		count func(context.Context, uuid.UUID) (int64, error)
	}{
		{"messages", repoFactory.MessageRepo().CountByUser},
		{"follows", repoFactory.FollowRepo().CountByUser},
		{"likes", repoFactory.LikeRepo().CountByUser},
	}

	for _, counter := range counters {
		n, err := counter.count(ctx, userID)
		if err != nil {
			return errors.Wrapf(err, "failed to count %s of user", counter.what)
		}
		if n > 0 {
			return domainerrors.ErrIntegrityViolation.WrapMessage("user still has " + counter.what)
		}
	}

	return nil
}

func (srv *accountService) SearchUsers(ctx context.Context, query string) ([]*entity.User, error) {
	users, err := srv.userRepo.Search(ctx, query, 0)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search users")
	}

	return users, nil
}

// ResetAll empties every table, children first.
func (srv *accountService) ResetAll(ctx context.Context) error {
	srv.log(ctx).Warn("Resetting all data")

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.LikeRepo().DeleteAll(ctx); err != nil {
			return errors.Wrap(err, "failed to delete likes")
		}
		if err := repoFactory.FollowRepo().DeleteAll(ctx); err != nil {
			return errors.Wrap(err, "failed to delete follows")
		}
		if err := repoFactory.MessageRepo().DeleteAll(ctx); err != nil {
			return errors.Wrap(err, "failed to delete messages")
		}
		if err := repoFactory.UserRepo().DeleteAll(ctx); err != nil {
			return errors.Wrap(err, "failed to delete users")
		}

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to execute reset transaction")
	}

	return nil
}

func applyProfile(user *entity.User, input *usecase.UpdateProfileInput, defaultImageURL, defaultHeaderImageURL string) {
	if input.Username != "" {
		user.Username = input.Username
	}
	if input.Email != "" {
		user.Email = input.Email
	}
	user.ImageURL = orDefault(input.ImageURL, defaultImageURL)
	user.HeaderImageURL = orDefault(input.HeaderImageURL, defaultHeaderImageURL)
	user.Bio = input.Bio
	user.Location = input.Location
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}
