package main

import (
	"context"
	"flag"
	"fmt"

	"warbler/internal/domain/entity"
	"warbler/internal/infra/persistence/rdb"
	"warbler/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errors.Wrapf(err, "failed to parse %s flags", fs.Name())
	}

	return nil
}

// requireUser resolves a username flag to the stored user.
func requireUser(ctx context.Context, svc *services, flagName, username string) (*entity.User, error) {
	if username == "" {
		return nil, errors.Errorf("-%s flag is required", flagName)
	}

	user, err := svc.accounts.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, errors.Wrapf(err, "unknown user %q", username)
	}

	return user, nil
}

func parseMessageID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, errors.New("-id flag is required")
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Wrapf(err, "invalid message id %q", raw)
	}

	return id, nil
}

func runMigrate(ctx context.Context, svc *services, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if err := rdb.Migrate(svc.db.WithContext(ctx)); err != nil {
		return err
	}
	fmt.Println("Schema is up to date")

	return nil
}

func runReset(ctx context.Context, svc *services, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if err := svc.accounts.ResetAll(ctx); err != nil {
		return err
	}
	fmt.Println("All data deleted")

	return nil
}

func runSignup(ctx context.Context, svc *services, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	username := fs.String("username", "", "Unique username")
	email := fs.String("email", "", "Unique email address")
	password := fs.String("password", "", "Password")
	image := fs.String("image", "", "Profile image URL (placeholder when empty)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	user, err := svc.accounts.Signup(ctx, &usecase.SignupInput{
		Username: *username,
		Email:    *email,
		Password: *password,
		ImageURL: *image,
	})
	if err != nil {
		return err
	}
	fmt.Println(user)

	return nil
}

func runLogin(ctx context.Context, svc *services, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("username", "", "Username")
	password := fs.String("password", "", "Password")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	user, ok, err := svc.accounts.Authenticate(ctx, *username, *password)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("invalid username or password")
	}
	fmt.Printf("Hello, %s!\n", user.Username)

	return nil
}

func runProfile(ctx context.Context, svc *services, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	as := fs.String("as", "", "Username of the acting user")
	password := fs.String("password", "", "Current password")
	username := fs.String("username", "", "New username")
	email := fs.String("email", "", "New email address")
	image := fs.String("image", "", "Profile image URL")
	header := fs.String("header", "", "Header image URL")
	bio := fs.String("bio", "", "Bio")
	location := fs.String("location", "", "Location")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	user, err := requireUser(ctx, svc, "as", *as)
	if err != nil {
		return err
	}

	updated, err := svc.accounts.UpdateProfile(ctx, user.ID, &usecase.UpdateProfileInput{
		Username:        *username,
		Email:           *email,
		ImageURL:        *image,
		HeaderImageURL:  *header,
		Bio:             *bio,
		Location:        *location,
		CurrentPassword: *password,
	})
	if err != nil {
		return err
	}
	fmt.Println(updated)

	return nil
}

func runPost(ctx context.Context, svc *services, args []string) error {
	fs := flag.NewFlagSet("post", flag.ContinueOnError)
	as := fs.String("as", "", "Username of the author")
	text := fs.String("text", "", "Message text, at most 140 characters")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	user, err := requireUser(ctx, svc, "as", *as)
	if err != nil {
		return err
	}

	message, err := svc.messages.CreateMessage(ctx, &usecase.CreateMessageInput{UserID: user.ID, Text: *text})
	if err != nil {
		return err
	}
	fmt.Printf("Posted %s\n", message.ID)

	return nil
}

func runDeleteMessage(ctx context.Context, svc *services, args []string) error {
	fs := flag.NewFlagSet("delete-message", flag.ContinueOnError)
	as := fs.String("as", "", "Username of the author")
	rawID := fs.String("id", "", "Message id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	user, err := requireUser(ctx, svc, "as", *as)
	if err != nil {
		return err
	}
	messageID, err := parseMessageID(*rawID)
	if err != nil {
		return err
	}

	return svc.messages.DeleteMessage(ctx, user.ID, messageID)
}

func runFollow(ctx context.Context, svc *services, args []string) error {
	return runFollowEdge(ctx, svc, "follow", args, svc.graph.Follow)
}

func runUnfollow(ctx context.Context, svc *services, args []string) error {
	return runFollowEdge(ctx, svc, "unfollow", args, svc.graph.Unfollow)
}

func runFollowEdge(
	ctx context.Context,
	svc *services,
	name string,
	args []string,
	apply func(ctx context.Context, followerID, followedID uuid.UUID) error,
) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	as := fs.String("as", "", "Username of the follower")
	target := fs.String("user", "", "Username of the followed user")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	follower, err := requireUser(ctx, svc, "as", *as)
	if err != nil {
		return err
	}
	followed, err := requireUser(ctx, svc, "user", *target)
	if err != nil {
		return err
	}

	return apply(ctx, follower.ID, followed.ID)
}

func runLike(ctx context.Context, svc *services, args []string) error {
	fs := flag.NewFlagSet("like", flag.ContinueOnError)
	as := fs.String("as", "", "Username of the liking user")
	rawID := fs.String("id", "", "Message id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	user, err := requireUser(ctx, svc, "as", *as)
	if err != nil {
		return err
	}
	messageID, err := parseMessageID(*rawID)
	if err != nil {
		return err
	}

	liked, err := svc.graph.ToggleLike(ctx, user.ID, messageID)
	if err != nil {
		return err
	}
	if liked {
		fmt.Println("Liked")
	} else {
		fmt.Println("Unliked")
	}

	return nil
}

func runShow(ctx context.Context, svc *services, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	target := fs.String("user", "", "Username to show")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	user, err := requireUser(ctx, svc, "user", *target)
	if err != nil {
		return err
	}

	messages, err := svc.graph.MessagesOf(ctx, user.ID)
	if err != nil {
		return err
	}
	followers, err := svc.graph.FollowersOf(ctx, user.ID)
	if err != nil {
		return err
	}
	following, err := svc.graph.FollowingOf(ctx, user.ID)
	if err != nil {
		return err
	}
	likes, err := svc.graph.LikesOf(ctx, user.ID)
	if err != nil {
		return err
	}

	fmt.Println(user)
	if user.Bio != "" {
		fmt.Printf("  %s\n", user.Bio)
	}
	fmt.Printf("  messages: %d  followers: %d  following: %d  likes: %d\n",
		len(messages), len(followers), len(following), len(likes))
	printMessages(messages, map[uuid.UUID]string{user.ID: user.Username})

	return nil
}

func runUsers(ctx context.Context, svc *services, args []string) error {
	fs := flag.NewFlagSet("users", flag.ContinueOnError)
	query := fs.String("q", "", "Username substring")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	users, err := svc.accounts.SearchUsers(ctx, *query)
	if err != nil {
		return err
	}
	for _, user := range users {
		fmt.Println(user)
	}

	return nil
}

func runTimeline(ctx context.Context, svc *services, args []string) error {
	fs := flag.NewFlagSet("timeline", flag.ContinueOnError)
	as := fs.String("as", "", "Username whose timeline to show")
	limit := fs.Int("limit", 0, "Maximum number of messages (configured default when 0)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	user, err := requireUser(ctx, svc, "as", *as)
	if err != nil {
		return err
	}

	messages, err := svc.graph.Timeline(ctx, user.ID, *limit)
	if err != nil {
		return err
	}

	authors := map[uuid.UUID]string{user.ID: user.Username}
	following, err := svc.graph.FollowingOf(ctx, user.ID)
	if err != nil {
		return err
	}
	for _, followed := range following {
		authors[followed.ID] = followed.Username
	}
	printMessages(messages, authors)

	return nil
}

func runDeleteUser(ctx context.Context, svc *services, args []string) error {
	fs := flag.NewFlagSet("delete-user", flag.ContinueOnError)
	target := fs.String("user", "", "Username to delete")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	user, err := requireUser(ctx, svc, "user", *target)
	if err != nil {
		return err
	}

	if err := svc.accounts.DeleteUser(ctx, user.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", user)

	return nil
}

func printMessages(messages []*entity.Message, authors map[uuid.UUID]string) {
	for _, message := range messages {
		fmt.Printf("  %s  %s  @%s: %s\n",
			message.ID, message.Timestamp.Format("2006-01-02 15:04"), authors[message.UserID], message.Text)
	}
}
