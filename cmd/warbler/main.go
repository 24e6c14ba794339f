package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	domainerrors "warbler/internal/domain/errors"

	"github.com/pkg/errors"
)

// Supported subcommands. Commands acting for a user take -as <username> in place of a session.
var commands = []command{
	{name: "migrate", summary: "Create or update the database schema", run: runMigrate},
	{name: "reset", summary: "Delete every user, message, follow and like", run: runReset},
	{name: "signup", summary: "Create an account", run: runSignup},
	{name: "login", summary: "Check a username and password", run: runLogin},
	{name: "profile", summary: "Update the profile of -as", run: runProfile},
	{name: "post", summary: "Post a message as -as", run: runPost},
	{name: "delete-message", summary: "Delete a message written by -as", run: runDeleteMessage},
	{name: "follow", summary: "Make -as follow -user", run: runFollow},
	{name: "unfollow", summary: "Make -as stop following -user", run: runUnfollow},
	{name: "like", summary: "Like or unlike a message as -as", run: runLike},
	{name: "show", summary: "Show a user with messages, followers, following and likes", run: runShow},
	{name: "users", summary: "Search users by username", run: runUsers},
	{name: "timeline", summary: "Show the timeline of -as", run: runTimeline},
	{name: "delete-user", summary: "Delete a user under the configured deletion policy", run: runDeleteUser},
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, svc *services, args []string) error
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runSubcommand(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", domainerrors.NewErrorInfo(err))
		stop()
		os.Exit(1)
	}
}

func runSubcommand(ctx context.Context, name string, args []string) error {
	for _, cmd := range commands {
		if cmd.name != name {
			continue
		}

		return runWithApp(ctx, func(ctx context.Context, svc *services) error {
			return cmd.run(ctx, svc, args)
		})
	}

	printUsage()

	return errors.Errorf("unknown subcommand: %s", name)
}

func printUsage() {
	fmt.Println("Usage: warbler <command> [options]")
	fmt.Println("")
	fmt.Println("Commands:")
	for _, cmd := range commands {
		fmt.Printf("  %-16s %s\n", cmd.name, cmd.summary)
	}
	fmt.Println("")
	fmt.Println("Use 'warbler <command> -h' for more information about a command.")
}
