// Command reset-admin-password sets a new password for an admin account
// directly in the database. Use it when the web console is unreachable, e.g.
// after locking yourself out behind the origin gate.
//
// Usage:
//
//	go run ./scripts/reset-admin-password.go -username admin -password <new>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/defile/defile/internal/auth"
	"github.com/defile/defile/internal/repository"
)

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		username    = flag.String("username", "admin", "Account to reset")
		password    = flag.String("password", "", "New password")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *password == "" {
		fmt.Fprintln(os.Stderr, "-password is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	user, err := repo.GetUserByUsername(ctx, *username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			fmt.Fprintf(os.Stderr, "no such user: %s\n", *username)
		} else {
			fmt.Fprintln(os.Stderr, "lookup user:", err)
		}
		os.Exit(1)
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash password:", err)
		os.Exit(1)
	}

	if err := repo.UpdateUserPassword(ctx, user.ID, hash); err != nil {
		fmt.Fprintln(os.Stderr, "update password:", err)
		os.Exit(1)
	}

	fmt.Printf("password updated for %s\n", *username)
}
