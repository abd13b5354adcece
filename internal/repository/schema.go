package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/defile/defile/internal/model"
)

// Schema mirrors the portal's two tables. Migration runs at startup and is
// idempotent; there is no down path because dropping either table destroys
// live shares.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	username   TEXT NOT NULL UNIQUE,
	password   TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS shares (
	id         TEXT PRIMARY KEY,
	filename   TEXT NOT NULL,
	uid        UUID NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS shares_filename_idx ON shares (filename);
`

// Migrate creates the schema when missing.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// SeedAdminUser creates the bootstrap admin account when no user with that
// name exists yet. passwordHash must already be an argon2id PHC string; the
// seed never sees a plaintext password.
func (r *Repository) SeedAdminUser(ctx context.Context, username, passwordHash string) error {
	_, err := r.GetUserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return err
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := r.CreateUser(ctx, user); err != nil {
		// A concurrent boot may have seeded it first.
		if errors.Is(err, ErrUsernameExists) {
			return nil
		}
		return err
	}
	return nil
}
