//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/defile/defile/internal/model"
	"github.com/defile/defile/internal/testutil"
)

func newShareTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()

	databaseURL := testutil.RequireEnv(t, "TEST_DATABASE_URL")
	ctx := context.Background()

	repo, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("connect to test database: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.pool)
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() { _ = unlock() })

	if err := repo.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := repo.pool.Exec(ctx, "DELETE FROM shares"); err != nil {
		t.Fatalf("reset shares: %v", err)
	}

	return ctx, repo
}

func newTestShare(filename string) *model.Share {
	return &model.Share{
		ID:        ulid.Make().String(),
		Filename:  filename,
		UID:       uuid.New(),
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestIntegrationShareRepository_CreateAndGet(t *testing.T) {
	ctx, repo := newShareTestEnv(t)

	share := newTestShare("report.pdf")
	if err := repo.CreateShare(ctx, share); err != nil {
		t.Fatalf("CreateShare failed: %v", err)
	}

	got, err := repo.GetShareByUID(ctx, share.UID)
	if err != nil {
		t.Fatalf("GetShareByUID failed: %v", err)
	}
	if got.ID != share.ID || got.Filename != share.Filename || got.UID != share.UID {
		t.Errorf("retrieved share mismatch: got %+v, want %+v", got, share)
	}
}

func TestIntegrationShareRepository_GetMissing(t *testing.T) {
	ctx, repo := newShareTestEnv(t)

	if _, err := repo.GetShareByUID(ctx, uuid.New()); !errors.Is(err, ErrShareNotFound) {
		t.Errorf("expected ErrShareNotFound, got %v", err)
	}
}

func TestIntegrationShareRepository_DeleteByUID(t *testing.T) {
	ctx, repo := newShareTestEnv(t)

	share := newTestShare("a.txt")
	if err := repo.CreateShare(ctx, share); err != nil {
		t.Fatalf("CreateShare failed: %v", err)
	}

	deleted, err := repo.DeleteShareByUID(ctx, share.UID)
	if err != nil {
		t.Fatalf("DeleteShareByUID failed: %v", err)
	}
	if !deleted {
		t.Error("first delete should report a removed row")
	}

	// Second delete of the same uid: the loser of the consumption race.
	deleted, err = repo.DeleteShareByUID(ctx, share.UID)
	if err != nil {
		t.Fatalf("DeleteShareByUID (second) failed: %v", err)
	}
	if deleted {
		t.Error("second delete should be a no-op")
	}
}

func TestIntegrationShareRepository_DeleteByFilename(t *testing.T) {
	ctx, repo := newShareTestEnv(t)

	for _, filename := range []string{"a.txt", "a.txt", "b.txt"} {
		if err := repo.CreateShare(ctx, newTestShare(filename)); err != nil {
			t.Fatalf("CreateShare failed: %v", err)
		}
	}

	forFile, err := repo.GetSharesByFilename(ctx, "a.txt")
	if err != nil {
		t.Fatalf("GetSharesByFilename failed: %v", err)
	}
	if len(forFile) != 2 {
		t.Fatalf("expected 2 shares for a.txt, got %d", len(forFile))
	}

	if err := repo.DeleteSharesByFilename(ctx, "a.txt"); err != nil {
		t.Fatalf("DeleteSharesByFilename failed: %v", err)
	}

	if forFile, err = repo.GetSharesByFilename(ctx, "a.txt"); err != nil || len(forFile) != 0 {
		t.Errorf("expected no shares for a.txt after delete, got %d (%v)", len(forFile), err)
	}

	remaining, err := repo.ListShares(ctx)
	if err != nil {
		t.Fatalf("ListShares failed: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Filename != "b.txt" {
		t.Errorf("expected only b.txt to remain, got %+v", remaining)
	}
}

func TestIntegrationShareRepository_ListNewestFirst(t *testing.T) {
	ctx, repo := newShareTestEnv(t)

	older := newTestShare("old.txt")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := newTestShare("new.txt")

	if err := repo.CreateShare(ctx, older); err != nil {
		t.Fatal(err)
	}
	if err := repo.CreateShare(ctx, newer); err != nil {
		t.Fatal(err)
	}

	shares, err := repo.ListShares(ctx)
	if err != nil {
		t.Fatalf("ListShares failed: %v", err)
	}
	if len(shares) != 2 || shares[0].Filename != "new.txt" {
		t.Errorf("expected newest first, got %+v", shares)
	}
}

func TestIntegrationUserRepository_SeedAndPasswordChange(t *testing.T) {
	ctx, repo := newShareTestEnv(t)

	if _, err := repo.pool.Exec(ctx, "DELETE FROM users WHERE username = 'it-admin'"); err != nil {
		t.Fatal(err)
	}

	if err := repo.SeedAdminUser(ctx, "it-admin", "$argon2id$fake"); err != nil {
		t.Fatalf("SeedAdminUser failed: %v", err)
	}
	// Seeding again is a no-op.
	if err := repo.SeedAdminUser(ctx, "it-admin", "$argon2id$other"); err != nil {
		t.Fatalf("SeedAdminUser (repeat) failed: %v", err)
	}

	user, err := repo.GetUserByUsername(ctx, "it-admin")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if user.PasswordHash != "$argon2id$fake" {
		t.Errorf("repeat seed must not overwrite password, got %q", user.PasswordHash)
	}

	if err := repo.UpdateUserPassword(ctx, user.ID, "$argon2id$new"); err != nil {
		t.Fatalf("UpdateUserPassword failed: %v", err)
	}
	updated, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if updated.PasswordHash != "$argon2id$new" {
		t.Error("password hash should be updated")
	}
}
