package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/defile/defile/internal/model"
)

// ErrShareNotFound indicates no share matched the lookup.
var ErrShareNotFound = errors.New("share not found")

// CreateShare inserts a new share into the database.
func (r *Repository) CreateShare(ctx context.Context, share *model.Share) error {
	query := `
		INSERT INTO shares (id, filename, uid, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query,
		share.ID,
		share.Filename,
		share.UID,
		share.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create share: %w", err)
	}
	return nil
}

// GetShareByUID retrieves a share by its public bearer token.
// This is the hot path for downloads.
func (r *Repository) GetShareByUID(ctx context.Context, uid uuid.UUID) (*model.Share, error) {
	query := `
		SELECT id, filename, uid, created_at
		FROM shares
		WHERE uid = $1
	`

	share, err := scanShare(r.pool.QueryRow(ctx, query, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShareNotFound
		}
		return nil, fmt.Errorf("failed to get share by uid: %w", err)
	}
	return share, nil
}

// ListShares retrieves all shares, newest first.
func (r *Repository) ListShares(ctx context.Context) ([]*model.Share, error) {
	query := `
		SELECT id, filename, uid, created_at
		FROM shares
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	defer rows.Close()

	var shares []*model.Share
	for rows.Next() {
		share, err := scanShare(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		shares = append(shares, share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shares: %w", err)
	}

	return shares, nil
}

// GetSharesByFilename retrieves every share referencing a filename.
func (r *Repository) GetSharesByFilename(ctx context.Context, filename string) ([]*model.Share, error) {
	query := `
		SELECT id, filename, uid, created_at
		FROM shares
		WHERE filename = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to get shares by filename: %w", err)
	}
	defer rows.Close()

	var shares []*model.Share
	for rows.Next() {
		share, err := scanShare(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		shares = append(shares, share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shares: %w", err)
	}

	return shares, nil
}

// DeleteShareByUID deletes a share and reports whether a row was removed.
// The row count is what the single-use download contract races on: of two
// concurrent consumers, exactly one observes deleted=true.
func (r *Repository) DeleteShareByUID(ctx context.Context, uid uuid.UUID) (bool, error) {
	query := `DELETE FROM shares WHERE uid = $1`

	result, err := r.pool.Exec(ctx, query, uid)
	if err != nil {
		return false, fmt.Errorf("failed to delete share: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// DeleteSharesByFilename deletes every share referencing a filename.
func (r *Repository) DeleteSharesByFilename(ctx context.Context, filename string) error {
	query := `DELETE FROM shares WHERE filename = $1`

	if _, err := r.pool.Exec(ctx, query, filename); err != nil {
		return fmt.Errorf("failed to delete shares for file: %w", err)
	}
	return nil
}

// scanShare scans a single row into a Share model.
func scanShare(row pgx.Row) (*model.Share, error) {
	var share model.Share
	err := row.Scan(
		&share.ID,
		&share.Filename,
		&share.UID,
		&share.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &share, nil
}
