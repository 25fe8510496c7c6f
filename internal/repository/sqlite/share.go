package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/second-brain/internal/apperror"
	"github.com/sakif/second-brain/internal/model"
	"github.com/sakif/second-brain/internal/repository"
)

// ShareLinkDB is the share_links-table view of the connection pool.
type ShareLinkDB struct {
	conn *sql.DB
}

// Compile-time check that *ShareLinkDB implements repository.ShareLinkRepository.
var _ repository.ShareLinkRepository = (*ShareLinkDB)(nil)

// Create inserts a share link.
//
// Two unique indexes can reject it, and the caller needs to tell them apart:
//   - hash collision → regenerate the hash and retry (never overwrite
//     another user's link)
//   - owner already has a link → lost an enable/enable race; re-read and
//     return the winner's hash
//
// Both come back as ErrConflict; the field distinguishes them.
func (db *ShareLinkDB) Create(ctx context.Context, link *model.ShareLink) error {
	link.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO share_links (hash, owner_id, created_at) VALUES (?, ?, ?)`,
		link.Hash,
		link.OwnerID,
		link.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "share_links.hash") {
			return &apperror.AppError{
				Err:     apperror.ErrConflict,
				Message: "share hash already in use",
				Field:   "hash",
			}
		}
		if isUniqueViolation(err, "share_links.owner_id") {
			return &apperror.AppError{
				Err:     apperror.ErrConflict,
				Message: "share link already active for this user",
				Field:   "ownerId",
			}
		}
		return fmt.Errorf("sqlite: inserting share link for owner %s: %w", link.OwnerID, err)
	}

	return nil
}

// GetByOwner returns the owner's active share link. ErrNotFound if sharing
// is off.
func (db *ShareLinkDB) GetByOwner(ctx context.Context, ownerID string) (*model.ShareLink, error) {
	return db.getShareLink(ctx, `WHERE owner_id = ?`, ownerID)
}

// GetByHash resolves a public hash. ErrNotFound for unknown (or revoked)
// hashes. Read-only: resolving never mutates state.
func (db *ShareLinkDB) GetByHash(ctx context.Context, hash string) (*model.ShareLink, error) {
	return db.getShareLink(ctx, `WHERE hash = ?`, hash)
}

func (db *ShareLinkDB) getShareLink(ctx context.Context, where, arg string) (*model.ShareLink, error) {
	var l model.ShareLink

	err := db.conn.QueryRowContext(ctx,
		`SELECT hash, owner_id, created_at FROM share_links `+where,
		arg,
	).Scan(&l.Hash, &l.OwnerID, &l.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("share link", arg)
		}
		return nil, fmt.Errorf("sqlite: getting share link: %w", err)
	}

	return &l, nil
}

// DeleteByOwner removes the owner's share link. Deleting a link that doesn't
// exist is a no-op, matching the disable contract.
func (db *ShareLinkDB) DeleteByOwner(ctx context.Context, ownerID string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM share_links WHERE owner_id = ?`,
		ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting share link for owner %s: %w", ownerID, err)
	}
	return nil
}
