// Package repository declares the storage interfaces the service layer
// programs against. The sqlite subpackage provides the real implementation;
// tests substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/sakif/second-brain/internal/model"
)

// UserRepository stores user credentials.
//
// Username uniqueness is the repository's invariant: Create must fail with
// apperror.ErrConflict when the username is taken, atomically at the storage
// layer — two concurrent signups for the same name can interleave between any
// pre-check and the insert, so a unique index is the correctness mechanism.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// GetByGitHubID looks up an OAuth-linked account. ErrNotFound on miss.
	GetByGitHubID(ctx context.Context, githubID int64) (*model.User, error)
}

// ContentRepository stores content items scoped to an owning user.
type ContentRepository interface {
	Create(ctx context.Context, content *model.Content) error
	// ListByOwner returns a one-shot snapshot of the owner's items in
	// insertion order.
	ListByOwner(ctx context.Context, ownerID string) ([]model.Content, error)
	// DeleteByOwnerAndID removes the item only when BOTH owner and id match,
	// and reports how many rows went away (0 or 1). The owner filter is what
	// keeps one user from deleting another's items.
	DeleteByOwnerAndID(ctx context.Context, ownerID, contentID string) (int64, error)
}

// ShareLinkRepository stores at most one public share hash per user.
//
// Create must fail with apperror.ErrConflict on either unique index: a hash
// collision (never overwrite another user's link) or a second link for the
// same owner (the enable/enable race — the caller re-reads the winner).
type ShareLinkRepository interface {
	Create(ctx context.Context, link *model.ShareLink) error
	GetByOwner(ctx context.Context, ownerID string) (*model.ShareLink, error)
	GetByHash(ctx context.Context, hash string) (*model.ShareLink, error)
	// DeleteByOwner removes the owner's link if present; no-op otherwise.
	DeleteByOwner(ctx context.Context, ownerID string) error
}
