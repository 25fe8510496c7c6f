package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/second-brain/internal/apperror"
	"github.com/sakif/second-brain/internal/model"
	"github.com/sakif/second-brain/internal/repository"
)

// HashLength is the length of a public share hash.
// 10 chars over a 64-symbol alphabet ≈ 60 bits of entropy — collisions are
// negligible at any plausible user count, and the rare one is retried.
const HashLength = 10

// hashAlphabet is URL-safe: the hash is a path segment, so it must survive
// a URL unescaped. 64 symbols means each random byte maps to one symbol with
// no modulo bias.
const hashAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_"

// maxHashAttempts bounds the collision-retry loop. With 60-bit hashes the
// second attempt is already astronomically unlikely; hitting the bound means
// something is broken, not unlucky.
const maxHashAttempts = 5

// ShareService manages the per-user public share link.
//
// Per-user state machine: NoLink ↔ LinkActive(hash). Enable is idempotent —
// re-enabling returns the existing hash, never a second one. Disable deletes
// the link; resolving a revoked hash then fails with not-found.
type ShareService struct {
	shares  repository.ShareLinkRepository
	users   repository.UserRepository
	content repository.ContentRepository
	logger  *slog.Logger
}

// NewShareService creates a ShareService.
func NewShareService(
	shares repository.ShareLinkRepository,
	users repository.UserRepository,
	content repository.ContentRepository,
	logger *slog.Logger,
) *ShareService {
	return &ShareService{
		shares:  shares,
		users:   users,
		content: content,
		logger:  logger,
	}
}

// Enable turns sharing on for ownerID and returns the share hash.
//
// If a link is already active, the existing hash comes back unchanged.
// Otherwise a fresh hash is minted; on a hash collision the insert fails
// against the unique index and generation retries. If a concurrent Enable
// wins the one-link-per-owner race, the loser re-reads and returns the
// winner's hash — both callers see the same value.
func (s *ShareService) Enable(ctx context.Context, ownerID string) (string, error) {
	existing, err := s.shares.GetByOwner(ctx, ownerID)
	if err == nil {
		return existing.Hash, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return "", fmt.Errorf("service/share: checking existing link: %w", err)
	}

	for attempt := 0; attempt < maxHashAttempts; attempt++ {
		hash, err := generateHash()
		if err != nil {
			return "", fmt.Errorf("service/share: generating hash: %w", err)
		}

		link := &model.ShareLink{Hash: hash, OwnerID: ownerID}
		err = s.shares.Create(ctx, link)
		if err == nil {
			s.logger.Info("share link enabled",
				slog.String("ownerID", ownerID),
				slog.String("hash", hash),
			)
			return hash, nil
		}

		var appErr *apperror.AppError
		if errors.As(err, &appErr) && errors.Is(err, apperror.ErrConflict) {
			switch appErr.Field {
			case "hash":
				continue // collision with another user's hash: mint a new one
			case "ownerId":
				// Lost the enable/enable race; the winner's link is the link.
				winner, err := s.shares.GetByOwner(ctx, ownerID)
				if err != nil {
					return "", fmt.Errorf("service/share: re-reading link after race: %w", err)
				}
				return winner.Hash, nil
			}
		}
		return "", fmt.Errorf("service/share: creating link: %w", err)
	}

	return "", fmt.Errorf("service/share: gave up after %d hash collisions", maxHashAttempts)
}

// Disable turns sharing off for ownerID, revoking any active hash.
// No-op if sharing is already off.
func (s *ShareService) Disable(ctx context.Context, ownerID string) error {
	if err := s.shares.DeleteByOwner(ctx, ownerID); err != nil {
		return fmt.Errorf("service/share: disabling link: %w", err)
	}

	s.logger.Info("share link disabled", slog.String("ownerID", ownerID))
	return nil
}

// SharedBrain is the public projection a share hash resolves to.
type SharedBrain struct {
	Username string                `json:"username"`
	Content  []model.PublicContent `json:"content"`
}

// Resolve looks up a public hash and returns the owning user's username and
// full content listing. Unauthenticated and read-only; unknown hashes fail
// with ErrNotFound.
func (s *ShareService) Resolve(ctx context.Context, hash string) (*SharedBrain, error) {
	if hash == "" {
		return nil, apperror.NotFound("share link", hash)
	}

	link, err := s.shares.GetByHash(ctx, hash)
	if err != nil {
		return nil, err // not-found propagates as-is
	}

	owner, err := s.users.GetByID(ctx, link.OwnerID)
	if err != nil {
		// A hash pointing at a missing user means the cascade failed.
		s.logger.Error("share link references missing user",
			slog.String("hash", hash),
			slog.String("ownerID", link.OwnerID),
		)
		return nil, fmt.Errorf("service/share: resolving owner: %w", err)
	}

	items, err := s.content.ListByOwner(ctx, link.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("service/share: listing shared content: %w", err)
	}

	public := make([]model.PublicContent, 0, len(items))
	for _, item := range items {
		public = append(public, item.Public())
	}

	return &SharedBrain{
		Username: owner.Username,
		Content:  public,
	}, nil
}

// generateHash mints a cryptographically random, URL-safe hash.
func generateHash() (string, error) {
	buf := make([]byte, HashLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	for i, b := range buf {
		buf[i] = hashAlphabet[b&63]
	}
	return string(buf), nil
}
