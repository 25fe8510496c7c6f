package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/sakif/second-brain/internal/apperror"
	"github.com/sakif/second-brain/internal/model"
	"github.com/sakif/second-brain/internal/repository"
)

// MaxTitleLength caps content titles.
const MaxTitleLength = 200

// ContentService handles business logic for saved content items.
//
// Every method takes the ownerID bound by the auth middleware; the service
// passes it through to the repository on every read and write so that no
// operation can ever cross user boundaries.
type ContentService struct {
	repo   repository.ContentRepository
	logger *slog.Logger
}

// NewContentService creates a ContentService.
func NewContentService(repo repository.ContentRepository, logger *slog.Logger) *ContentService {
	return &ContentService{
		repo:   repo,
		logger: logger,
	}
}

// Create validates and saves a new content item for the given owner.
//
// All validation runs before the repository is touched — a bad request
// writes nothing. Tags are normalized into a set: trimmed, lowercased,
// deduplicated, and sorted so equal sets compare equal.
func (s *ContentService) Create(ctx context.Context, ownerID, title, link, contentType string, tags []string) (*model.Content, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title cannot exceed %d characters", MaxTitleLength))
	}

	link = strings.TrimSpace(link)
	if err := validateLink(link); err != nil {
		return nil, err
	}

	if !model.ValidContentType(contentType) {
		return nil, apperror.ValidationFailed("type",
			"type must be one of: document, tweet, youtube, link")
	}

	content := &model.Content{
		Title:   title,
		Link:    link,
		Type:    model.ContentType(contentType),
		Tags:    NormalizeTags(tags),
		OwnerID: ownerID,
	}

	if err := s.repo.Create(ctx, content); err != nil {
		s.logger.Error("failed to create content",
			slog.String("ownerID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating content: %w", err)
	}

	s.logger.Info("content created",
		slog.String("id", content.ID),
		slog.String("ownerID", ownerID),
		slog.String("type", contentType),
	)

	return content, nil
}

// ListByOwner returns the caller's items as a one-shot snapshot in
// insertion order.
func (s *ContentService) ListByOwner(ctx context.Context, ownerID string) ([]model.Content, error) {
	items, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list content",
			slog.String("ownerID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing content: %w", err)
	}

	return items, nil
}

// Delete removes one item owned by the caller and reports the deleted count.
// Deleting someone else's item (or a nonexistent id) deletes nothing and
// reports 0 — it is not an error, and it is not distinguishable from a miss.
func (s *ContentService) Delete(ctx context.Context, ownerID, contentID string) (int64, error) {
	contentID = strings.TrimSpace(contentID)
	if contentID == "" {
		return 0, apperror.ValidationFailed("contentId", "content ID is required")
	}

	deleted, err := s.repo.DeleteByOwnerAndID(ctx, ownerID, contentID)
	if err != nil {
		s.logger.Error("failed to delete content",
			slog.String("ownerID", ownerID),
			slog.String("contentID", contentID),
			slog.String("error", err.Error()),
		)
		return 0, fmt.Errorf("deleting content: %w", err)
	}

	if deleted > 0 {
		s.logger.Info("content deleted",
			slog.String("id", contentID),
			slog.String("ownerID", ownerID),
		)
	}

	return deleted, nil
}

// validateLink requires an absolute http(s) URL.
func validateLink(link string) error {
	if link == "" {
		return apperror.ValidationFailed("link", "link is required")
	}

	u, err := url.ParseRequestURI(link)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return apperror.ValidationFailed("link", "link must be a valid http(s) URL")
	}

	return nil
}

// NormalizeTags canonicalizes a tag list into a sorted, deduplicated set of
// trimmed lowercase strings. Empty entries are dropped; a nil input yields
// an empty (non-nil) set.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
