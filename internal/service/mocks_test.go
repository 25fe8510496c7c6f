package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/sakif/second-brain/internal/apperror"
	"github.com/sakif/second-brain/internal/model"
	"github.com/sakif/second-brain/internal/repository"
)

// In-memory mocks for the repository interfaces. The services only see the
// interfaces, so these swap in for sqlite without the services noticing —
// which is the point of programming to an interface.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---- users ----

type mockUserRepo struct {
	users  map[string]*model.User // keyed by ID
	nextID int
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Username == user.Username {
			return apperror.Conflict("user", "username already exists")
		}
		if user.GitHubID != 0 && u.GitHubID == user.GitHubID {
			return apperror.Conflict("user", "github account already linked")
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *u
	return &result, nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (m *mockUserRepo) GetByGitHubID(_ context.Context, githubID int64) (*model.User, error) {
	for _, u := range m.users {
		if githubID != 0 && u.GitHubID == githubID {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", fmt.Sprint(githubID))
}

// ---- content ----

type mockContentRepo struct {
	items  []model.Content
	nextID int
	// failCreate simulates a storage outage.
	failCreate error
}

var _ repository.ContentRepository = (*mockContentRepo)(nil)

func newMockContentRepo() *mockContentRepo {
	return &mockContentRepo{}
}

func (m *mockContentRepo) Create(_ context.Context, content *model.Content) error {
	if m.failCreate != nil {
		return m.failCreate
	}
	m.nextID++
	content.ID = fmt.Sprintf("content-%d", m.nextID)
	m.items = append(m.items, *content)
	return nil
}

func (m *mockContentRepo) ListByOwner(_ context.Context, ownerID string) ([]model.Content, error) {
	result := []model.Content{}
	for _, item := range m.items {
		if item.OwnerID == ownerID {
			result = append(result, item)
		}
	}
	return result, nil
}

func (m *mockContentRepo) DeleteByOwnerAndID(_ context.Context, ownerID, contentID string) (int64, error) {
	for i, item := range m.items {
		if item.OwnerID == ownerID && item.ID == contentID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// ---- share links ----

type mockShareRepo struct {
	byOwner map[string]*model.ShareLink
	byHash  map[string]*model.ShareLink
	// hashConflicts makes the next N Creates fail as hash collisions, to
	// exercise the regeneration loop without rigging crypto/rand.
	hashConflicts int
	// missOwnerReads makes the next N GetByOwner calls report not-found
	// even when a link exists, simulating a concurrent enable that commits
	// between the existence check and the insert.
	missOwnerReads int
	creates        int
}

var _ repository.ShareLinkRepository = (*mockShareRepo)(nil)

func newMockShareRepo() *mockShareRepo {
	return &mockShareRepo{
		byOwner: make(map[string]*model.ShareLink),
		byHash:  make(map[string]*model.ShareLink),
	}
}

func (m *mockShareRepo) Create(_ context.Context, link *model.ShareLink) error {
	m.creates++
	if m.hashConflicts > 0 {
		m.hashConflicts--
		return &apperror.AppError{Err: apperror.ErrConflict, Message: "share hash already in use", Field: "hash"}
	}
	if _, exists := m.byHash[link.Hash]; exists {
		return &apperror.AppError{Err: apperror.ErrConflict, Message: "share hash already in use", Field: "hash"}
	}
	if _, exists := m.byOwner[link.OwnerID]; exists {
		return &apperror.AppError{Err: apperror.ErrConflict, Message: "share link already active for this user", Field: "ownerId"}
	}
	stored := *link
	m.byOwner[link.OwnerID] = &stored
	m.byHash[link.Hash] = &stored
	return nil
}

func (m *mockShareRepo) GetByOwner(_ context.Context, ownerID string) (*model.ShareLink, error) {
	if m.missOwnerReads > 0 {
		m.missOwnerReads--
		return nil, apperror.NotFound("share link", ownerID)
	}
	l, ok := m.byOwner[ownerID]
	if !ok {
		return nil, apperror.NotFound("share link", ownerID)
	}
	result := *l
	return &result, nil
}

func (m *mockShareRepo) GetByHash(_ context.Context, hash string) (*model.ShareLink, error) {
	l, ok := m.byHash[hash]
	if !ok {
		return nil, apperror.NotFound("share link", hash)
	}
	result := *l
	return &result, nil
}

func (m *mockShareRepo) DeleteByOwner(_ context.Context, ownerID string) error {
	if l, ok := m.byOwner[ownerID]; ok {
		delete(m.byHash, l.Hash)
		delete(m.byOwner, ownerID)
	}
	return nil
}
