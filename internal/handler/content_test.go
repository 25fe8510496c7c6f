package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/second-brain/internal/model"
)

func TestContentHandler_HandleCreate(t *testing.T) {
	t.Run("valid item", func(t *testing.T) {
		env := newTestEnv(t)
		token := env.signup(t, "alice", "Passw0rd!")

		rr := env.do(t, http.MethodPost, "/api/v1/content", token, map[string]any{
			"title": "  Go proverbs  ",
			"link":  "https://go-proverbs.github.io",
			"type":  "link",
			"tags":  []string{"Go", "go", "  talks "},
		})

		assert.Equal(t, http.StatusCreated, rr.Code)

		var item model.Content
		decodeBody(t, rr, &item)
		assert.NotEmpty(t, item.ID)
		assert.Equal(t, "Go proverbs", item.Title)
		assert.Equal(t, model.TypeLink, item.Type)
		assert.Equal(t, []string{"go", "talks"}, item.Tags)
	})

	t.Run("rejects without token", func(t *testing.T) {
		env := newTestEnv(t)

		rr := env.do(t, http.MethodPost, "/api/v1/content", "", map[string]any{
			"title": "t",
			"link":  "https://example.com",
			"type":  "link",
		})

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("validation failures", func(t *testing.T) {
		env := newTestEnv(t)
		token := env.signup(t, "alice", "Passw0rd!")

		tests := []struct {
			name string
			body map[string]any
		}{
			{"empty title", map[string]any{"title": "  ", "link": "https://x.com/1", "type": "link"}},
			{"non-http link", map[string]any{"title": "t", "link": "ftp://x.com/1", "type": "link"}},
			{"relative link", map[string]any{"title": "t", "link": "/just/a/path", "type": "link"}},
			{"unknown type", map[string]any{"title": "t", "link": "https://x.com/1", "type": "podcast"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rr := env.do(t, http.MethodPost, "/api/v1/content", token, tt.body)
				assert.Equal(t, http.StatusBadRequest, rr.Code)

				var res struct {
					Error string `json:"error"`
				}
				decodeBody(t, rr, &res)
				assert.Equal(t, "validation_error", res.Error)
			})
		}
	})
}

func TestContentHandler_HandleList(t *testing.T) {
	t.Run("lists only the caller's items", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.signup(t, "alice", "Passw0rd!")
		bob := env.signup(t, "bob", "Passw0rd!")

		create := env.do(t, http.MethodPost, "/api/v1/content", alice, map[string]any{
			"title": "alice's item",
			"link":  "https://example.com/a",
			"type":  "document",
		})
		require.Equal(t, http.StatusCreated, create.Code)

		var listing struct {
			Content []model.Content `json:"content"`
		}

		rr := env.do(t, http.MethodGet, "/api/v1/content", alice, nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		decodeBody(t, rr, &listing)
		require.Len(t, listing.Content, 1)
		assert.Equal(t, "alice's item", listing.Content[0].Title)

		rr = env.do(t, http.MethodGet, "/api/v1/content", bob, nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		decodeBody(t, rr, &listing)
		assert.Empty(t, listing.Content)
	})

	t.Run("empty listing is an array, not null", func(t *testing.T) {
		env := newTestEnv(t)
		token := env.signup(t, "alice", "Passw0rd!")

		rr := env.do(t, http.MethodGet, "/api/v1/content", token, nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"content":[]`)
	})
}

func TestContentHandler_HandleDelete(t *testing.T) {
	t.Run("owner deletes own item", func(t *testing.T) {
		env := newTestEnv(t)
		token := env.signup(t, "alice", "Passw0rd!")

		create := env.do(t, http.MethodPost, "/api/v1/content", token, map[string]any{
			"title": "t",
			"link":  "https://example.com",
			"type":  "link",
		})
		require.Equal(t, http.StatusCreated, create.Code)

		var item model.Content
		decodeBody(t, create, &item)

		rr := env.do(t, http.MethodDelete, "/api/v1/content/"+item.ID, token, nil)
		assert.Equal(t, http.StatusOK, rr.Code)

		var res struct {
			Deleted int64 `json:"deleted"`
		}
		decodeBody(t, rr, &res)
		assert.Equal(t, int64(1), res.Deleted)

		list := env.do(t, http.MethodGet, "/api/v1/content", token, nil)
		assert.Contains(t, list.Body.String(), `"content":[]`)
	})

	t.Run("cannot delete another user's item", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.signup(t, "alice", "Passw0rd!")
		bob := env.signup(t, "bob", "Passw0rd!")

		create := env.do(t, http.MethodPost, "/api/v1/content", alice, map[string]any{
			"title": "alice's item",
			"link":  "https://example.com",
			"type":  "link",
		})
		require.Equal(t, http.StatusCreated, create.Code)

		var item model.Content
		decodeBody(t, create, &item)

		rr := env.do(t, http.MethodDelete, "/api/v1/content/"+item.ID, bob, nil)
		assert.Equal(t, http.StatusOK, rr.Code)

		var res struct {
			Deleted int64 `json:"deleted"`
		}
		decodeBody(t, rr, &res)
		assert.Equal(t, int64(0), res.Deleted)

		// Alice's item is untouched.
		list := env.do(t, http.MethodGet, "/api/v1/content", alice, nil)
		assert.Contains(t, list.Body.String(), "alice's item")
	})
}
