package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/second-brain/internal/auth"
	"github.com/sakif/second-brain/internal/handler"
	"github.com/sakif/second-brain/internal/repository/sqlite"
	"github.com/sakif/second-brain/internal/service"
)

// testEnv wires real services over an in-memory database and mounts the
// handlers the way the server does, auth gate included.
type testEnv struct {
	router *chi.Mux
	db     *sqlite.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	require.NoError(t, err)
	passwords := auth.NewPasswordServiceForTest(bcrypt.MinCost)

	authSvc := service.NewAuthService(db.Users(), tokens, passwords, logger)
	contentSvc := service.NewContentService(db.Content(), logger)
	shareSvc := service.NewShareService(db.ShareLinks(), db.Users(), db.Content(), logger)

	authHandler := handler.NewAuthHandler(authSvc, nil, logger)
	contentHandler := handler.NewContentHandler(contentSvc, logger)
	shareHandler := handler.NewShareHandler(shareSvc, logger)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/signup", authHandler.HandleSignup)
		r.Post("/signin", authHandler.HandleSignin)
		r.Get("/brain/{shareLink}", shareHandler.HandleResolve)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Post("/content", contentHandler.HandleCreate)
			r.Get("/content", contentHandler.HandleList)
			r.Delete("/content/{contentId}", contentHandler.HandleDelete)
			r.Post("/brain/share", shareHandler.HandleShare)
		})
	})

	return &testEnv{router: r, db: db}
}

// do sends a JSON request through the router. token may be empty.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// signup registers a user and returns their bearer token.
func (e *testEnv) signup(t *testing.T, username, password string) string {
	t.Helper()

	rr := e.do(t, http.MethodPost, "/api/v1/signup", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, rr.Code, "signup body: %s", rr.Body.String())

	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

// decodeBody decodes rr's JSON body into out.
func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rr.Body).Decode(out))
}
