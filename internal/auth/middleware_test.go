package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// okHandler records whether the downstream handler ran and with which userID.
type okHandler struct {
	called bool
	userID string
}

func (h *okHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.userID, _ = UserIDFromContext(r.Context())
	w.WriteHeader(http.StatusOK)
}

func TestRequireAuth_ValidToken(t *testing.T) {
	ts := newTestTokenService(t)
	token, err := ts.Generate("user-42")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	downstream := &okHandler{}
	handler := RequireAuth(ts)(downstream)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/content", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !downstream.called {
		t.Fatal("downstream handler was not invoked")
	}
	if downstream.userID != "user-42" {
		t.Errorf("userID in context = %q, want %q", downstream.userID, "user-42")
	}
}

func TestRequireAuth_Rejects(t *testing.T) {
	ts := newTestTokenService(t)

	validToken, _ := ts.Generate("user-42")
	expiredToken, _ := ts.GenerateWithDuration("user-42", -time.Minute)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic " + validToken},
		{name: "bare token without scheme", header: validToken},
		{name: "garbage token", header: "Bearer not.a.jwt"},
		{name: "expired token", header: "Bearer " + expiredToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			downstream := &okHandler{}
			handler := RequireAuth(ts)(downstream)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/content", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rr.Code)
			}
			if downstream.called {
				t.Error("downstream handler ran despite the auth failure")
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
		})
	}
}

func TestRequireAuth_SchemeIsCaseInsensitive(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.Generate("user-42")

	downstream := &okHandler{}
	handler := RequireAuth(ts)(downstream)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/content", nil)
	req.Header.Set("Authorization", "bearer "+token)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (RFC 7235 schemes are case-insensitive)", rr.Code)
	}
}

func TestUserIDFromContext_Anonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if id, ok := UserIDFromContext(req.Context()); ok || id != "" {
		t.Errorf("UserIDFromContext() = (%q, %v), want (\"\", false)", id, ok)
	}
}
