package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/second-brain/internal/apperror"
	"github.com/sakif/second-brain/internal/auth"
	"github.com/sakif/second-brain/internal/service"
)

// ShareHandler serves the share-link endpoints: the authenticated toggle and
// the public resolver.
type ShareHandler struct {
	share  *service.ShareService
	logger *slog.Logger
}

// NewShareHandler creates a ShareHandler.
func NewShareHandler(share *service.ShareService, logger *slog.Logger) *ShareHandler {
	return &ShareHandler{
		share:  share,
		logger: logger,
	}
}

// shareRequest toggles sharing: true enables (idempotently), false revokes.
type shareRequest struct {
	Share bool `json:"share"`
}

// shareResponse is returned when sharing is (or already was) enabled.
// Link is the ready-to-use public path for the hash.
type shareResponse struct {
	Hash string `json:"hash"`
	Link string `json:"link"`
}

// HandleShare enables or disables the caller's share link.
//
// HTTP: POST /api/v1/brain/share (bearer)
// {"share": true}  → 200 {hash, link}; repeated calls return the same hash.
// {"share": false} → 200 removal confirmation; a no-op when already off.
func (h *ShareHandler) HandleShare(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req shareRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if !req.Share {
		if err := h.share.Disable(r.Context(), userID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "share link removed"})
		return
	}

	hash, err := h.share.Enable(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, shareResponse{
		Hash: hash,
		Link: "/api/v1/brain/" + hash,
	})
}

// HandleResolve serves a shared brain to anyone holding the hash.
//
// HTTP: GET /api/v1/brain/{shareLink} (no auth)
// 200 {username, content}; 404 for unknown or revoked hashes.
func (h *ShareHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "shareLink")

	brain, err := h.share.Resolve(r.Context(), hash)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, brain)
}
