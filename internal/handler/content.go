package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/second-brain/internal/apperror"
	"github.com/sakif/second-brain/internal/auth"
	"github.com/sakif/second-brain/internal/model"
	"github.com/sakif/second-brain/internal/service"
)

// ContentHandler serves the owner-scoped content endpoints. All three routes
// sit behind auth.RequireAuth, so the userID is always in the context.
type ContentHandler struct {
	content *service.ContentService
	logger  *slog.Logger
}

// NewContentHandler creates a ContentHandler.
func NewContentHandler(content *service.ContentService, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{
		content: content,
		logger:  logger,
	}
}

// createContentRequest is the body for POST /api/v1/content.
type createContentRequest struct {
	Title string   `json:"title"`
	Link  string   `json:"link"`
	Type  string   `json:"type"`
	Tags  []string `json:"tags"`
}

// HandleCreate saves a new content item for the caller.
//
// HTTP: POST /api/v1/content (bearer)
// 201 with the created item; 400 on validation failure.
func (h *ContentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		// Unreachable behind RequireAuth, but don't trust that silently.
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req createContentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	item, err := h.content.Create(r.Context(), userID, req.Title, req.Link, req.Type, req.Tags)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// listContentResponse wraps the listing so the payload stays extensible.
type listContentResponse struct {
	Content []model.Content `json:"content"`
}

// HandleList returns every item owned by the caller.
//
// HTTP: GET /api/v1/content (bearer)
func (h *ContentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	items, err := h.content.ListByOwner(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listContentResponse{Content: items})
}

// deleteContentResponse reports how many rows a delete removed (0 or 1).
type deleteContentResponse struct {
	Deleted int64 `json:"deleted"`
}

// HandleDelete removes one of the caller's items.
//
// HTTP: DELETE /api/v1/content/{contentId} (bearer)
// Always 200: deleting an id the caller doesn't own — someone else's item or
// a nonexistent one — reports {"deleted": 0} rather than leaking which it was.
func (h *ContentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	contentID := chi.URLParam(r, "contentId")

	deleted, err := h.content.Delete(r.Context(), userID, contentID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteContentResponse{Deleted: deleted})
}
