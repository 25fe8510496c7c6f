package handler

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/second-brain/internal/apperror"
)

// captureLogs redirects the default slog logger into a buffer for the test's
// duration. writeError has no injected logger — it reports through the
// process-wide default, like writeJSON.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestWriteError_InternalErrorIsLoggedButNotLeaked(t *testing.T) {
	logs := captureLogs(t)

	rr := httptest.NewRecorder()
	writeError(rr, fmt.Errorf("service/auth: creating user: %w", errors.New("disk I/O error")))

	assert.Equal(t, 500, rr.Code)

	// The client sees only the generic body; the detail goes to the log.
	assert.Contains(t, rr.Body.String(), "An internal error occurred")
	assert.NotContains(t, rr.Body.String(), "disk I/O error")
	assert.Contains(t, logs.String(), "disk I/O error")
}

func TestWriteError_ClientErrorsAreNotLogged(t *testing.T) {
	logs := captureLogs(t)

	rr := httptest.NewRecorder()
	writeError(rr, apperror.ValidationFailed("title", "title is required"))

	assert.Equal(t, 400, rr.Code)
	assert.Empty(t, logs.String())
}
