package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// errNoToken means the request carried no recognizable bearer credential.
var errNoToken = errors.New("auth: missing bearer token")

// contextKey is an unexported type used for context keys in this package.
//
// context.WithValue takes any key type; using a plain string like "userID"
// would let any package that knows the string shadow or read the value.
// A package-private type means only this package can touch it.
type contextKey string

const userIDKey contextKey = "userID"

// RequireAuth is the middleware guarding every owner-scoped route.
//
// The bearer token is accepted from exactly one place: the Authorization
// header, scheme "Bearer". No cookie fallback, no query parameter — one
// recognized location keeps the gate auditable.
//
// On success the userID from the token's subject claim is bound into the
// request context for downstream handlers. On any failure (missing header,
// wrong scheme, malformed/tampered/expired token) the chain short-circuits
// with 401 and the downstream handler never runs.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				// The body is JSON like every other error response, so the
				// header must say so — http.Error would send text/plain.
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}` + "\n"))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID from the request
// context.
//
// Returns (id, true) behind RequireAuth; ("", false) otherwise.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// extractUserID reads the Authorization header and validates the bearer token.
func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	header := r.Header.Get("Authorization")

	// Scheme comparison is case-insensitive per RFC 7235.
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", errNoToken
	}

	token := strings.TrimSpace(header[len(prefix):])
	return tokens.Validate(token)
}
