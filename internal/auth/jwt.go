// Package auth provides JWT token generation/validation, password hashing,
// and the bearer-token middleware guarding owner-scoped routes.
//
// AUTHENTICATION FLOW:
// 1. Client signs up or signs in with username + password (or via GitHub OAuth)
// 2. Server issues a signed JWT carrying the user's internal ID
// 3. Client sends it back on every request: Authorization: Bearer <token>
// 4. RequireAuth validates the token and puts the userID in the request context
//
// JWT is stateless — no session storage. All the information needed (userID,
// expiry) is inside the signed token, and the HMAC signature ensures nobody
// can alter it without the server-side secret.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/second-brain/internal/apperror"
)

// tokenLifetime is the absolute expiry applied to every issued token.
// Tokens are not renewable; after an hour the client signs in again.
const tokenLifetime = time.Hour

const issuer = "second-brain"

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret used to sign and verify tokens. The secret is
// process-wide configuration loaded once at startup; it is never logged and
// never leaves this struct.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload. It embeds jwt.RegisteredClaims, which includes
// the standard fields (Issuer, Subject, ExpiresAt, IssuedAt).
//
// We use "sub" (Subject) to carry the internal user ID — the standard claim
// for identifying who a token belongs to.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a JWT for the given userID with the standard
// one-hour lifetime.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, same key signs and
// verifies. Fine for a single-server deployment.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, tokenLifetime)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Used by tests to produce already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns the userID stored in
// the "sub" claim.
//
// Checks performed (by the jwt library, via the options below):
//   - signature is valid (token wasn't tampered with)
//   - token is not expired
//   - issuer matches (rejects tokens minted by other apps sharing a secret)
//   - algorithm is HS256 (prevents algorithm-confusion attacks where an
//     attacker submits a token signed with "none")
//
// Every failure mode — malformed, tampered, expired, wrong issuer — comes
// back as apperror.ErrUnauthorized so the HTTP layer uniformly answers 401.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperror.Unauthorized("token expired")
		}
		return "", apperror.Unauthorized("invalid token")
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", apperror.Unauthorized("invalid token")
	}

	if c.Subject == "" {
		return "", apperror.Unauthorized("invalid token")
	}

	return c.Subject, nil
}
