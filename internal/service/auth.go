// Package service contains the business logic layer.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes the database
//
// Services accept primitives and return domain errors (apperror), never HTTP
// types or status codes. They program against the repository interfaces, so
// tests inject in-memory mocks and sqlite never enters the picture.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/sakif/second-brain/internal/apperror"
	"github.com/sakif/second-brain/internal/auth"
	"github.com/sakif/second-brain/internal/model"
	"github.com/sakif/second-brain/internal/repository"
)

// Credential validation rules. Usernames are case-normalized, so "Alice" and
// "alice" are the same account.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 10
	MinPasswordLength = 8
	MaxPasswordLength = 20
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// invalidCredentials is the uniform signin failure. One message for every
// cause — an attacker probing /signin must not learn whether a username
// exists from the response.
const invalidCredentials = "invalid username or password"

// AuthService handles signup, signin, and GitHub OAuth login.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued JWT so the handler can
// respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Signup registers a new account and issues its first token.
//
// Validation happens entirely before any storage write — an invalid request
// mutates nothing. The duplicate-username pre-check gives a friendly 409 in
// the common case; the UNIQUE index in the repository closes the race when
// two signups for the same name interleave.
func (s *AuthService) Signup(ctx context.Context, username, password string) (*AuthResult, error) {
	username, err := NormalizeUsername(username)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, apperror.Conflict("user", "username already exists")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: checking username %q: %w", username, err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// ErrConflict propagates as-is: it means we lost the signup race.
		return nil, fmt.Errorf("service/auth: creating user %q: %w", username, err)
	}

	s.logger.Info("user signed up",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return s.issueToken(user)
}

// Signin verifies credentials and issues a fresh token.
//
// Both the unknown-username and wrong-password paths return the same
// ErrUnauthorized with the same message.
func (s *AuthService) Signin(ctx context.Context, username, password string) (*AuthResult, error) {
	username, err := NormalizeUsername(username)
	if err != nil {
		// A name that can't exist can't sign in; same uniform answer.
		return nil, apperror.Unauthorized(invalidCredentials)
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized(invalidCredentials)
		}
		return nil, fmt.Errorf("service/auth: looking up user %q: %w", username, err)
	}

	if user.PasswordHash == "" {
		// OAuth-only account — it has no password to check.
		return nil, apperror.Unauthorized(invalidCredentials)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized(invalidCredentials)
	}

	s.logger.Info("user signed in", slog.String("userID", user.ID))

	return s.issueToken(user)
}

// LoginWithGitHub completes the OAuth callback: it finds the account linked
// to the GitHub user, creating one on first login, and issues the same
// bearer token as password signin.
func (s *AuthService) LoginWithGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	user, err := s.users.GetByGitHubID(ctx, ghUser.ID)
	if err == nil {
		s.logger.Info("user signed in via GitHub", slog.String("userID", user.ID))
		return s.issueToken(user)
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: looking up github id %d: %w", ghUser.ID, err)
	}

	user, err = s.registerGitHubUser(ctx, ghUser)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered via GitHub",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return s.issueToken(user)
}

// registerGitHubUser creates an account for a first-time GitHub login.
// The username is derived from the GitHub login and uniquified with a numeric
// suffix when taken.
func (s *AuthService) registerGitHubUser(ctx context.Context, ghUser *auth.GitHubUser) (*model.User, error) {
	base := usernameFromLogin(ghUser.Login)

	for i := 0; i < 10; i++ {
		candidate := base
		if i > 0 {
			suffix := fmt.Sprintf("%d", i)
			if len(candidate)+len(suffix) > MaxUsernameLength {
				candidate = candidate[:MaxUsernameLength-len(suffix)]
			}
			candidate += suffix
		}

		user := &model.User{
			Username: candidate,
			GitHubID: ghUser.ID,
		}
		err := s.users.Create(ctx, user)
		if err == nil {
			return user, nil
		}
		if errors.Is(err, apperror.ErrConflict) {
			continue // username taken, try the next suffix
		}
		return nil, fmt.Errorf("service/auth: creating github user: %w", err)
	}

	return nil, fmt.Errorf("service/auth: could not find a free username for github login %q", ghUser.Login)
}

func (s *AuthService) issueToken(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// NormalizeUsername trims, lowercases, and validates a username against the
// 3–10 char alphanumeric+underscore rule.
func NormalizeUsername(username string) (string, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	if len(username) < MinUsernameLength {
		return "", apperror.ValidationFailed("username",
			fmt.Sprintf("username must be at least %d characters", MinUsernameLength))
	}
	if len(username) > MaxUsernameLength {
		return "", apperror.ValidationFailed("username",
			fmt.Sprintf("username cannot exceed %d characters", MaxUsernameLength))
	}
	if !usernamePattern.MatchString(username) {
		return "", apperror.ValidationFailed("username",
			"username can only contain letters, numbers, and underscores")
	}

	return username, nil
}

// validatePassword enforces the signup password policy: 8–20 chars with at
// least one uppercase letter, one lowercase letter, and one digit.
func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if len(password) > MaxPasswordLength {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("password cannot exceed %d characters", MaxPasswordLength))
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return apperror.ValidationFailed("password",
			"password must contain at least one uppercase, one lowercase, and one number")
	}

	return nil
}

// usernameFromLogin turns a GitHub login into a valid local username:
// lowercase, invalid characters dropped, clamped to the length rule.
func usernameFromLogin(login string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(login) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
		if b.Len() == MaxUsernameLength {
			break
		}
	}

	name := b.String()
	for len(name) < MinUsernameLength {
		name += "_"
	}
	return name
}
