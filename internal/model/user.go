// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Usernames are case-normalized (lowercased) before storage and carry a
// UNIQUE constraint in the database — the constraint, not the signup
// pre-check, is what guarantees uniqueness under concurrent signups.
//
// PasswordHash holds the bcrypt digest and is tagged `json:"-"` so it can
// never leak into a response body, no matter which handler serializes the
// struct. Accounts created through GitHub OAuth have an empty hash and a
// non-zero GitHubID instead.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Username     string    `json:"username"  db:"username"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	GitHubID     int64     `json:"-"         db:"github_id"` // 0 for password accounts
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
