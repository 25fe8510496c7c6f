package model

import "time"

// ShareLink grants public, read-only access to one user's content listing.
//
// Two invariants, both enforced by unique indexes:
//   - hash is unique across all share links (hash → owner is injective)
//   - owner_id is unique (at most one active link per user)
//
// Re-enabling sharing while a link exists returns the existing hash rather
// than minting a new one; disabling deletes the row.
type ShareLink struct {
	Hash      string    `json:"hash"      db:"hash"`
	OwnerID   string    `json:"ownerId"   db:"owner_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
