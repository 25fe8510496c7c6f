package model

import "time"

// ContentType is the fixed enumeration of things a user can save.
type ContentType string

const (
	TypeDocument ContentType = "document"
	TypeTweet    ContentType = "tweet"
	TypeYouTube  ContentType = "youtube"
	TypeLink     ContentType = "link"
)

// ValidContentType reports whether s is one of the allowed content types.
func ValidContentType(s string) bool {
	switch ContentType(s) {
	case TypeDocument, TypeTweet, TypeYouTube, TypeLink:
		return true
	}
	return false
}

// Content represents one saved item: a titled link tagged by type.
//
// Every item has exactly one owner. OwnerID is required at creation time and
// enforced with a foreign key; list and delete operations must always filter
// by it so one user can never touch another user's items.
//
// Tags are an unordered set of lowercase strings. They're stored as a
// JSON-encoded TEXT column — they have no identity of their own, so a
// separate tags table would buy nothing.
type Content struct {
	ID        string      `json:"id"        db:"id"`
	Title     string      `json:"title"     db:"title"`
	Link      string      `json:"link"      db:"link"`
	Type      ContentType `json:"type"      db:"type"`
	Tags      []string    `json:"tags"      db:"tags"`
	OwnerID   string      `json:"ownerId"   db:"owner_id"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time   `json:"updatedAt" db:"updated_at"`
}

// PublicContent is the projection of a Content item exposed through a share
// link. It intentionally omits the owner reference and timestamps — a public
// reader needs the item, not its provenance.
type PublicContent struct {
	ID    string      `json:"id"`
	Title string      `json:"title"`
	Link  string      `json:"link"`
	Type  ContentType `json:"type"`
	Tags  []string    `json:"tags"`
}

// Public returns the share-link projection of c.
func (c Content) Public() PublicContent {
	return PublicContent{
		ID:    c.ID,
		Title: c.Title,
		Link:  c.Link,
		Type:  c.Type,
		Tags:  c.Tags,
	}
}
