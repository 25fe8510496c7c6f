package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/second-brain/internal/model"
	"github.com/sakif/second-brain/internal/repository"
)

// ContentDB is the content-table view of the connection pool.
type ContentDB struct {
	conn *sql.DB
}

// Compile-time check that *ContentDB implements repository.ContentRepository.
var _ repository.ContentRepository = (*ContentDB)(nil)

// Create inserts a content item. The repository fills in ID and timestamps;
// the service has already validated title/link/type and normalized tags.
//
// Tags travel as a JSON-encoded TEXT column. An empty set is stored as "[]"
// so scanning never has to deal with NULL.
func (db *ContentDB) Create(ctx context.Context, content *model.Content) error {
	now := time.Now()
	content.ID = xid.New().String()
	content.CreatedAt = now
	content.UpdatedAt = now

	if content.Tags == nil {
		content.Tags = []string{}
	}
	tags, err := json.Marshal(content.Tags)
	if err != nil {
		return fmt.Errorf("sqlite: encoding tags: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO content (id, title, link, type, tags, owner_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		content.ID,
		content.Title,
		content.Link,
		string(content.Type),
		string(tags),
		content.OwnerID,
		content.CreatedAt,
		content.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting content %s: %w", content.ID, err)
	}

	return nil
}

// ListByOwner returns all of one owner's items in insertion order.
// The result is a snapshot: the rows are fully read before returning.
func (db *ContentDB) ListByOwner(ctx context.Context, ownerID string) ([]model.Content, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, link, type, tags, owner_id, created_at, updated_at
		 FROM content
		 WHERE owner_id = ?
		 ORDER BY created_at, id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing content for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	// Non-nil so an owner with nothing saved serializes as [] rather than null.
	items := []model.Content{}
	for rows.Next() {
		var (
			c    model.Content
			tags string
		)
		if err := rows.Scan(
			&c.ID,
			&c.Title,
			&c.Link,
			&c.Type,
			&tags,
			&c.OwnerID,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning content row: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &c.Tags); err != nil {
			return nil, fmt.Errorf("sqlite: decoding tags for content %s: %w", c.ID, err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating content rows: %w", err)
	}

	return items, nil
}

// DeleteByOwnerAndID deletes one item, filtered by BOTH owner and id, and
// returns how many rows were deleted (0 or 1).
//
// The owner filter is not optional. Dropping it would let any authenticated
// user delete any item whose id they can guess.
func (db *ContentDB) DeleteByOwnerAndID(ctx context.Context, ownerID, contentID string) (int64, error) {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM content WHERE owner_id = ? AND id = ?`,
		ownerID, contentID,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting content %s: %w", contentID, err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting deleted rows: %w", err)
	}

	return deleted, nil
}
