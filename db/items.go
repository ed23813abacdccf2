package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/ItalyPaleAle/rss-scraper/models"
)

// On conflict, the link is the only column that is not updated
const upsertItemQuery = `INSERT INTO items (feed_id, title, link, published, summary, fetched_at)
VALUES (:feed_id, :title, :link, :published, :summary, :fetched_at)
ON CONFLICT (link) DO UPDATE SET
	feed_id = excluded.feed_id,
	title = excluded.title,
	published = excluded.published,
	summary = excluded.summary,
	fetched_at = excluded.fetched_at`

// UpsertItem inserts an item, or updates the existing one with the same link
func (s *Store) UpsertItem(ctx context.Context, item *models.Item) error {
	return upsertItem(ctx, s.db, item)
}

// UpsertItems stores all candidates of a feed in a single transaction
// Either all items are stored, or none is
// It returns the number of items that were upserted
func (s *Store) UpsertItems(ctx context.Context, feedID int64, candidates []models.Candidate) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error starting a transaction: %w", err)
	}
	defer tx.Rollback()

	n := 0
	for i := range candidates {
		item := ItemFromCandidate(feedID, &candidates[i])
		err = upsertItem(ctx, tx, item)
		if err != nil {
			return 0, err
		}
		n++
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("error while committing the transaction: %w", err)
	}
	return n, nil
}

// ItemFromCandidate binds a candidate to a feed
func ItemFromCandidate(feedID int64, c *models.Candidate) *models.Item {
	return &models.Item{
		FeedID:    feedID,
		Title:     c.Title,
		Link:      c.Link,
		Published: c.Published,
		Summary:   c.Summary,
		FetchedAt: c.FetchedAt,
	}
}

// CountItems returns the number of items stored
func (s *Store) CountItems(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM items")
	if err != nil {
		return 0, fmt.Errorf("error counting items: %w", err)
	}
	return count, nil
}

// GetItemByLink returns the item with the given link, or nil if it's not present
func (s *Store) GetItemByLink(ctx context.Context, link string) (*models.Item, error) {
	item := &models.Item{}
	err := s.db.GetContext(ctx, item, "SELECT id, feed_id, COALESCE(title, '') AS title, link, published, COALESCE(summary, '') AS summary, fetched_at FROM items WHERE link = ?", link)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying the database: %w", err)
	}
	return item, nil
}

// ExportRows returns all items with the name of their feed, most recent first
// Items without a published time are sorted by their fetch time
func (s *Store) ExportRows(ctx context.Context) ([]models.ExportRow, error) {
	query, args, err := sq.
		Select(
			"f.name AS feed",
			"COALESCE(i.title, '') AS title",
			"i.link",
			"i.published",
			"COALESCE(i.summary, '') AS summary",
			"i.fetched_at",
		).
		From("items i").
		Join("feeds f ON f.id = i.feed_id").
		OrderBy("COALESCE(i.published, i.fetched_at) DESC", "i.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %w", err)
	}

	rows := []models.ExportRow{}
	err = s.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error selecting items: %w", err)
	}
	return rows, nil
}

func upsertItem(ctx context.Context, ext sqlx.ExtContext, item *models.Item) error {
	if item.Link == "" {
		return errors.New("item has an empty link")
	}
	_, err := sqlx.NamedExecContext(ctx, ext, upsertItemQuery, item)
	if err != nil {
		return fmt.Errorf("error upserting item %s: %w", item.Link, err)
	}
	return nil
}
