package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ItalyPaleAle/rss-scraper/models"
)

// EnsureFeeds registers all feeds, ignoring the ones whose URL is already present
func (s *Store) EnsureFeeds(ctx context.Context, feeds []models.FeedSource) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting a transaction: %w", err)
	}
	defer tx.Rollback()

	now := models.NewTimestamp(s.now())
	for _, f := range feeds {
		_, err = tx.ExecContext(ctx, "INSERT INTO feeds (name, url, created_at) VALUES (?, ?, ?) ON CONFLICT (url) DO NOTHING", f.Name, f.Url, now)
		if err != nil {
			return fmt.Errorf("error registering feed %s: %w", f.Url, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("error while committing the transaction: %w", err)
	}
	return nil
}

// GetFeedByURL returns a feed from its URL, or nil if it's not present
func (s *Store) GetFeedByURL(ctx context.Context, url string) (*models.Feed, error) {
	feed := &models.Feed{}
	err := s.db.GetContext(ctx, feed, "SELECT id, name, url, created_at FROM feeds WHERE url = ?", url)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// No rows found, so record doesn't exist
			return nil, nil
		}
		return nil, fmt.Errorf("error querying the database: %w", err)
	}
	return feed, nil
}

// GetOrCreateFeedID returns the ID of the feed with the given URL, adding the feed if needed
func (s *Store) GetOrCreateFeedID(ctx context.Context, name string, url string) (int64, error) {
	feed, err := s.GetFeedByURL(ctx, url)
	if err != nil {
		return 0, err
	}
	if feed != nil {
		return feed.ID, nil
	}

	res, err := s.db.ExecContext(ctx, "INSERT INTO feeds (name, url, created_at) VALUES (?, ?, ?)", name, url, models.NewTimestamp(s.now()))
	if err != nil {
		return 0, fmt.Errorf("error adding feed %s: %w", url, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error getting the last rowid: %w", err)
	}
	if id < 1 {
		return 0, errors.New("empty feed ID")
	}
	s.log.WithField("url", url).Debugf("Added feed with ID %d", id)

	return id, nil
}
