package db

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/ItalyPaleAle/rss-scraper/models"
)

const fullTextSearchQuery = `SELECT i.id, f.name AS feed, COALESCE(i.title, '') AS title, i.link
FROM items_fts
JOIN items i ON i.id = items_fts.rowid
JOIN feeds f ON f.id = i.feed_id
WHERE items_fts MATCH ?
ORDER BY rank
LIMIT ?`

// SearchFullText runs a query against the full-text index, ordered by rank
// It fails if the index doesn't exist or if the query is not valid
func (s *Store) SearchFullText(ctx context.Context, query string, limit int) ([]models.SearchHit, error) {
	hits := []models.SearchHit{}
	err := s.db.SelectContext(ctx, &hits, fullTextSearchQuery, query, limit)
	if err != nil {
		return nil, fmt.Errorf("full-text search failed: %w", err)
	}
	return hits, nil
}

// SearchSubstring returns items whose title or summary contains any of the terms, most recent first
func (s *Store) SearchSubstring(ctx context.Context, terms []string, limit int) ([]models.SearchHit, error) {
	hits := []models.SearchHit{}
	if len(terms) == 0 {
		return hits, nil
	}

	match := sq.Or{}
	for _, term := range terms {
		pattern := "%" + term + "%"
		match = append(match,
			sq.Like{"i.title": pattern},
			sq.Like{"i.summary": pattern},
		)
	}

	query, args, err := sq.
		Select("i.id", "f.name AS feed", "COALESCE(i.title, '') AS title", "i.link").
		From("items i").
		Join("feeds f ON f.id = i.feed_id").
		Where(match).
		OrderBy("COALESCE(i.published, i.fetched_at) DESC", "i.id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %w", err)
	}

	err = s.db.SelectContext(ctx, &hits, query, args...)
	if err != nil {
		return nil, fmt.Errorf("substring search failed: %w", err)
	}
	return hits, nil
}
