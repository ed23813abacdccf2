package search

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ItalyPaleAle/rss-scraper/models"
)

// Mode is the kind of search that produced a result
type Mode string

const (
	// ModeFullText means the full-text index answered the query
	ModeFullText Mode = "full-text"
	// ModeSubstring means the query was answered by matching substrings in titles and summaries
	ModeSubstring Mode = "substring"
)

// Backend runs the queries
// It's implemented by *db.Store
type Backend interface {
	SearchFullText(ctx context.Context, query string, limit int) ([]models.SearchHit, error)
	SearchSubstring(ctx context.Context, terms []string, limit int) ([]models.SearchHit, error)
}

// Result of a search
type Result struct {
	Mode Mode
	Hits []models.SearchHit
	// Error returned by the full-text search, when the substring search was used instead
	FullTextErr error
}

// Search runs the query against the full-text index first
// If that fails for any reason, the terms of the query are matched as substrings instead
func Search(ctx context.Context, b Backend, query string, limit int) (*Result, error) {
	hits, err := b.SearchFullText(ctx, query, limit)
	if err == nil {
		return &Result{
			Mode: ModeFullText,
			Hits: hits,
		}, nil
	}

	log.WithField("component", "search").
		WithError(err).
		Info("Full-text search not available; falling back to substring match")

	hits, subErr := b.SearchSubstring(ctx, Terms(query), limit)
	if subErr != nil {
		return nil, fmt.Errorf("substring search failed after full-text error (%s): %w", err, subErr)
	}
	return &Result{
		Mode:        ModeSubstring,
		Hits:        hits,
		FullTextErr: err,
	}, nil
}

// Operators of the full-text query syntax, which aren't search terms
var operators = map[string]bool{
	"OR":   true,
	"AND":  true,
	"NOT":  true,
	"NEAR": true,
}

// Terms returns the words of a full-text query, without operators and syntax characters
func Terms(query string) []string {
	cleaner := strings.NewReplacer(`"`, " ", "(", " ", ")", " ", "*", " ", "^", " ", "+", " ")
	fields := strings.Fields(cleaner.Replace(query))

	res := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		// Column filters such as "title:foo"
		if i := strings.LastIndexByte(f, ':'); i >= 0 {
			f = f[i+1:]
		}
		if f == "" || operators[f] {
			continue
		}
		key := strings.ToLower(f)
		if seen[key] {
			continue
		}
		seen[key] = true
		res = append(res, f)
	}
	return res
}
