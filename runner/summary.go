package runner

import (
	"fmt"
	"io"

	"github.com/ItalyPaleAle/rss-scraper/search"
)

// FeedError is a feed that couldn't be fetched or parsed
type FeedError struct {
	Name  string
	Url   string
	Error string
}

// Summary of a run
type Summary struct {
	RunID         int64
	FeedsOK       int
	FeedsFailed   int
	ItemsSeen     int
	ItemsUpserted int
	FeedErrors    []FeedError

	// Whether the database has the full-text index
	FullText bool

	// Total items in the database after the run
	TotalItems int

	CSVPath  string
	Exported int

	SearchQuery string
	Search      *search.Result
}

// Print writes a human-readable summary
func (s *Summary) Print(w io.Writer, dbPath string) {
	fmt.Fprintln(w, "\n--- SUMMARY ---")
	fmt.Fprintf(w, "DB: %s\n", dbPath)
	fmt.Fprintf(w, "CSV: %s (%d rows)\n", s.CSVPath, s.Exported)
	fmt.Fprintf(w, "Items in DB: %d\n", s.TotalItems)
	fmt.Fprintf(w, "Run ID: %d\n", s.RunID)
	fmt.Fprintf(w, "Feeds OK: %d | Feeds failed: %d\n", s.FeedsOK, s.FeedsFailed)
	fmt.Fprintf(w, "Items seen: %d | Items upserted: %d\n", s.ItemsSeen, s.ItemsUpserted)
	for _, fe := range s.FeedErrors {
		fmt.Fprintf(w, "ERROR %s: %s\n", fe.Name, fe.Error)
	}

	if s.Search == nil {
		return
	}
	if s.Search.Mode == search.ModeFullText {
		fmt.Fprintf(w, "\nFull-text search (query: %s)\n", s.SearchQuery)
	} else {
		fmt.Fprintf(w, "\nFull-text search not available; substring match (query: %s)\n", s.SearchQuery)
	}
	if len(s.Search.Hits) == 0 {
		fmt.Fprintln(w, "No results")
	}
	for _, h := range s.Search.Hits {
		fmt.Fprintf(w, "- [%s] %s -> %s\n", h.Feed, h.Title, h.Link)
	}
}
