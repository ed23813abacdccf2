package feeds

import (
	"strings"

	"github.com/Songmu/go-httpdate"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"

	"github.com/ItalyPaleAle/rss-scraper/models"
)

// Normalizer converts raw entries into candidates
type Normalizer struct {
	stripPolicy *bluemonday.Policy
}

// NewNormalizer returns a Normalizer
// If stripHTML is true, HTML tags are removed from summaries
func NewNormalizer(stripHTML bool) *Normalizer {
	n := &Normalizer{}
	if stripHTML {
		n.stripPolicy = bluemonday.StrictPolicy()
	}
	return n
}

// Normalize returns the candidate for an entry
// The second return value is false if the entry has no link and must be skipped
func (n *Normalizer) Normalize(e *models.Entry, fetchedAt models.Timestamp) (models.Candidate, bool) {
	link := strings.TrimSpace(deref(e.Link))
	if link == "" {
		return models.Candidate{}, false
	}

	summary := strings.TrimSpace(deref(e.Summary))
	if n.stripPolicy != nil && summary != "" {
		summary = strings.TrimSpace(n.stripPolicy.Sanitize(summary))
	}

	return models.Candidate{
		Title:     cleanText(deref(e.Title)),
		Link:      link,
		Published: publishedTime(e),
		Summary:   cleanText(summary),
		FetchedAt: fetchedAt,
	}, true
}

// Returns the published time, falling back to the updated time
// If neither can be used, the result is unset
func publishedTime(e *models.Entry) models.Timestamp {
	if ts, ok := resolveTime(e.Published, e.PublishedRaw); ok {
		return ts
	}
	if ts, ok := resolveTime(e.Updated, e.UpdatedRaw); ok {
		return ts
	}
	return models.Timestamp{}
}

func resolveTime(parsed *models.Timestamp, raw string) (models.Timestamp, bool) {
	if parsed != nil && validTime(*parsed) {
		return *parsed, true
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.Timestamp{}, false
	}
	t, err := httpdate.Str2Time(raw, nil)
	if err != nil {
		return models.Timestamp{}, false
	}
	ts := models.NewTimestamp(t)
	if !validTime(ts) {
		return models.Timestamp{}, false
	}
	return ts, true
}

// Times must fit in the ISO-8601 layout
func validTime(ts models.Timestamp) bool {
	if !ts.IsSet() {
		return false
	}
	y := ts.UTC().Year()
	return y >= 1 && y <= 9999
}

func cleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
