package feeds

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/mmcdole/gofeed"

	"github.com/ItalyPaleAle/rss-scraper/models"
)

// Maximum size of a feed's body
const maxFeedSize = 32 << 20

// RequestFeed fetches the raw body of a feed
// We're using this rather than gofeed.ParseURL to have more control on the request
func (f *Feeds) RequestFeed(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, ErrEmptyURL
	}

	// Create the request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	// Send the request and read the data
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Status code
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, gofeed.HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, fmt.Errorf("error reading the response: %w", err)
	}
	return body, nil
}

// ParseFeed parses a RSS, Atom or JSON feed and returns its entries
func ParseFeed(raw []byte) ([]models.Entry, error) {
	fp := gofeed.NewParser()
	parsed, err := fp.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	entries := make([]models.Entry, 0, len(parsed.Items))
	for _, el := range parsed.Items {
		if el == nil {
			continue
		}
		entries = append(entries, EntryFromItem(el))
	}
	return entries, nil
}

// EntryFromItem converts an item returned by gofeed into an Entry
// Empty strings are treated as absent fields
func EntryFromItem(el *gofeed.Item) models.Entry {
	e := models.Entry{
		Title:        optionalString(el.Title),
		Link:         optionalString(el.Link),
		Summary:      optionalString(el.Description),
		PublishedRaw: el.Published,
		UpdatedRaw:   el.Updated,
	}

	// Atom entries may have the content only
	if e.Summary == nil {
		e.Summary = optionalString(el.Content)
	}

	if el.PublishedParsed != nil && !el.PublishedParsed.IsZero() {
		ts := models.NewTimestamp(*el.PublishedParsed)
		e.Published = &ts
	}
	if el.UpdatedParsed != nil && !el.UpdatedParsed.IsZero() {
		ts := models.NewTimestamp(*el.UpdatedParsed)
		e.Updated = &ts
	}

	return e
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
