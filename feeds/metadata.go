package feeds

import (
	"context"
	"net/http"

	"github.com/mmcdole/gofeed"
	opengraph "github.com/otiai10/opengraph/v2"

	"github.com/ItalyPaleAle/rss-scraper/models"
)

// RequestMetadata requests the web page to fill an empty title or summary from the page's metadata
// This method updates the value of the candidate argument as a side effect
// Errors are logged only and then ignored
func (f *Feeds) RequestMetadata(ctx context.Context, c *models.Candidate) {
	if c.Link == "" || (c.Title != "" && c.Summary != "") {
		return
	}

	// Wrapping this in a method that returns an error
	err := f.doRequestMetadata(ctx, c)
	if err != nil {
		f.log.Warnf("Error while requesting the page %s: %s", c.Link, err)
		return
	}
}

func (f *Feeds) doRequestMetadata(ctx context.Context, c *models.Candidate) error {
	// Request the web page
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Link, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", f.userAgent)
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Status code
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gofeed.HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	// Read the response and extract the OpenGraph tags
	ogp := &opengraph.OpenGraph{}
	err = ogp.Parse(resp.Body)
	if err != nil {
		return err
	}

	// Only fill what the feed didn't have
	if c.Title == "" {
		c.Title = cleanText(ogp.Title)
	}
	if c.Summary == "" {
		c.Summary = cleanText(ogp.Description)
	}

	return nil
}
