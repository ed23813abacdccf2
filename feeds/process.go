package feeds

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/ItalyPaleAle/rss-scraper/models"
)

// Process fetches and parses a feed, and returns the normalized candidates
// Entries without a link are dropped
// All candidates share the same fetch time
func (f *Feeds) Process(ctx context.Context, name string, url string) ([]models.Candidate, error) {
	logger := f.log.WithFields(log.Fields{
		"feed": name,
		"url":  url,
	})

	// Request the data
	logger.Debug("Fetching feed")
	raw, err := f.RequestFeed(ctx, url)
	if err != nil {
		return nil, err
	}

	entries, err := ParseFeed(raw)
	if err != nil {
		return nil, err
	}

	fetchedAt := models.NewTimestamp(f.now())
	res := make([]models.Candidate, 0, len(entries))
	for i := range entries {
		c, ok := f.normalizer.Normalize(&entries[i], fetchedAt)
		if !ok {
			logger.Debug("Skipping entry with empty link")
			continue
		}
		c.FeedName = name
		c.FeedUrl = url
		res = append(res, c)
	}

	if f.enrich {
		for i := range res {
			f.RequestMetadata(ctx, &res[i])
		}
	}

	logger.Debugf("Found %d entries, kept %d", len(entries), len(res))

	return res, nil
}
