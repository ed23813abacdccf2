package runner

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ItalyPaleAle/rss-scraper/export"
	"github.com/ItalyPaleAle/rss-scraper/models"
	"github.com/ItalyPaleAle/rss-scraper/search"
)

// Fetcher fetches a feed and returns the normalized candidates
// It's implemented by *feeds.Feeds
type Fetcher interface {
	Process(ctx context.Context, name string, url string) ([]models.Candidate, error)
}

// Store persists feeds, runs and items
// It's implemented by *db.Store
type Store interface {
	export.Source
	search.Backend

	EnsureFeeds(ctx context.Context, feeds []models.FeedSource) error
	GetOrCreateFeedID(ctx context.Context, name string, url string) (int64, error)
	StartRun(ctx context.Context) (int64, error)
	FinishRun(ctx context.Context, runID int64, stats models.RunStats) error
	FailRun(ctx context.Context, runID int64, runErr error) error
	UpsertItems(ctx context.Context, feedID int64, candidates []models.Candidate) (int, error)
	CountItems(ctx context.Context) (int, error)
}

// Options for the Runner
type Options struct {
	// Feeds to fetch, in order
	Feeds []models.FeedSource
	// Pause between two feeds
	FeedDelay time.Duration
	// Path of the CSV snapshot
	CSVPath string
	// Query for the search after the import; empty to skip it
	SearchQuery string
	SearchLimit int
	// Initializes the schema; it returns true if the full-text index is available
	InitSchema func() (bool, error)
}

// Runner drives a full ingestion cycle
type Runner struct {
	opts    Options
	store   Store
	fetcher Fetcher
	log     *log.Entry
	sleep   func(ctx context.Context, d time.Duration) error
}

// New returns a Runner
func New(opts Options, store Store, fetcher Fetcher) *Runner {
	if opts.SearchLimit < 1 {
		opts.SearchLimit = 5
	}
	return &Runner{
		opts:    opts,
		store:   store,
		fetcher: fetcher,
		log:     log.WithField("component", "runner"),
		sleep:   sleepContext,
	}
}

// Run fetches all feeds and stores their items, then exports the snapshot and runs the search
// Errors fetching or parsing a feed are recorded in the summary and don't stop the run
// Any other error aborts the run: the error is recorded on the run, which is left unfinished
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	sum := &Summary{
		CSVPath: r.opts.CSVPath,
	}

	// Schema
	if r.opts.InitSchema != nil {
		fullText, err := r.opts.InitSchema()
		if err != nil {
			return nil, err
		}
		sum.FullText = fullText
	}

	// Register the feeds
	err := r.store.EnsureFeeds(ctx, r.opts.Feeds)
	if err != nil {
		return nil, err
	}

	sum.RunID, err = r.store.StartRun(ctx)
	if err != nil {
		return nil, err
	}
	r.log.Infof("Started run %d", sum.RunID)

	err = r.ingest(ctx, sum)
	if err != nil {
		return sum, r.fail(ctx, sum.RunID, err)
	}

	// Export
	sum.Exported, err = export.ToFile(ctx, r.store, r.opts.CSVPath)
	if err != nil {
		return sum, r.fail(ctx, sum.RunID, fmt.Errorf("error exporting to CSV: %w", err))
	}

	err = r.store.FinishRun(ctx, sum.RunID, models.RunStats{
		FeedsOK:       sum.FeedsOK,
		FeedsFailed:   sum.FeedsFailed,
		ItemsSeen:     sum.ItemsSeen,
		ItemsUpserted: sum.ItemsUpserted,
	})
	if err != nil {
		return sum, err
	}

	sum.TotalItems, err = r.store.CountItems(ctx)
	if err != nil {
		return sum, err
	}

	// Search is best-effort
	if r.opts.SearchQuery != "" {
		sum.SearchQuery = r.opts.SearchQuery
		sum.Search, err = search.Search(ctx, r.store, r.opts.SearchQuery, r.opts.SearchLimit)
		if err != nil {
			r.log.WithError(err).Warn("Search failed")
		}
	}

	return sum, nil
}

// Processes all feeds, one at a time
func (r *Runner) ingest(ctx context.Context, sum *Summary) error {
	for i, f := range r.opts.Feeds {
		if i > 0 && r.opts.FeedDelay > 0 {
			err := r.sleep(ctx, r.opts.FeedDelay)
			if err != nil {
				return err
			}
		}

		logger := r.log.WithFields(log.Fields{
			"feed": f.Name,
			"url":  f.Url,
		})
		logger.Info("Reading feed")

		candidates, err := r.fetcher.Process(ctx, f.Name, f.Url)
		if err != nil {
			logger.WithError(err).Error("Error processing feed")
			sum.FeedsFailed++
			sum.FeedErrors = append(sum.FeedErrors, FeedError{
				Name:  f.Name,
				Url:   f.Url,
				Error: err.Error(),
			})
			continue
		}

		feedID, err := r.store.GetOrCreateFeedID(ctx, f.Name, f.Url)
		if err != nil {
			return err
		}
		sum.ItemsSeen += len(candidates)

		n, err := r.store.UpsertItems(ctx, feedID, candidates)
		if err != nil {
			return err
		}
		sum.ItemsUpserted += n
		sum.FeedsOK++

		logger.Infof("Stored %d items", n)
	}

	return nil
}

// Records the error on the run and returns it
func (r *Runner) fail(ctx context.Context, runID int64, runErr error) error {
	err := r.store.FailRun(context.WithoutCancel(ctx), runID, runErr)
	if err != nil {
		r.log.WithError(err).Errorf("Error recording the failure of run %d", runID)
	}
	return runErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
