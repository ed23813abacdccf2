package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/ItalyPaleAle/rss-scraper/conf"
	"github.com/ItalyPaleAle/rss-scraper/db"
	"github.com/ItalyPaleAle/rss-scraper/feeds"
	"github.com/ItalyPaleAle/rss-scraper/migrations"
	"github.com/ItalyPaleAle/rss-scraper/runner"
)

func main() {
	// Load config
	cfg, err := conf.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatalf("Fatal error loading the configuration: %s", err)
	}
	conf.SetLoggerLevel(cfg.LogLevel)

	// Stop on SIGINT and SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err = run(ctx, cfg)
	if err != nil {
		log.WithError(err).Error("Run failed")
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *conf.Config) error {
	// Connect to the DB; the schema is initialized by the runner
	conn, err := db.ConnectDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	f := &feeds.Feeds{}
	err = f.Init(feeds.Options{
		UserAgent:      cfg.UserAgent,
		Timeout:        cfg.FetchTimeout,
		StripHTML:      cfg.StripHTML,
		EnrichMetadata: cfg.EnrichMetadata,
	})
	if err != nil {
		return err
	}

	r := runner.New(runner.Options{
		Feeds:       cfg.Feeds,
		FeedDelay:   cfg.FeedDelay,
		CSVPath:     cfg.CSVPath,
		SearchQuery: cfg.SearchQuery,
		SearchLimit: cfg.SearchLimit,
		InitSchema: func() (bool, error) {
			return migrations.Migrate(conn)
		},
	}, db.NewStore(conn), f)

	sum, err := r.Run(ctx)
	if err != nil {
		if sum != nil && sum.RunID > 0 {
			return fmt.Errorf("run %d aborted: %w", sum.RunID, err)
		}
		return err
	}

	sum.Print(os.Stdout, cfg.DBPath)
	return nil
}
