package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/ItalyPaleAle/rss-scraper/models"
)

// ErrRunNotFound is returned when a run doesn't exist
var ErrRunNotFound = errors.New("run not found")

// StartRun adds a new run with only the start time set, and returns its ID
func (s *Store) StartRun(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO runs (started_at) VALUES (?)", models.NewTimestamp(s.now()))
	if err != nil {
		return 0, fmt.Errorf("error adding run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error getting the last rowid: %w", err)
	}
	return id, nil
}

// FinishRun sets the finish time and the aggregates of a run
// Zero-valued stats are not written, so the columns keep their defaults
func (s *Store) FinishRun(ctx context.Context, runID int64, stats models.RunStats) error {
	q := sq.Update("runs").
		Set("finished_at", models.NewTimestamp(s.now()))
	if stats.FeedsOK != 0 {
		q = q.Set("feeds_ok", stats.FeedsOK)
	}
	if stats.FeedsFailed != 0 {
		q = q.Set("feeds_failed", stats.FeedsFailed)
	}
	if stats.ItemsSeen != 0 {
		q = q.Set("items_seen", stats.ItemsSeen)
	}
	if stats.ItemsUpserted != 0 {
		q = q.Set("items_upserted", stats.ItemsUpserted)
	}
	if stats.Error != "" {
		q = q.Set("error", stats.Error)
	}
	q = q.Where(sq.Eq{"id": runID})

	return s.execRunUpdate(ctx, q)
}

// FailRun records the error that aborted a run
// The finish time is left empty, so the run is still observably unfinished
func (s *Store) FailRun(ctx context.Context, runID int64, runErr error) error {
	if runErr == nil {
		return errors.New("no error to record")
	}
	q := sq.Update("runs").
		Set("error", runErr.Error()).
		Where(sq.Eq{"id": runID})

	return s.execRunUpdate(ctx, q)
}

// GetRun returns a run by ID
func (s *Store) GetRun(ctx context.Context, runID int64) (*models.Run, error) {
	run := &models.Run{}
	err := s.db.GetContext(ctx, run, "SELECT * FROM runs WHERE id = ?", runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("error querying the database: %w", err)
	}
	return run, nil
}

func (s *Store) execRunUpdate(ctx context.Context, q sq.UpdateBuilder) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("error constructing sql: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error updating run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting the affected rows: %w", err)
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return nil
}
