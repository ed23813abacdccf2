package models

import "database/sql"

// Model for the runs table
type Run struct {
	ID            int64          `db:"id"`
	StartedAt     Timestamp      `db:"started_at"`
	FinishedAt    Timestamp      `db:"finished_at"`
	FeedsOK       int            `db:"feeds_ok"`
	FeedsFailed   int            `db:"feeds_failed"`
	ItemsSeen     int            `db:"items_seen"`
	ItemsUpserted int            `db:"items_upserted"`
	Error         sql.NullString `db:"error"`
}

// RunStats contains the aggregates recorded when a run finishes
type RunStats struct {
	FeedsOK       int
	FeedsFailed   int
	ItemsSeen     int
	ItemsUpserted int
	Error         string
}
