package db

import (
	"time"

	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
)

// Store manages all rows persisted in the database
type Store struct {
	db  *sqlx.DB
	log *log.Entry
	now func() time.Time
}

// NewStore returns a Store that uses the given connection
// The schema must have been initialized already
func NewStore(conn *sqlx.DB) *Store {
	return &Store{
		db:  conn,
		log: log.WithField("component", "store"),
		now: time.Now,
	}
}

// DB returns the underlying connection
func (s *Store) DB() *sqlx.DB {
	return s.db
}
