package db

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ItalyPaleAle/rss-scraper/utils"
)

// ConnectDB opens the SQLite database at dbPath, creating its folder if needed
func ConnectDB(dbPath string) (*sqlx.DB, error) {
	// Check if the path is set
	if dbPath == "" {
		return nil, errors.New("database path is empty")
	}

	// Ensure the folder exists
	dbPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}
	err = utils.EnsureFolder(filepath.Dir(dbPath))
	if err != nil {
		return nil, fmt.Errorf("could not create the folder for the database: %w", err)
	}

	conn, err := sqlx.Open("sqlite3", "file:"+dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=10000")
	if err != nil {
		return nil, err
	}

	// There's only one writer, and transactions must not overlap with other statements
	conn.SetMaxOpenConns(1)

	err = conn.Ping()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	return conn, nil
}
