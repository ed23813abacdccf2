package migrations

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
)

// FullTextTable is the name of the full-text index over items
const FullTextTable = "items_fts"

// DefaultFullTextModule is the SQLite virtual table module used for the full-text index
// With mattn/go-sqlite3 it's only available when building with the "sqlite_fts5" tag
const DefaultFullTextModule = "fts5"

// Manager initializes the schema
type Manager struct {
	// Virtual table module for the full-text index
	FullTextModule string
}

// Migrate initializes the schema with the default settings
// It returns true if the full-text index is available
func Migrate(db *sqlx.DB) (bool, error) {
	m := Manager{FullTextModule: DefaultFullTextModule}
	return m.Initialize(db)
}

// Initialize creates all tables, indexes and triggers if they don't exist
// If the engine doesn't support the full-text module, the schema is created without the full-text objects
// Any other error is returned
func (m Manager) Initialize(db *sqlx.DB) (fullText bool, err error) {
	logger := log.WithField("component", "migrations")

	module := m.FullTextModule
	if module == "" {
		module = DefaultFullTextModule
	}

	err = applySchema(db, V1Schema, fullTextSchema(module))
	if err == nil {
		logger.WithField("module", module).Debug("Schema initialized with full-text index")
		return true, nil
	}
	if !IsFullTextUnsupported(err, module) {
		return false, fmt.Errorf("error initializing the schema: %w", err)
	}

	// Re-try without the full-text objects
	logger.WithError(err).Warn("Full-text index not supported; initializing the schema without it")
	err = applySchema(db, V1Schema)
	if err != nil {
		return false, fmt.Errorf("error initializing the fallback schema: %w", err)
	}
	return false, nil
}

// IsFullTextUnsupported returns true if the error was raised because the SQLite engine doesn't have the full-text module
func IsFullTextUnsupported(err error, module string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "no such module") {
		return true
	}
	return module != "" && strings.Contains(msg, strings.ToLower(module))
}

// HasFullText returns true if the full-text index exists in the database
func HasFullText(db sqlx.Queryer) (bool, error) {
	var count int
	err := sqlx.Get(db, &count, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", FullTextTable)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Runs all statements in a single transaction
func applySchema(db *sqlx.DB, stmts ...string) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range stmts {
		_, err = tx.Exec(stmt)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}
