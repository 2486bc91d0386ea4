// ABOUTME: SQLite implementation of the Registry interface using modernc.org/sqlite
// ABOUTME: Single-column slaves table, created on open, written with INSERT OR IGNORE

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteRegistry implements the Registry interface using SQLite
type SQLiteRegistry struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteRegistry opens (or creates) the registry database at path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed. ":memory:" opens a private in-memory database.
func NewSQLiteRegistry(path string) (*SQLiteRegistry, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// A single connection serializes writes and keeps ":memory:" databases alive
	db.SetMaxOpenConns(1)

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling WAL mode: %w", err)
		}
	}

	r := &SQLiteRegistry{
		db:     db,
		logger: logger,
	}

	if err := r.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite registry initialized", "path", path)
	return r, nil
}

// createSchema creates the slaves table if it doesn't exist
func (r *SQLiteRegistry) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS slaves (
			username TEXT PRIMARY KEY
		);
	`
	_, err := r.db.Exec(schema)
	return err
}

// InsertIfAbsent records identity, ignoring duplicates.
func (r *SQLiteRegistry) InsertIfAbsent(ctx context.Context, identity string) error {
	if err := validateIdentity(identity); err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO slaves (username) VALUES (?)`, identity); err != nil {
		return fmt.Errorf("inserting slave %q: %w", identity, err)
	}

	r.logger.Debug("slave registered", "identity", identity)
	return nil
}

// ListAll returns every registered slave identity.
func (r *SQLiteRegistry) ListAll(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT username FROM slaves ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("querying slaves: %w", err)
	}
	defer rows.Close()

	var identities []string
	for rows.Next() {
		var identity string
		if err := rows.Scan(&identity); err != nil {
			return nil, fmt.Errorf("scanning slave: %w", err)
		}
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating slaves: %w", err)
	}

	return identities, nil
}

// Close closes the database connection
func (r *SQLiteRegistry) Close() error {
	r.logger.Info("closing SQLite registry")
	return r.db.Close()
}
