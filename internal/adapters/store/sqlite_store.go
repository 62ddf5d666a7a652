package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SqliteStore is a ProcessedStore backed by a local SQLite database.
type SqliteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSqliteStore opens (creating if necessary) the SQLite database at path
// and ensures the schema exists.
func NewSqliteStore(path string, logger *zap.Logger) (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	store := &SqliteStore{db: db, logger: logger}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SqliteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS processed_emails (
			email_id TEXT PRIMARY KEY,
			processed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS markers (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Contains reports whether the email ID has been processed.
func (s *SqliteStore) Contains(ctx context.Context, id string) (bool, error) {
	var found string
	err := s.db.QueryRowContext(ctx,
		"SELECT email_id FROM processed_emails WHERE email_id = ?", id).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query processed emails: %w", err)
	}
	return true, nil
}

// Add records the email ID as processed.
func (s *SqliteStore) Add(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO processed_emails (email_id) VALUES (?)", id)
	if err != nil {
		return fmt.Errorf("failed to record processed email: %w", err)
	}
	return nil
}

// SetLastProcessed records the most recently processed email ID.
func (s *SqliteStore) SetLastProcessed(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO markers (name, value) VALUES ('last_processed', ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value`, id)
	if err != nil {
		return fmt.Errorf("failed to update last-processed marker: %w", err)
	}
	return nil
}

// LastProcessed returns the most recently processed email ID, or empty if
// no run has completed yet.
func (s *SqliteStore) LastProcessed(ctx context.Context) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM markers WHERE name = 'last_processed'").Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query last-processed marker: %w", err)
	}
	return value, nil
}

// Close closes the underlying database.
func (s *SqliteStore) Close() error {
	return s.db.Close()
}
