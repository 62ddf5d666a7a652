package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// MysqlStore is a ProcessedStore backed by MySQL, for deployments where
// several instances share one processed-email ledger.
type MysqlStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMysqlStore connects to MySQL with the given DSN and ensures the
// schema exists.
func NewMysqlStore(dsn string, logger *zap.Logger) (*MysqlStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	store := &MysqlStore{db: db, logger: logger}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *MysqlStore) initSchema() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS processed_emails (
			email_id VARCHAR(255) PRIMARY KEY,
			processed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to initialize processed_emails table: %w", err)
	}
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS markers (
			name VARCHAR(64) PRIMARY KEY,
			value VARCHAR(255) NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to initialize markers table: %w", err)
	}
	return nil
}

// Contains reports whether the email ID has been processed.
func (s *MysqlStore) Contains(ctx context.Context, id string) (bool, error) {
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
func (s *MysqlStore) Add(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT IGNORE INTO processed_emails (email_id) VALUES (?)", id)
	if err != nil {
		return fmt.Errorf("failed to record processed email: %w", err)
	}
	return nil
}

// SetLastProcessed records the most recently processed email ID.
func (s *MysqlStore) SetLastProcessed(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO markers (name, value) VALUES ('last_processed', ?)
		 ON DUPLICATE KEY UPDATE value = VALUES(value)`, id)
	if err != nil {
		return fmt.Errorf("failed to update last-processed marker: %w", err)
	}
	return nil
}

// LastProcessed returns the most recently processed email ID, or empty if
// no run has completed yet.
func (s *MysqlStore) LastProcessed(ctx context.Context) (string, error) {
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
func (s *MysqlStore) Close() error {
	return s.db.Close()
}
