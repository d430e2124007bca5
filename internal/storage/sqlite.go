package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/clinikore/offlinesync/internal/models"
)

// SQLiteStore persists the queue as a single row in a key-value table,
// keyed by models.StorageKey.
type SQLiteStore struct {
	db    *sql.DB
	codec Codec
}

// NewSQLiteStore creates the key-value table if needed and returns a store.
func NewSQLiteStore(db *sql.DB, codec Codec) (*SQLiteStore, error) {
	if codec == nil {
		codec = PlainCodec()
	}

	schema := `
	CREATE TABLE IF NOT EXISTS kv_store (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create kv_store table: %w", err)
	}

	return &SQLiteStore{db: db, codec: codec}, nil
}

// Load reads the persisted queue snapshot.
func (s *SQLiteStore) Load(ctx context.Context) ([]models.QueuedRequest, error) {
	query := `SELECT value FROM kv_store WHERE key = ?`

	var value string
	err := s.db.QueryRowContext(ctx, query, models.StorageKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load queue: %w", err)
	}

	plaintext, err := s.codec.Decode([]byte(value))
	if err != nil {
		return nil, err
	}
	return decode(plaintext)
}

// Save replaces the persisted queue snapshot.
func (s *SQLiteStore) Save(ctx context.Context, requests []models.QueuedRequest) error {
	plaintext, err := encode(requests)
	if err != nil {
		return err
	}

	stored, err := s.codec.Encode(plaintext)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query, models.StorageKey, string(stored), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save queue: %w", err)
	}
	return nil
}

// Close is a no-op; the caller owns the database handle.
func (s *SQLiteStore) Close() error {
	return nil
}
