package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Arsen1987144/joycity-marketplace/internal/repository"
)

type kvStore struct {
	db *sql.DB
}

// NewKVStore creates a new KVStore backed by the storefront_kv table.
func NewKVStore(db *sql.DB) repository.KVStore {
	return &kvStore{db: db}
}

func (s *kvStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM storefront_kv WHERE key = $1", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (s *kvStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO storefront_kv (key, value, updated_at) VALUES ($1, $2, NOW()) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *kvStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM storefront_kv WHERE key = $1", key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *kvStore) Close() error {
	return s.db.Close()
}
