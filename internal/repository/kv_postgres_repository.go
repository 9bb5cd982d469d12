package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/painel-admin-api/pkg/kvstore"
)

// PostgresKVRepository stores grades ledger namespaces in a jsonb table.
type PostgresKVRepository struct {
	db *sqlx.DB
}

// NewPostgresKVRepository constructs the repository.
func NewPostgresKVRepository(db *sqlx.DB) *PostgresKVRepository {
	return &PostgresKVRepository{db: db}
}

// EnsureSchema creates the backing table when missing.
func (r *PostgresKVRepository) EnsureSchema(ctx context.Context) error {
	const query = `CREATE TABLE IF NOT EXISTS painel_kv (
	key TEXT PRIMARY KEY,
	value JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure painel_kv schema: %w", err)
	}
	return nil
}

// Get returns the stored document of key.
func (r *PostgresKVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT value::text FROM painel_kv WHERE key = $1`
	var value string
	if err := r.db.GetContext(ctx, &value, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, kvstore.ErrNotFound
		}
		return nil, fmt.Errorf("get painel_kv %s: %w", key, err)
	}
	return []byte(value), nil
}

// Set upserts the document of key. value must be valid JSON.
func (r *PostgresKVRepository) Set(ctx context.Context, key string, value []byte) error {
	const query = `INSERT INTO painel_kv (key, value, updated_at)
VALUES ($1, $2::jsonb, NOW())
ON CONFLICT (key)
DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, key, string(value)); err != nil {
		return fmt.Errorf("set painel_kv %s: %w", key, err)
	}
	return nil
}
