package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/p-n-ai/statsmd/internal/platform/database"
)

const dbTimeout = 5 * time.Second

const kvStoreSchema = `CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStorage stores snapshots in the kv_store table.
type PostgresStorage struct {
	db *database.DB
}

// NewPostgresStorage creates the kv_store table if needed.
func NewPostgresStorage(ctx context.Context, db *database.DB) (*PostgresStorage, error) {
	if db == nil || db.Pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if err := db.Migrate(ctx, kvStoreSchema); err != nil {
		return nil, fmt.Errorf("creating kv_store: %w", err)
	}
	return &PostgresStorage{db: db}, nil
}

func (s *PostgresStorage) Load(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var value []byte
	err := s.db.Pool.QueryRow(ctx,
		`SELECT value::text FROM kv_store WHERE key = $1`, key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", key, err)
	}
	return value, nil
}

func (s *PostgresStorage) Save(ctx context.Context, key string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := s.db.Pool.Exec(ctx,
		`INSERT INTO kv_store (key, value, updated_at)
		 VALUES ($1, $2::jsonb, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, string(data),
	)
	if err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}
