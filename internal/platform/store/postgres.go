package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ganesh5491/vyapar-sub000/internal/shared"
)

// PostgresStore keeps each family's collection as one jsonb row. It offers
// the same whole-collection semantics as FileStore but serializes updates
// with SELECT ... FOR UPDATE inside a transaction, so it is safe across
// processes.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects, pings, and ensures the collections table exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("store: parse config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("store: new pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	s := &PostgresStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS collections (
		family TEXT PRIMARY KEY,
		data JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	if err != nil {
		return fmt.Errorf("%w: ensure schema: %v", shared.ErrPersistence, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func decodeCollection(data []byte) (*Collection, error) {
	col := NewCollection()
	if err := json.Unmarshal(data, col); err != nil {
		return nil, fmt.Errorf("%w: decode collection: %v", shared.ErrPersistence, err)
	}
	if col.NextNumber < 1 {
		col.NextNumber = 1
	}
	return col, nil
}

// ReadCollection loads a family's collection, returning an empty one when no
// row exists yet.
func (s *PostgresStore) ReadCollection(ctx context.Context, family string) (*Collection, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM collections WHERE family = $1`, family).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return NewCollection(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", shared.ErrPersistence, family, err)
	}
	return decodeCollection(data)
}

// WriteCollection upserts a family's collection row.
func (s *PostgresStore) WriteCollection(ctx context.Context, family string, col *Collection) error {
	data, err := json.Marshal(col)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", shared.ErrPersistence, family, err)
	}
	_, err = s.pool.Exec(ctx, `INSERT INTO collections (family, data, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (family) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`, family, data)
	if err != nil {
		return fmt.Errorf("%w: write %s: %v", shared.ErrPersistence, family, err)
	}
	return nil
}

// Update runs fn against the row under a transaction-scoped row lock.
func (s *PostgresStore) Update(ctx context.Context, family string, fn func(col *Collection) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", shared.ErrPersistence, err)
	}
	defer tx.Rollback(ctx)

	var data []byte
	col := NewCollection()
	err = tx.QueryRow(ctx, `SELECT data FROM collections WHERE family = $1 FOR UPDATE`, family).Scan(&data)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// first write for this family
	case err != nil:
		return fmt.Errorf("%w: lock %s: %v", shared.ErrPersistence, family, err)
	default:
		col, err = decodeCollection(data)
		if err != nil {
			return err
		}
	}

	if err := fn(col); err != nil {
		return err
	}

	out, err := json.Marshal(col)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", shared.ErrPersistence, family, err)
	}
	_, err = tx.Exec(ctx, `INSERT INTO collections (family, data, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (family) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`, family, out)
	if err != nil {
		return fmt.Errorf("%w: write %s: %v", shared.ErrPersistence, family, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit %s: %v", shared.ErrPersistence, family, err)
	}
	return nil
}
