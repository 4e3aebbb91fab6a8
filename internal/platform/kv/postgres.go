package kv

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps entries in the kv_entries table (see migrations).
type PostgresStore struct {
	DB *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{DB: pool}
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.DB.QueryRow(ctx, "SELECT value::text FROM kv_entries WHERE key = $1", key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	if err := validEntry(key, value); err != nil {
		return err
	}
	_, err := s.DB.Exec(ctx, `
    INSERT INTO kv_entries (key, value, updated_at)
    VALUES ($1, $2::jsonb, now())
    ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
  `, key, string(value))
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM kv_entries WHERE key = $1", key)
	return err
}

func (s *PostgresStore) Scan(ctx context.Context, prefix string) ([]Entry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT key, value::text
    FROM kv_entries
    WHERE starts_with(key, $1)
    ORDER BY key
  `, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.Key, &entry.Value); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.DB.Ping(ctx)
}

// Close is a no-op; the pool is owned by the caller.
func (s *PostgresStore) Close() error { return nil }
