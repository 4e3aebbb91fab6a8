package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"p9ify/internal/platform/kv"
)

type Store struct {
	KV kv.Store
}

func NewStore(store kv.Store) *Store {
	return &Store{KV: store}
}

func (s *Store) Get(ctx context.Context, key Key) (Result, error) {
	raw, err := s.KV.Get(ctx, storageKey(key))
	if errors.Is(err, kv.ErrNotFound) {
		return Result{}, ErrRecordNotFound
	}
	if err != nil {
		return Result{}, err
	}
	var r Result
	if err := json.Unmarshal(raw, &r); err != nil {
		return Result{}, err
	}
	return r, nil
}

func (s *Store) Put(ctx context.Context, key Key, result Result) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return s.KV.Set(ctx, storageKey(key), raw)
}

func (s *Store) Delete(ctx context.Context, key Key) error {
	return s.KV.Delete(ctx, storageKey(key))
}

func (s *Store) ListAll(ctx context.Context) (map[Key]Result, error) {
	return s.scan(ctx, KeyPrefix)
}

func (s *Store) ListMonth(ctx context.Context, year int, month time.Month) (map[Key]Result, error) {
	return s.scan(ctx, MonthPrefix(year, month))
}

func (s *Store) ListYear(ctx context.Context, year int) (map[Key]Result, error) {
	return s.scan(ctx, YearPrefix(year))
}

// scan decodes every record under prefix. Entries with a malformed key or
// body are logged and skipped so one bad record cannot hide the rest.
func (s *Store) scan(ctx context.Context, prefix string) (map[Key]Result, error) {
	entries, err := s.KV.Scan(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make(map[Key]Result, len(entries))
	for _, entry := range entries {
		key, err := ParseKey(strings.TrimPrefix(entry.Key, KeyPrefix))
		if err != nil {
			slog.Warn("skipping payroll record with bad key", "key", entry.Key, "err", err)
			continue
		}
		var r Result
		if err := json.Unmarshal(entry.Value, &r); err != nil {
			slog.Warn("skipping unreadable payroll record", "key", entry.Key, "err", err)
			continue
		}
		out[key] = r
	}
	return out, nil
}
