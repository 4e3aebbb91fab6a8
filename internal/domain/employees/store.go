package employees

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"

	"p9ify/internal/platform/kv"
)

type Store struct {
	KV kv.Store
}

func NewStore(store kv.Store) *Store {
	return &Store{KV: store}
}

// List returns employees in creation order; unreadable entries are skipped.
func (s *Store) List(ctx context.Context) ([]Employee, error) {
	entries, err := s.KV.Scan(ctx, KeyPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]Employee, 0, len(entries))
	for _, entry := range entries {
		var e Employee
		if err := json.Unmarshal(entry.Value, &e); err != nil {
			slog.Warn("skipping unreadable employee", "key", entry.Key, "err", err)
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) Get(ctx context.Context, id ID) (Employee, error) {
	raw, err := s.KV.Get(ctx, KeyPrefix+string(id))
	if errors.Is(err, kv.ErrNotFound) {
		return Employee{}, ErrNotFound
	}
	if err != nil {
		return Employee{}, err
	}
	var e Employee
	if err := json.Unmarshal(raw, &e); err != nil {
		return Employee{}, err
	}
	return e, nil
}

func (s *Store) Exists(ctx context.Context, id ID) (bool, error) {
	_, err := s.KV.Get(ctx, KeyPrefix+string(id))
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Store) Put(ctx context.Context, e Employee) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.KV.Set(ctx, KeyPrefix+string(e.ID), raw)
}

func (s *Store) Delete(ctx context.Context, id ID) error {
	err := s.KV.Delete(ctx, KeyPrefix+string(id))
	if errors.Is(err, kv.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
