// Package kv is the key/value repository behind every piece of persisted
// state. Values are JSON documents; keys are flat strings grouped by
// prefix (for example "gen_payrolls/2026-January-1767685807816").
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound     = errors.New("kv: key not found")
	ErrInvalidValue = errors.New("kv: value is not a JSON document")
	ErrEmptyKey     = errors.New("kv: empty key")
)

type Entry struct {
	Key   string
	Value []byte
}

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Scan returns every entry whose key starts with prefix, ordered by key.
	Scan(ctx context.Context, prefix string) ([]Entry, error)
	Ping(ctx context.Context) error
	Close() error
}

// DeletePrefix removes every key under prefix and returns how many were removed.
func DeletePrefix(ctx context.Context, s Store, prefix string) (int, error) {
	entries, err := s.Scan(ctx, prefix)
	if err != nil {
		return 0, err
	}
	for _, entry := range entries {
		if err := s.Delete(ctx, entry.Key); err != nil {
			return 0, err
		}
	}
	return len(entries), nil
}

func validKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return nil
}

// validEntry is checked by every backend before a write.
func validEntry(key string, value []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	if !json.Valid(value) {
		return ErrInvalidValue
	}
	return nil
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
