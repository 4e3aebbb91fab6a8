package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore keeps every entry in one JSON object on disk, the same shape a
// browser local storage dump has. Each mutation rewrites the file through a
// temp file and rename.
type FileStore struct {
	mu   sync.RWMutex
	path string
	data map[string]json.RawMessage
}

func OpenFile(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	store := &FileStore{path: path, data: make(map[string]json.RawMessage)}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return store, nil
	}
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return store, nil
	}
	if err := json.Unmarshal(raw, &store.data); err != nil {
		return nil, fmt.Errorf("kv file %s: %w", path, err)
	}
	return store, nil
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneBytes(value), nil
}

func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	if err := validEntry(key, value); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	previous, existed := s.data[key]
	s.data[key] = cloneBytes(value)
	if err := s.flushLocked(); err != nil {
		if existed {
			s.data[key] = previous
		} else {
			delete(s.data, key)
		}
		return err
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous, existed := s.data[key]
	if !existed {
		return nil
	}
	delete(s.data, key)
	if err := s.flushLocked(); err != nil {
		s.data[key] = previous
		return err
	}
	return nil
}

func (s *FileStore) Scan(_ context.Context, prefix string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var entries []Entry
	for key, value := range s.data {
		if strings.HasPrefix(key, prefix) {
			entries = append(entries, Entry{Key: key, Value: cloneBytes(value)})
		}
	}
	sortEntries(entries)
	return entries, nil
}

func (s *FileStore) Ping(context.Context) error {
	_, err := os.Stat(filepath.Dir(s.path))
	return err
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) flushLocked() error {
	payload, err := json.Marshal(s.data)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".kv-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}
