package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"p9ify/internal/platform/kv"
)

// Create stores a backup of the current data and prunes the oldest
// beyond MaxBackups.
func (s *Service) Create(ctx context.Context) (Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.collect(ctx)
	if err != nil {
		return Info{}, err
	}
	plain, err := json.Marshal(data)
	if err != nil {
		return Info{}, err
	}
	rec := record{Info: Info{
		ID:        "backup_" + uuid.NewString(),
		Timestamp: s.now().UTC(),
		Size:      len(plain),
		Summary: Summary{
			EmployeeCount: len(data.Employees),
			PayrollCount:  len(data.Payrolls),
			CompanyName:   companyName(data),
		},
	}}
	if s.crypto.Configured() {
		sealed, err := s.crypto.Encrypt(plain)
		if err != nil {
			return Info{}, err
		}
		rec.Encrypted = true
		rec.Payload = sealed
	} else {
		rec.Data = &data
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return Info{}, err
	}
	if err := s.kv.Set(ctx, KeyPrefix+rec.ID, raw); err != nil {
		return Info{}, err
	}
	if err := s.prune(ctx); err != nil {
		slog.Warn("backup prune failed", "err", err)
	}
	return rec.Info, nil
}

// List returns stored backups newest first.
func (s *Service) List(ctx context.Context) ([]Info, error) {
	entries, err := s.kv.Scan(ctx, KeyPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]Info, 0, len(entries))
	for _, entry := range entries {
		var rec record
		if err := json.Unmarshal(entry.Value, &rec); err != nil {
			slog.Warn("skipping unreadable backup", "key", entry.Key, "err", err)
			continue
		}
		out = append(out, rec.Info)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (s *Service) Restore(ctx context.Context, id string) (Info, error) {
	rec, err := s.load(ctx, id)
	if err != nil {
		return Info{}, err
	}
	data, err := s.open(rec)
	if err != nil {
		return Info{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.replaceAll(ctx, data); err != nil {
		return Info{}, err
	}
	slog.Info("backup restored", "backupId", id, "employees", len(data.Employees), "payrolls", len(data.Payrolls))
	return rec.Info, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	return s.kv.Delete(ctx, KeyPrefix+id)
}

func (s *Service) load(ctx context.Context, id string) (record, error) {
	if id == "" {
		return record{}, ErrBackupNotFound
	}
	raw, err := s.kv.Get(ctx, KeyPrefix+id)
	if errors.Is(err, kv.ErrNotFound) {
		return record{}, ErrBackupNotFound
	}
	if err != nil {
		return record{}, err
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return record{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	return rec, nil
}

func (s *Service) open(rec record) (Data, error) {
	if !rec.Encrypted {
		if rec.Data == nil {
			return Data{}, ErrInvalidBackup
		}
		return *rec.Data, nil
	}
	if !s.crypto.Configured() {
		return Data{}, ErrBackupLocked
	}
	plain, err := s.crypto.Decrypt(rec.Payload)
	if err != nil {
		return Data{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	var data Data
	if err := json.Unmarshal(plain, &data); err != nil {
		return Data{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	return data, nil
}

func (s *Service) prune(ctx context.Context) error {
	infos, err := s.List(ctx)
	if err != nil {
		return err
	}
	for i := MaxBackups; i < len(infos); i++ {
		if err := s.kv.Delete(ctx, KeyPrefix+infos[i].ID); err != nil {
			return err
		}
	}
	return nil
}

func companyName(data Data) string {
	if data.Settings.Name != nil && *data.Settings.Name != "" {
		return *data.Settings.Name
	}
	return "Unknown Company"
}
