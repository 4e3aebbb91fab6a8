package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"p9ify/internal/domain/employees"
	"p9ify/internal/domain/payroll"
	"p9ify/internal/domain/settings"
	cryptoutil "p9ify/internal/platform/crypto"
	"p9ify/internal/platform/kv"
)

type Service struct {
	kv        kv.Store
	employees employees.StoreAPI
	payrolls  payroll.StoreAPI
	settings  *settings.Service
	crypto    *cryptoutil.Service
	now       func() time.Time

	// mu serializes operations that replace or rewrite all data.
	mu sync.Mutex
}

func NewService(store kv.Store, people employees.StoreAPI, payrolls payroll.StoreAPI, settingsSvc *settings.Service, crypto *cryptoutil.Service) *Service {
	return &Service{
		kv:        store,
		employees: people,
		payrolls:  payrolls,
		settings:  settingsSvc,
		crypto:    crypto,
		now:       time.Now,
	}
}

func (s *Service) Export(ctx context.Context) (Snapshot, error) {
	data, err := s.collect(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Metadata: Metadata{
			ExportedAt:    s.now().UTC(),
			SchemaVersion: SchemaVersion,
			AppName:       AppName,
			Counts:        Counts{Employees: len(data.Employees), Payrolls: len(data.Payrolls)},
		},
		Data: data,
	}, nil
}

// Import replaces all data with the contents of an exported snapshot. The
// document must carry employees, payrolls and settings.
func (s *Service) Import(ctx context.Context, raw []byte) (Counts, error) {
	var doc struct {
		Employees json.RawMessage `json:"employees"`
		Payrolls  json.RawMessage `json:"payrolls"`
		Settings  json.RawMessage `json:"settings"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Counts{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	for name, part := range map[string]json.RawMessage{"employees": doc.Employees, "payrolls": doc.Payrolls, "settings": doc.Settings} {
		if absent(part) {
			return Counts{}, fmt.Errorf("%w: missing %s", ErrInvalidBackup, name)
		}
	}
	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return Counts{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.replaceAll(ctx, data); err != nil {
		return Counts{}, err
	}
	return Counts{Employees: len(data.Employees), Payrolls: len(data.Payrolls)}, nil
}

// ClearAll removes employees, payroll records and settings. Automatic
// backups are kept so a clear can be undone.
func (s *Service) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clear(ctx)
}

func (s *Service) collect(ctx context.Context) (Data, error) {
	people, err := s.employees.List(ctx)
	if err != nil {
		return Data{}, err
	}
	records, err := s.payrolls.ListAll(ctx)
	if err != nil {
		return Data{}, err
	}
	current, err := s.settings.Get(ctx)
	if err != nil {
		return Data{}, err
	}
	payrolls := make(map[string]payroll.Result, len(records))
	for key, r := range records {
		payrolls[key.String()] = r
	}
	return Data{Employees: people, Payrolls: payrolls, Settings: settings.ToInput(current)}, nil
}

// replaceAll checks and encodes the whole document before touching
// storage so a bad backup leaves current data in place. A write that fails
// part way puts the previous data back.
func (s *Service) replaceAll(ctx context.Context, data Data) error {
	keys := make(map[string]payroll.Key, len(data.Payrolls))
	for raw, r := range data.Payrolls {
		key, err := payroll.ParseKey(raw)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
		}
		if _, err := json.Marshal(r); err != nil {
			return fmt.Errorf("%w: payroll %s: %v", ErrInvalidBackup, raw, err)
		}
		keys[raw] = key
	}
	for i, e := range data.Employees {
		if strings.TrimSpace(string(e.ID)) == "" {
			return fmt.Errorf("%w: employee %d has no id", ErrInvalidBackup, i+1)
		}
		if _, err := json.Marshal(e); err != nil {
			return fmt.Errorf("%w: employee %d: %v", ErrInvalidBackup, i+1, err)
		}
	}
	if err := s.settings.Validate(data.Settings); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if _, err := json.Marshal(data.Settings); err != nil {
		return fmt.Errorf("%w: settings: %v", ErrInvalidBackup, err)
	}

	previous, err := s.collect(ctx)
	if err != nil {
		return err
	}
	previousKeys := make(map[string]payroll.Key, len(previous.Payrolls))
	for raw := range previous.Payrolls {
		if key, err := payroll.ParseKey(raw); err == nil {
			previousKeys[raw] = key
		}
	}
	stored, err := s.settings.Stored(ctx)
	if err != nil {
		return err
	}
	previous.Settings = stored

	if err := s.write(ctx, data, keys); err != nil {
		if rerr := s.write(ctx, previous, previousKeys); rerr != nil {
			slog.Error("backup rollback failed", "err", rerr)
		}
		return err
	}
	return nil
}

func (s *Service) write(ctx context.Context, data Data, keys map[string]payroll.Key) error {
	if err := s.clear(ctx); err != nil {
		return err
	}
	for _, e := range data.Employees {
		if err := s.employees.Put(ctx, e); err != nil {
			return err
		}
	}
	for raw, r := range data.Payrolls {
		if err := s.payrolls.Put(ctx, keys[raw], r); err != nil {
			return err
		}
	}
	return s.settings.Restore(ctx, data.Settings)
}

func (s *Service) clear(ctx context.Context) error {
	if _, err := kv.DeletePrefix(ctx, s.kv, employees.KeyPrefix); err != nil {
		return err
	}
	if _, err := kv.DeletePrefix(ctx, s.kv, payroll.KeyPrefix); err != nil {
		return err
	}
	return s.kv.Delete(ctx, settings.Key)
}

func absent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
