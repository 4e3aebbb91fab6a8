// Package audit keeps a bounded trail of data-changing operations such as
// imports, restores, clears and employee deletions.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"p9ify/internal/platform/kv"
)

const (
	KeyPrefix = "audit_log/"
	MaxEvents = 500

	ActionEmployeeDelete = "employee.delete"
	ActionSettingsSave   = "settings.save"
	ActionRatesReset     = "settings.rates_reset"
	ActionDataImport     = "data.import"
	ActionDataClear      = "data.clear"
	ActionDataRepair     = "data.repair"
	ActionBackupRestore  = "backup.restore"
	ActionBackupDelete   = "backup.delete"
)

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId,omitempty"`
	RequestID  string          `json:"requestId,omitempty"`
	IP         string          `json:"ip,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	Details    json.RawMessage `json:"details,omitempty"`
}

type Filter struct {
	Action     string
	EntityType string
}

type Service struct {
	kv  kv.Store
	now func() time.Time
}

func New(store kv.Store) *Service {
	return &Service{kv: store, now: time.Now}
}

// Record appends an event and drops the oldest beyond MaxEvents.
func (s *Service) Record(ctx context.Context, evt Event, details any) error {
	if details != nil {
		payload, err := json.Marshal(details)
		if err != nil {
			return err
		}
		evt.Details = payload
	}
	evt.CreatedAt = s.now().UTC()
	evt.ID = uuid.NewString()
	raw, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, eventKey(evt), raw); err != nil {
		return err
	}
	return s.prune(ctx)
}

// List returns matching events newest first with the total match count.
func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Event, int, error) {
	events, err := s.all(ctx)
	if err != nil {
		return nil, 0, err
	}
	out := make([]Event, 0, len(events))
	for _, evt := range events {
		if filter.Action != "" && evt.Action != filter.Action {
			continue
		}
		if filter.EntityType != "" && evt.EntityType != filter.EntityType {
			continue
		}
		out = append(out, evt)
	}
	total := len(out)
	if offset >= total {
		return []Event{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return out[offset:end], total, nil
}

func (s *Service) all(ctx context.Context) ([]Event, error) {
	entries, err := s.kv.Scan(ctx, KeyPrefix)
	if err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(entries))
	for _, entry := range entries {
		var evt Event
		if err := json.Unmarshal(entry.Value, &evt); err != nil {
			slog.Warn("skipping unreadable audit event", "key", entry.Key, "err", err)
			continue
		}
		events = append(events, evt)
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].CreatedAt.After(events[j].CreatedAt) })
	return events, nil
}

func (s *Service) prune(ctx context.Context) error {
	entries, err := s.kv.Scan(ctx, KeyPrefix)
	if err != nil {
		return err
	}
	// Keys sort oldest first.
	for i := 0; i < len(entries)-MaxEvents; i++ {
		if err := s.kv.Delete(ctx, entries[i].Key); err != nil {
			return err
		}
	}
	return nil
}

func eventKey(evt Event) string {
	stamp := evt.CreatedAt.Format("20060102T150405.000000000Z")
	return fmt.Sprintf("%s%s-%s", KeyPrefix, strings.ReplaceAll(stamp, ".", ""), evt.ID)
}
