package audit

import (
	"context"
	"testing"
	"time"

	"p9ify/internal/platform/kv"
)

func newTestService() *Service {
	svc := New(kv.NewMemory())
	clock := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc
}

func TestRecordAndListNewestFirst(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	if err := svc.Record(ctx, Event{ActorID: "admin", Action: ActionDataImport, EntityType: "data"}, map[string]int{"employees": 2}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := svc.Record(ctx, Event{ActorID: "admin", Action: ActionEmployeeDelete, EntityType: "employee", EntityID: "7"}, nil); err != nil {
		t.Fatalf("record: %v", err)
	}

	events, total, err := svc.List(ctx, Filter{}, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || events[0].Action != ActionEmployeeDelete {
		t.Fatalf("unexpected events %+v", events)
	}
	if string(events[1].Details) != `{"employees":2}` {
		t.Fatalf("unexpected details %s", events[1].Details)
	}

	filtered, total, err := svc.List(ctx, Filter{EntityType: "employee"}, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || filtered[0].EntityID != "7" {
		t.Fatalf("unexpected filtered events %+v", filtered)
	}
}

func TestRecordPrunesOldest(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	for i := 0; i < MaxEvents+3; i++ {
		if err := svc.Record(ctx, Event{Action: ActionDataClear, EntityType: "data"}, nil); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}
	_, total, err := svc.List(ctx, Filter{}, 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != MaxEvents {
		t.Fatalf("expected %d events kept, got %d", MaxEvents, total)
	}
}
