package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunNowRecordsOutcome(t *testing.T) {
	svc := New(0, nil)
	if _, err := svc.RunNow(context.Background(), "ok", func(context.Context) (any, error) { return 1, nil }); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := svc.RunNow(context.Background(), "bad", func(context.Context) (any, error) { return nil, errors.New("boom") }); err == nil {
		t.Fatal("expected error")
	}
	runs := svc.Runs()
	if len(runs) != 2 {
		t.Fatalf("expected two runs, got %d", len(runs))
	}
	if runs[0].Type != "bad" || runs[0].Status != StatusFailed || runs[0].Error != "boom" {
		t.Fatalf("unexpected newest run %+v", runs[0])
	}
	if runs[1].Status != StatusCompleted {
		t.Fatalf("unexpected first run %+v", runs[1])
	}
}

func TestScheduledBackupsRun(t *testing.T) {
	var calls int32
	svc := New(10*time.Millisecond, func(context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return nil, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&calls) < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected scheduled backups, got %d", atomic.LoadInt32(&calls))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRunsAreBounded(t *testing.T) {
	svc := New(0, nil)
	for i := 0; i < maxRecordedRuns+5; i++ {
		_, _ = svc.RunNow(context.Background(), "x", func(context.Context) (any, error) { return nil, nil })
	}
	if got := len(svc.Runs()); got != maxRecordedRuns {
		t.Fatalf("expected %d runs kept, got %d", maxRecordedRuns, got)
	}
}
