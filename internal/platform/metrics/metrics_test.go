package metrics

import (
	"testing"
	"time"
)

func TestSnapshotCounts(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(500, 30*time.Millisecond)
	c.Record(429, 0)
	c.PayrollComputed()
	c.DocumentRendered()
	c.BackupCreated()

	snap := c.Snapshot()
	if snap["requestsTotal"].(uint64) != 3 {
		t.Fatalf("expected 3 requests, got %v", snap["requestsTotal"])
	}
	if snap["errorsTotal"].(uint64) != 1 {
		t.Fatalf("expected 1 error, got %v", snap["errorsTotal"])
	}
	if snap["rateLimitedTotal"].(uint64) != 1 {
		t.Fatalf("expected 1 rate limited, got %v", snap["rateLimitedTotal"])
	}
	if avg := snap["avgDurationMs"].(float64); avg < 13 || avg > 14 {
		t.Fatalf("expected avg around 13.3ms, got %v", avg)
	}
	if snap["payrollsComputedTotal"].(uint64) != 1 {
		t.Fatalf("expected 1 payroll computed, got %v", snap["payrollsComputedTotal"])
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.Record(200, time.Millisecond)
	c.PayrollComputed()
}
