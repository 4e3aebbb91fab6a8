package backup

import (
	"context"
	"testing"
	"time"

	"p9ify/internal/domain/employees"
	"p9ify/internal/domain/payroll"
)

func TestValidateAndRepair(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	for _, e := range []employees.Employee{
		{ID: "1", Name: "  Jane ", PIN: " a123456789z"},
		{ID: "2", Name: "", PIN: "B123456789Z"},
		{ID: "3", Name: "Dup", PIN: "B123456789Z"},
		{ID: "4", Name: "NoPin", PIN: ""},
	} {
		if err := f.people.Put(ctx, e); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	orphan := payroll.Key{Year: 2026, Month: time.May, EmployeeID: "77"}
	if err := f.payrolls.Put(ctx, orphan, payroll.Result{Basic: -5}); err != nil {
		t.Fatalf("seed payroll: %v", err)
	}

	issues, err := f.svc.Validate(ctx)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	bySeverity := map[string]int{}
	for _, issue := range issues {
		bySeverity[issue.Severity]++
	}
	// missing name, missing PIN; two duplicate PINs plus the orphan; negative basic
	if bySeverity[SeverityHigh] != 2 || bySeverity[SeverityMedium] != 3 || bySeverity[SeverityLow] != 1 {
		t.Fatalf("unexpected issue mix %v: %+v", bySeverity, issues)
	}

	fixed, err := f.svc.Repair(ctx)
	if err != nil {
		t.Fatalf("repair: %v", err)
	}
	if fixed != 2 {
		t.Fatalf("expected two fixes (one employee, one orphan), got %d", fixed)
	}
	jane, _ := f.people.Get(ctx, "1")
	if jane.Name != "Jane" || jane.PIN != "A123456789Z" {
		t.Fatalf("expected normalized employee, got %+v", jane)
	}
	if _, err := f.payrolls.Get(ctx, orphan); err == nil {
		t.Fatal("expected orphaned payroll removed")
	}
	again, _ := f.svc.Repair(ctx)
	if again != 0 {
		t.Fatalf("expected repair to be idempotent, got %d", again)
	}
}
