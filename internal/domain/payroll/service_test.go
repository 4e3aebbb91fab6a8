package payroll

import (
	"context"
	"errors"
	"testing"
	"time"

	"p9ify/internal/domain/employees"
	"p9ify/internal/platform/kv"
)

type staticRates struct {
	rates Rates
}

func (s staticRates) Rates(context.Context) (Rates, error) { return s.rates, nil }

type fixture struct {
	svc       *Service
	employees *employees.Service
	store     kv.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := kv.NewMemory()
	people := employees.NewService(employees.NewStore(store))
	svc := NewService(NewStore(store), people, staticRates{rates: DefaultRates()})
	svc.now = func() time.Time { return time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC) }
	people.SetPayrollCleaner(svc)
	return fixture{svc: svc, employees: people, store: store}
}

func (f fixture) hire(t *testing.T, name, pin string) employees.Employee {
	t.Helper()
	e, err := f.employees.Create(context.Background(), employees.CreateInput{Name: name, PIN: pin})
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}
	return e
}

func TestRecordStoresAndReplaces(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.hire(t, "Jane", "A123456789Z")
	key := Key{Year: 2026, Month: time.January, EmployeeID: string(e.ID)}

	first, err := f.svc.Record(ctx, key, Input{Basic: 50000})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if first.CalculatedAt == nil || first.PAYE != 6098 {
		t.Fatalf("unexpected stored result %+v", first)
	}
	if _, err := f.store.Get(ctx, KeyPrefix+key.String()); err != nil {
		t.Fatalf("expected record under composite key: %v", err)
	}

	if _, err := f.svc.Record(ctx, key, Input{Basic: 60000}); err != nil {
		t.Fatalf("re-record: %v", err)
	}
	got, err := f.svc.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Basic != 60000 {
		t.Fatalf("expected recomputation to replace, got basic %v", got.Basic)
	}
	all, _ := f.store.Scan(ctx, KeyPrefix)
	if len(all) != 1 {
		t.Fatalf("expected one record, got %d", len(all))
	}
}

func TestRecordRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.hire(t, "Jane", "A123456789Z")

	if _, err := f.svc.Record(ctx, Key{Year: 2026, Month: time.January, EmployeeID: string(e.ID)}, Input{Basic: -1}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if _, err := f.svc.Record(ctx, Key{Year: 2026, Month: time.January, EmployeeID: "nobody"}, Input{Basic: 1}); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected employee not found, got %v", err)
	}
	if _, err := f.svc.Record(ctx, Key{Year: 2026, Month: 13, EmployeeID: string(e.ID)}, Input{Basic: 1}); !errors.Is(err, ErrInvalidMonth) {
		t.Fatalf("expected invalid month, got %v", err)
	}
}

func TestPreviewWithPartialRates(t *testing.T) {
	f := newFixture(t)
	shif := 2.75
	r, err := f.svc.Preview(context.Background(), Input{Basic: 50000}, &RatesInput{SHIFPercent: &shif})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if r.SHIF != 1375 || r.AHL != 0 {
		t.Fatalf("unexpected preview %+v", r)
	}
	if len(r.Warnings) != 6 || r.Warnings[0] != WarningMissingRate+":ahl" {
		t.Fatalf("expected missing rate warnings, got %v", r.Warnings)
	}
	r, err = f.svc.Preview(context.Background(), Input{Basic: 50000}, nil)
	if err != nil || r.Net != 39617 {
		t.Fatalf("expected configured rates preview, got %+v (%v)", r, err)
	}
}

func TestPreviewOverrideKeepsConfiguredBands(t *testing.T) {
	rates := DefaultRates()
	rates.Bands = []Band{{Upper: 0, Rate: 0.5}}
	people := employees.NewService(employees.NewStore(kv.NewMemory()))
	svc := NewService(NewStore(kv.NewMemory()), people, staticRates{rates: rates})

	zero := 0.0
	override := &RatesInput{
		SHIFPercent: &zero, AHLPercent: &zero, NSSFPercent: &zero,
		PersonalRelief: &zero, InsuranceRelief: &zero, Benefits: &zero, Quarters: &zero,
	}
	r, err := svc.Preview(context.Background(), Input{Basic: 10000}, override)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if r.PAYE != 5000 {
		t.Fatalf("expected configured flat band to apply, got paye %v", r.PAYE)
	}
}

func TestListMonthIncludesEveryEmployee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.hire(t, "A", "A123456789Z")
	f.hire(t, "B", "B123456789Z")
	if _, err := f.svc.Record(ctx, Key{Year: 2026, Month: time.March, EmployeeID: string(a.ID)}, Input{Basic: 50000}); err != nil {
		t.Fatalf("record: %v", err)
	}

	sheet, err := f.svc.ListMonth(ctx, 2026, time.March)
	if err != nil {
		t.Fatalf("list month: %v", err)
	}
	if len(sheet.Rows) != 2 || sheet.PayslipCount != 1 {
		t.Fatalf("expected two rows and one payslip, got %d rows %d payslips", len(sheet.Rows), sheet.PayslipCount)
	}
	if !sheet.Rows[0].HasRecord || sheet.Rows[1].HasRecord || sheet.Rows[1].Record.Net != 0 {
		t.Fatalf("unexpected rows %+v", sheet.Rows)
	}
	if sheet.Totals.PAYE != 6098 || sheet.Totals.Net != 39617 {
		t.Fatalf("unexpected totals %+v", sheet.Totals)
	}
}

func TestPayslipsHistoryAndP9(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.hire(t, "A", "A123456789Z")
	id := string(e.ID)
	for _, m := range []time.Month{time.January, time.February} {
		if _, err := f.svc.Record(ctx, Key{Year: 2025, Month: m, EmployeeID: id}, Input{Basic: 50000}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if _, err := f.svc.Record(ctx, Key{Year: 2025, Month: time.March, EmployeeID: id}, Input{Basic: 0}); err != nil {
		t.Fatalf("record: %v", err)
	}

	slips, err := f.svc.ListPayslips(ctx, PayslipFilter{})
	if err != nil {
		t.Fatalf("payslips: %v", err)
	}
	if len(slips) != 2 || slips[0].MonthName != "February" {
		t.Fatalf("expected two payslips newest first, got %+v", slips)
	}
	if slips[0].NSSFEmployee != 1080 || slips[0].NSSFEmployer != 1080 {
		t.Fatalf("unexpected NSSF halves %+v", slips[0])
	}

	history, err := f.svc.History(ctx, id)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 || history[0].Month != "March 2025" {
		t.Fatalf("unexpected history %+v", history)
	}

	card, err := f.svc.P9(ctx, id, 2025)
	if err != nil {
		t.Fatalf("p9: %v", err)
	}
	if card.Totals.PAYE != 2*6098 || card.Totals.Gross != 100000 {
		t.Fatalf("unexpected P9 totals %+v", card.Totals)
	}

	export, err := f.svc.Export(ctx, id)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if export.Totals.TotalPAYE != 2*6098 || len(export.PayrollHistory) != 3 {
		t.Fatalf("unexpected export %+v", export.Totals)
	}
}

func TestEmployeeDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.hire(t, "A", "A123456789Z")
	b := f.hire(t, "B", "B123456789Z")
	for _, e := range []employees.Employee{a, b} {
		if _, err := f.svc.Record(ctx, Key{Year: 2026, Month: time.January, EmployeeID: string(e.ID)}, Input{Basic: 30000}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	removed, err := f.employees.Delete(ctx, string(a.ID))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected one payroll removed, got %d", removed)
	}
	left, _ := f.store.Scan(ctx, KeyPrefix)
	if len(left) != 1 {
		t.Fatalf("expected only B's record left, got %d", len(left))
	}
	if _, err := f.svc.P9(ctx, string(a.ID), 2026); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected employee not found, got %v", err)
	}
}

func TestDeleteMissingRecord(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Delete(context.Background(), Key{Year: 2026, Month: time.January, EmployeeID: "1"})
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}
