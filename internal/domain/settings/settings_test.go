package settings

import (
	"context"
	"errors"
	"testing"

	"p9ify/internal/domain/payroll"
	"p9ify/internal/platform/kv"
)

func float(v float64) *float64 { return &v }

func TestGetReturnsDefaultsWhenEmpty(t *testing.T) {
	svc := NewService(kv.NewMemory(), payroll.DefaultRates())
	got, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != DefaultName || got.PIN != DefaultPIN {
		t.Fatalf("unexpected employer defaults %+v", got)
	}
	if got.Rates.SHIFPercent != 2.75 || got.Rates.PersonalRelief != 2400 {
		t.Fatalf("unexpected default rates %+v", got.Rates)
	}
}

func TestStoredRatesMergeOverDefaults(t *testing.T) {
	store := kv.NewMemory()
	ctx := context.Background()
	if err := store.Set(ctx, Key, []byte(`{"name":"Acme","rates":{"shif":3}}`)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := NewService(store, payroll.DefaultRates())
	got, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Acme" || got.PIN != DefaultPIN {
		t.Fatalf("expected merged employer, got %+v", got)
	}
	if got.Rates.SHIFPercent != 3 || got.Rates.AHLPercent != 1.5 || got.Rates.NSSFPercent != 6 {
		t.Fatalf("expected field-by-field rate merge, got %+v", got.Rates)
	}
}

func TestSaveValidatesAndResetRestoresRates(t *testing.T) {
	svc := NewService(kv.NewMemory(), payroll.DefaultRates())
	ctx := context.Background()

	if _, err := svc.Save(ctx, Input{Rates: &payroll.RatesInput{NSSFPercent: float(-1)}}); !errors.Is(err, payroll.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	pin := "x"
	if _, err := svc.Save(ctx, Input{PIN: &pin}); !errors.Is(err, ErrInvalidEmployerPIN) {
		t.Fatalf("expected invalid employer PIN, got %v", err)
	}

	saved, err := svc.Save(ctx, Input{Rates: &payroll.RatesInput{SHIFPercent: float(3)}})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	saved, err = svc.Save(ctx, Input{Rates: &payroll.RatesInput{AHLPercent: float(2)}})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.Rates.SHIFPercent != 3 || saved.Rates.AHLPercent != 2 {
		t.Fatalf("expected partial saves to accumulate, got %+v", saved.Rates)
	}

	reset, err := svc.ResetRates(ctx)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if reset.Rates.SHIFPercent != 2.75 || reset.Rates.AHLPercent != 1.5 {
		t.Fatalf("expected default rates after reset, got %+v", reset.Rates)
	}
}

func TestRatesKeepsConfiguredBands(t *testing.T) {
	defaults := payroll.DefaultRates()
	defaults.Bands = []payroll.Band{{Upper: 0, Rate: 0.2}}
	svc := NewService(kv.NewMemory(), defaults)
	rates, err := svc.Rates(context.Background())
	if err != nil {
		t.Fatalf("rates: %v", err)
	}
	if len(rates.Bands) != 1 || rates.Bands[0].Rate != 0.2 {
		t.Fatalf("expected configured bands, got %+v", rates.Bands)
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	svc := NewService(kv.NewMemory(), payroll.DefaultRates())
	ctx := context.Background()
	name := "Acme"
	saved, err := svc.Save(ctx, Input{Name: &name, Rates: &payroll.RatesInput{SHIFPercent: float(3)}})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	other := NewService(kv.NewMemory(), payroll.DefaultRates())
	if err := other.Restore(ctx, ToInput(saved)); err != nil {
		t.Fatalf("restore: %v", err)
	}
	got, _ := other.Get(ctx)
	if got.Name != "Acme" || got.Rates.SHIFPercent != 3 || got.Rates.NSSFPercent != 6 {
		t.Fatalf("unexpected restored settings %+v", got)
	}
	if err := other.Restore(ctx, Input{Rates: &payroll.RatesInput{AHLPercent: float(-1)}}); err == nil {
		t.Fatal("expected negative rate to be rejected")
	}
}
