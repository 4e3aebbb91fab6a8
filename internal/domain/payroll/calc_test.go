package payroll

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func float(v float64) *float64 { return &v }

func TestComputeMonthlyReferenceScenario(t *testing.T) {
	r := ComputeMonthly(Input{Basic: 50000}, DefaultRates())

	checks := []struct {
		name      string
		got, want float64
	}{
		{"shif", r.SHIF, 1375},
		{"ahl", r.AHL, 750},
		{"nssf", r.NSSF, 2160},
		{"taxable", r.Taxable, 45715},
		{"taxCharged", r.TaxCharged, 8498},
		{"paye", r.PAYE, 6098},
		{"net", r.Net, 39617},
		{"gross", r.Gross, 50000},
		{"totalDeductions", r.TotalDeductions, 10383},
		{"relief", r.Relief, 2400},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Fatalf("expected %s %v, got %v", c.name, c.want, c.got)
		}
	}
	if len(r.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", r.Warnings)
	}
	if r.CalculatedAt != nil {
		t.Fatal("expected core result without timestamp")
	}
}

func TestTaxChargedBandBoundaries(t *testing.T) {
	cases := []struct {
		taxable float64
		want    float64
	}{
		{-100, 0},
		{0, 0},
		{24000, 2400},
		{32333, 4483.25},
		{50000, 9783.35},
	}
	for _, tc := range cases {
		if got := TaxCharged(tc.taxable, nil); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("taxable %v: expected %v, got %v", tc.taxable, tc.want, got)
		}
	}
	if got := Round(TaxCharged(32333, nil)); got != 4483 {
		t.Fatalf("expected rounded 4483, got %v", got)
	}
}

func TestComputeMonthlyNSSFCap(t *testing.T) {
	r := ComputeMonthly(Input{Basic: 36000}, DefaultRates())
	if r.NSSF != 2160 {
		t.Fatalf("expected NSSF at cap boundary 2160, got %v", r.NSSF)
	}
	r = ComputeMonthly(Input{Basic: 1000000}, DefaultRates())
	if r.NSSF != 2160 {
		t.Fatalf("expected capped NSSF, got %v", r.NSSF)
	}
	r = ComputeMonthly(Input{Basic: 20000}, DefaultRates())
	if r.NSSF != 1200 {
		t.Fatalf("expected 6%% NSSF below cap, got %v", r.NSSF)
	}
}

func TestComputeMonthlySuppliedNSSFOverrides(t *testing.T) {
	r := ComputeMonthly(Input{Basic: 50000, SuppliedNSSF: float(1080)}, DefaultRates())
	if r.NSSF != 1080 || !r.NSSFSupplied {
		t.Fatalf("expected supplied NSSF 1080, got %v", r.NSSF)
	}
	if r.Taxable != 50000-1080-1375-750 {
		t.Fatalf("expected taxable to follow supplied NSSF, got %v", r.Taxable)
	}

	r = ComputeMonthly(Input{Basic: 50000, SuppliedNSSF: float(5000)}, DefaultRates())
	if r.NSSF != 5000 {
		t.Fatalf("expected supplied NSSF uncapped, got %v", r.NSSF)
	}
	if len(r.Warnings) != 1 || r.Warnings[0] != WarningNSSFAboveCap {
		t.Fatalf("expected above-cap warning, got %v", r.Warnings)
	}

	r = ComputeMonthly(Input{Basic: 50000, SuppliedNSSF: float(0)}, DefaultRates())
	if r.NSSF != 2160 || r.NSSFSupplied {
		t.Fatalf("expected zero supplied NSSF to fall back to derived, got %v", r.NSSF)
	}
}

func TestComputeMonthlyLowIncomeOwesNoPAYE(t *testing.T) {
	r := ComputeMonthly(Input{Basic: 15000}, DefaultRates())
	if r.PAYE != 0 {
		t.Fatalf("expected relief to cover tax, got %v", r.PAYE)
	}
	if r.Net != r.Basic-r.SHIF-r.AHL-r.NSSF {
		t.Fatalf("unexpected net %v", r.Net)
	}
}

func TestComputeMonthlyCoercesBadBasic(t *testing.T) {
	for _, basic := range []float64{math.NaN(), math.Inf(1), -500} {
		r := ComputeMonthly(Input{Basic: basic}, DefaultRates())
		if r.Basic != 0 || r.PAYE != 0 || r.Net != 0 || r.NSSF != 0 {
			t.Fatalf("expected zero result for %v, got %+v", basic, r)
		}
	}
}

func TestComputeMonthlyIsDeterministic(t *testing.T) {
	in := Input{Basic: 87654.5, Benefits: float(1200)}
	a, _ := json.Marshal(ComputeMonthly(in, DefaultRates()))
	b, _ := json.Marshal(ComputeMonthly(in, DefaultRates()))
	if !bytes.Equal(a, b) {
		t.Fatalf("expected identical results, got %s and %s", a, b)
	}
}

func TestComputeMonthlyInvariants(t *testing.T) {
	prevPAYE := -1.0
	for basic := 0.0; basic <= 300000; basic += 1370 {
		r := ComputeMonthly(Input{Basic: basic}, DefaultRates())
		if r.PAYE < 0 || r.NSSF < 0 || r.SHIF < 0 || r.AHL < 0 {
			t.Fatalf("basic %v: negative deduction %+v", basic, r)
		}
		if r.NSSF > NSSFCapAmount {
			t.Fatalf("basic %v: NSSF %v above cap", basic, r.NSSF)
		}
		if r.Net > r.Gross {
			t.Fatalf("basic %v: net %v above gross %v", basic, r.Net, r.Gross)
		}
		for _, v := range []float64{r.SHIF, r.AHL, r.NSSF, r.TaxCharged, r.PAYE} {
			if v != math.Trunc(v) {
				t.Fatalf("basic %v: expected whole shillings, got %v", basic, v)
			}
		}
		if r.PAYE < prevPAYE {
			t.Fatalf("basic %v: PAYE decreased from %v to %v", basic, prevPAYE, r.PAYE)
		}
		prevPAYE = r.PAYE
	}
}

func TestComputeMonthlyFlagsNegativeNet(t *testing.T) {
	r := ComputeMonthly(Input{Basic: 10000, SuppliedNSSF: float(20000)}, DefaultRates())
	if r.Net >= 0 {
		t.Fatalf("expected negative net, got %v", r.Net)
	}
	found := false
	for _, w := range r.Warnings {
		if w == WarningNegativeNet {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %s warning, got %v", WarningNegativeNet, r.Warnings)
	}
}

func TestComputeMonthlyBenefitsAndQuarters(t *testing.T) {
	rates := DefaultRates()
	rates.Benefits = 3000
	r := ComputeMonthly(Input{Basic: 50000, Quarters: float(2000)}, rates)
	if r.Benefits != 3000 || r.Quarters != 2000 || r.Gross != 55000 {
		t.Fatalf("unexpected gross composition %+v", r)
	}
	if r.Taxable != 45715+5000 {
		t.Fatalf("expected benefits and quarters in taxable pay, got %v", r.Taxable)
	}
	if r.Net != 50000-r.TotalDeductions {
		t.Fatalf("expected net from cash basic, got %v", r.Net)
	}
}

func TestValidateInput(t *testing.T) {
	if err := ValidateInput(Input{Basic: 1}); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
	bad := []Input{
		{Basic: -1},
		{Basic: math.NaN()},
		{Basic: 1, SuppliedNSSF: float(-5)},
		{Basic: 1, Benefits: float(math.Inf(1))},
	}
	for _, in := range bad {
		err := ValidateInput(in)
		if err == nil {
			t.Fatalf("expected error for %+v", in)
		}
		var amountErr *AmountError
		if !errors.As(err, &amountErr) || !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("expected AmountError, got %T", err)
		}
	}
}
