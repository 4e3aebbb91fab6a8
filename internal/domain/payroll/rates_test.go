package payroll

import (
	"errors"
	"testing"
)

func TestResolveReportsMissingFields(t *testing.T) {
	shif := 2.75
	rates, missing := RatesInput{SHIFPercent: &shif}.Resolve(nil)
	if rates.SHIFPercent != 2.75 || rates.NSSFPercent != 0 || rates.PersonalRelief != 0 {
		t.Fatalf("expected absent fields to default to zero, got %+v", rates)
	}
	if len(missing) != 6 || missing[0] != "ahl" {
		t.Fatalf("expected six missing names starting with ahl, got %v", missing)
	}
	r := ComputeMonthly(Input{Basic: 50000}, rates)
	if r.NSSF != 0 || r.AHL != 0 || r.Relief != 0 {
		t.Fatalf("expected zero-rate deductions, got %+v", r)
	}
}

func TestParseRatesYAML(t *testing.T) {
	doc := []byte(`
version: 1
rates:
  shif: 3
  personalRelief: 2500
payeBands:
  - upper: 20000
    rate: 0.1
  - upper: 0
    rate: 0.3
`)
	rates, err := ParseRatesYAML(doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rates.SHIFPercent != 3 || rates.AHLPercent != 1.5 || rates.PersonalRelief != 2500 {
		t.Fatalf("expected file values over defaults, got %+v", rates)
	}
	if len(rates.Bands) != 2 || rates.Bands[0].Upper != 20000 {
		t.Fatalf("unexpected bands %+v", rates.Bands)
	}
	if got := TaxCharged(30000, rates.Bands); got != 5000 {
		t.Fatalf("expected 5000 under file bands, got %v", got)
	}
}

func TestParseRatesYAMLRejectsBadFiles(t *testing.T) {
	cases := map[string]string{
		"version":   "version: 2\n",
		"unbounded": "version: 1\npayeBands:\n  - upper: 100\n    rate: 0.1\n",
		"order":     "version: 1\npayeBands:\n  - upper: 100\n    rate: 0.1\n  - upper: 50\n    rate: 0.2\n  - upper: 0\n    rate: 0.3\n",
		"negative":  "version: 1\nrates:\n  nssf: -2\n",
	}
	for name, doc := range cases {
		if _, err := ParseRatesYAML([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	_, err := ParseRatesYAML([]byte(cases["order"]))
	if !errors.Is(err, ErrInvalidBands) {
		t.Fatalf("expected ErrInvalidBands, got %v", err)
	}
}

func TestExampleRatesFileMatchesDefaults(t *testing.T) {
	rates, err := LoadRatesFile("../../../configs/rates.example.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	r := ComputeMonthly(Input{Basic: 50000}, rates)
	if r.PAYE != 6098 || r.Net != 39617 {
		t.Fatalf("expected example file to reproduce defaults, got paye %v net %v", r.PAYE, r.Net)
	}
}
