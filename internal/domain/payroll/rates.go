package payroll

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultBands returns the monthly KRA PAYE bands.
func DefaultBands() []Band {
	return []Band{
		{Upper: 24000, Rate: 0.10},
		{Upper: 32333, Rate: 0.25},
		{Upper: 0, Rate: 0.30},
	}
}

func DefaultRates() Rates {
	return Rates{
		SHIFPercent:     DefaultSHIFPercent,
		AHLPercent:      DefaultAHLPercent,
		NSSFPercent:     DefaultNSSFPercent,
		PersonalRelief:  DefaultPersonalRelief,
		InsuranceRelief: DefaultInsuranceRelief,
		NSSFCap:         NSSFCapAmount,
		Bands:           DefaultBands(),
	}
}

// Resolve turns a partial rates input into Rates taxed on bands. Absent
// fields become zero and are reported by their JSON name so callers can
// surface a missing-rate warning. Empty bands fall back to the statutory
// schedule.
func (in RatesInput) Resolve(bands []Band) (Rates, []string) {
	var missing []string
	pick := func(name string, v *float64) float64 {
		if v == nil {
			missing = append(missing, name)
			return 0
		}
		return *v
	}
	rates := Rates{
		SHIFPercent:     pick("shif", in.SHIFPercent),
		AHLPercent:      pick("ahl", in.AHLPercent),
		NSSFPercent:     pick("nssf", in.NSSFPercent),
		PersonalRelief:  pick("personalRelief", in.PersonalRelief),
		InsuranceRelief: pick("insRelief", in.InsuranceRelief),
		Benefits:        pick("benefits", in.Benefits),
		Quarters:        pick("quarters", in.Quarters),
		NSSFCap:         NSSFCapAmount,
		Bands:           bands,
	}
	if len(rates.Bands) == 0 {
		rates.Bands = DefaultBands()
	}
	return rates, missing
}

// Merge overlays the fields set in the input on top of base.
func (in RatesInput) Merge(base Rates) Rates {
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&base.SHIFPercent, in.SHIFPercent)
	set(&base.AHLPercent, in.AHLPercent)
	set(&base.NSSFPercent, in.NSSFPercent)
	set(&base.PersonalRelief, in.PersonalRelief)
	set(&base.InsuranceRelief, in.InsuranceRelief)
	set(&base.Benefits, in.Benefits)
	set(&base.Quarters, in.Quarters)
	return base
}

// Validate rejects negative or non-finite rate values.
func (r Rates) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"shif", r.SHIFPercent},
		{"ahl", r.AHLPercent},
		{"nssf", r.NSSFPercent},
		{"personalRelief", r.PersonalRelief},
		{"insRelief", r.InsuranceRelief},
		{"benefits", r.Benefits},
		{"quarters", r.Quarters},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", ErrInvalidAmount, f.name)
		}
	}
	return nil
}

func (r Rates) nssfCap() float64 {
	if r.NSSFCap > 0 {
		return r.NSSFCap
	}
	return NSSFCapAmount
}

func (r Rates) bands() []Band {
	if len(r.Bands) > 0 {
		return r.Bands
	}
	return DefaultBands()
}

func validateBands(bands []Band) error {
	if len(bands) == 0 {
		return fmt.Errorf("%w: no bands", ErrInvalidBands)
	}
	prev := 0.0
	for i, b := range bands {
		if b.Rate < 0 || b.Rate > 1 {
			return fmt.Errorf("%w: band %d rate must be between 0 and 1", ErrInvalidBands, i+1)
		}
		last := i == len(bands)-1
		if last {
			if b.Upper != 0 {
				return fmt.Errorf("%w: last band must be unbounded", ErrInvalidBands)
			}
			continue
		}
		if b.Upper <= prev {
			return fmt.Errorf("%w: band %d upper bound must increase", ErrInvalidBands, i+1)
		}
		prev = b.Upper
	}
	return nil
}

// RatesFile is the on-disk YAML form of the default rates and PAYE bands.
type RatesFile struct {
	Version int        `yaml:"version"`
	Rates   RatesInput `yaml:"rates"`
	Bands   []Band     `yaml:"payeBands"`
}

func ParseRatesYAML(b []byte) (Rates, error) {
	var f RatesFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Rates{}, err
	}
	if f.Version != RatesFileVersion {
		return Rates{}, fmt.Errorf("rates file: unsupported version %d", f.Version)
	}
	rates := f.Rates.Merge(DefaultRates())
	if len(f.Bands) > 0 {
		if err := validateBands(f.Bands); err != nil {
			return Rates{}, err
		}
		rates.Bands = f.Bands
	}
	if err := rates.Validate(); err != nil {
		return Rates{}, err
	}
	return rates, nil
}

func LoadRatesFile(path string) (Rates, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Rates{}, err
	}
	return ParseRatesYAML(b)
}
