package payroll

import (
	"math"

	"github.com/shopspring/decimal"
)

var (
	zero    = decimal.Zero
	half    = decimal.NewFromFloat(0.5)
	hundred = decimal.NewFromInt(100)
)

// ComputeMonthly derives one month of statutory deductions from gross
// inputs. It is pure: no clock, no storage, no logging. Negative or
// non-finite amounts are treated as zero.
func ComputeMonthly(in Input, rates Rates) Result {
	rates = sanitizeRates(rates)

	basic := dec(coerceAmount(in.Basic))
	benefits := dec(rates.Benefits)
	if in.Benefits != nil {
		benefits = dec(coerceAmount(*in.Benefits))
	}
	quarters := dec(rates.Quarters)
	if in.Quarters != nil {
		quarters = dec(coerceAmount(*in.Quarters))
	}

	shif := roundHalfUp(percentOf(basic, rates.SHIFPercent))
	ahl := roundHalfUp(percentOf(basic, rates.AHLPercent))

	var nssf decimal.Decimal
	supplied := false
	if in.SuppliedNSSF != nil && coerceAmount(*in.SuppliedNSSF) != 0 {
		nssf = roundHalfUp(dec(coerceAmount(*in.SuppliedNSSF)))
		supplied = true
	} else {
		nssf = roundHalfUp(decimal.Min(percentOf(basic, rates.NSSFPercent), dec(rates.nssfCap())))
	}

	taxable := basic.Sub(nssf).Sub(shif).Sub(ahl).Add(benefits).Add(quarters)
	taxCharged := roundHalfUp(taxOnBands(taxable, rates.bands()))
	relief := dec(rates.PersonalRelief)
	insRelief := dec(rates.InsuranceRelief)
	paye := decimal.Max(zero, roundHalfUp(taxCharged.Sub(relief).Sub(insRelief)))

	deductions := shif.Add(ahl).Add(nssf).Add(paye)
	net := basic.Sub(deductions)

	result := Result{
		Basic:           f64(basic),
		Benefits:        f64(benefits),
		Quarters:        f64(quarters),
		Gross:           f64(basic.Add(benefits).Add(quarters)),
		SHIF:            f64(shif),
		AHL:             f64(ahl),
		NSSF:            f64(nssf),
		Taxable:         f64(taxable),
		TaxCharged:      f64(taxCharged),
		Relief:          f64(relief),
		InsRelief:       f64(insRelief),
		PAYE:            f64(paye),
		Net:             f64(net),
		TotalDeductions: f64(deductions),
		NSSFSupplied:    supplied,
	}
	if supplied && nssf.GreaterThan(dec(rates.nssfCap())) {
		result.Warnings = append(result.Warnings, WarningNSSFAboveCap)
	}
	if net.IsNegative() {
		result.Warnings = append(result.Warnings, WarningNegativeNet)
	}
	return result
}

// TaxCharged applies the progressive bands to a monthly taxable amount,
// before rounding and reliefs. Non-positive taxable pay owes nothing.
func TaxCharged(taxable float64, bands []Band) float64 {
	if len(bands) == 0 {
		bands = DefaultBands()
	}
	return f64(taxOnBands(dec(coerceAmount(taxable)), bands))
}

func taxOnBands(taxable decimal.Decimal, bands []Band) decimal.Decimal {
	if !taxable.IsPositive() {
		return zero
	}
	tax := zero
	lower := zero
	for _, band := range bands {
		rate := decimal.NewFromFloat(band.Rate)
		if band.Upper <= 0 {
			return tax.Add(taxable.Sub(lower).Mul(rate))
		}
		upper := decimal.NewFromFloat(band.Upper)
		if taxable.LessThanOrEqual(upper) {
			return tax.Add(taxable.Sub(lower).Mul(rate))
		}
		tax = tax.Add(upper.Sub(lower).Mul(rate))
		lower = upper
	}
	return tax
}

// roundHalfUp rounds to whole shillings with halves going up, including
// for negative values (-2.5 becomes -2).
func roundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Add(half).Floor()
}

// Round is the float form of the rounding rule used for every currency field.
func Round(v float64) float64 {
	return f64(roundHalfUp(dec(v)))
}

func percentOf(amount decimal.Decimal, percent float64) decimal.Decimal {
	return amount.Mul(decimal.NewFromFloat(percent)).Div(hundred)
}

func coerceAmount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func sanitizeRates(r Rates) Rates {
	r.SHIFPercent = coerceAmount(r.SHIFPercent)
	r.AHLPercent = coerceAmount(r.AHLPercent)
	r.NSSFPercent = coerceAmount(r.NSSFPercent)
	r.PersonalRelief = coerceAmount(r.PersonalRelief)
	r.InsuranceRelief = coerceAmount(r.InsuranceRelief)
	r.Benefits = coerceAmount(r.Benefits)
	r.Quarters = coerceAmount(r.Quarters)
	return r
}

// ValidateInput is the boundary check that rejects what ComputeMonthly
// would silently coerce.
func ValidateInput(in Input) error {
	check := func(name string, v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return &AmountError{Field: name}
		}
		return nil
	}
	if err := check("basic", in.Basic); err != nil {
		return err
	}
	if in.SuppliedNSSF != nil {
		if err := check("nssf", *in.SuppliedNSSF); err != nil {
			return err
		}
	}
	if in.Benefits != nil {
		if err := check("benefits", *in.Benefits); err != nil {
			return err
		}
	}
	if in.Quarters != nil {
		if err := check("quarters", *in.Quarters); err != nil {
			return err
		}
	}
	return nil
}

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func f64(d decimal.Decimal) float64 {
	v, _ := d.Float64()
	return v
}
