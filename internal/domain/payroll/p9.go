package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// AggregateAnnual folds twelve months of stored results into a P9 card.
// Months without a record count as zero pay; their reliefs still come
// from rates so the annual relief totals stay complete. Tax is recomputed
// from gross pay with the rates' bands rather than copied from the record.
func AggregateAnnual(employeeID string, year int, lookup Lookup, rates Rates) AnnualP9 {
	rates = sanitizeRates(rates)
	bands := rates.bands()

	card := AnnualP9{EmployeeID: employeeID, Year: year, Months: make([]P9Month, 0, 12)}
	var totals p9Sums
	for m := time.January; m <= time.December; m++ {
		record, ok := Result{}, false
		if lookup != nil {
			record, ok = lookup(Key{Year: year, Month: m, EmployeeID: employeeID})
		}
		if !ok {
			record = Result{Relief: rates.PersonalRelief, InsRelief: rates.InsuranceRelief}
		}
		row := p9Row(record, rates, bands)
		totals.add(row)
		card.Months = append(card.Months, P9Month{Month: m.String(), P9Figures: row.figures()})
	}
	card.Totals = totals.figures()
	card.AverageMonthlyGross = f64(roundHalfUp(totals.gross.Div(decimal.NewFromInt(12))))
	if totals.taxablePay.IsPositive() {
		rate := totals.paye.Div(totals.taxablePay).Mul(decimal.NewFromInt(100))
		card.EffectiveTaxRate = f64(rate.Round(1))
	}
	return card
}

type p9Sums struct {
	basic, benefits, quarters, gross decimal.Decimal
	nssf, shif, housingLevy          decimal.Decimal
	totalStatutory, e1, e2, e3       decimal.Decimal
	taxablePay, taxCharged           decimal.Decimal
	personalRelief, insuranceRelief  decimal.Decimal
	paye                             decimal.Decimal
}

func p9Row(record Result, rates Rates, bands []Band) p9Sums {
	basic := dec(coerceAmount(record.Basic))
	benefits := dec(coerceAmount(record.Benefits))
	quarters := dec(coerceAmount(record.Quarters))
	gross := basic.Add(benefits).Add(quarters)
	nssf := dec(record.NSSF)
	shif := dec(record.SHIF)
	ahl := dec(record.AHL)
	e3 := shif.Add(ahl)
	statutory := nssf.Add(e3)
	taxable := decimal.Max(zero, gross.Sub(statutory))
	taxCharged := roundHalfUp(taxOnBands(taxable, bands))

	personalRelief := record.Relief
	if personalRelief == 0 {
		personalRelief = rates.PersonalRelief
	}
	insuranceRelief := record.InsRelief
	if insuranceRelief == 0 {
		insuranceRelief = rates.InsuranceRelief
	}
	pr := dec(personalRelief)
	ir := dec(insuranceRelief)
	paye := decimal.Max(zero, roundHalfUp(taxCharged.Sub(pr).Sub(ir)))

	return p9Sums{
		basic:           basic,
		benefits:        benefits,
		quarters:        quarters,
		gross:           gross,
		nssf:            nssf,
		shif:            shif,
		housingLevy:     ahl,
		totalStatutory:  statutory,
		e1:              roundHalfUp(gross.Mul(decimal.NewFromFloat(E1Rate))),
		e2:              nssf,
		e3:              e3,
		taxablePay:      taxable,
		taxCharged:      taxCharged,
		personalRelief:  pr,
		insuranceRelief: ir,
		paye:            paye,
	}
}

func (s *p9Sums) add(o p9Sums) {
	s.basic = s.basic.Add(o.basic)
	s.benefits = s.benefits.Add(o.benefits)
	s.quarters = s.quarters.Add(o.quarters)
	s.gross = s.gross.Add(o.gross)
	s.nssf = s.nssf.Add(o.nssf)
	s.shif = s.shif.Add(o.shif)
	s.housingLevy = s.housingLevy.Add(o.housingLevy)
	s.totalStatutory = s.totalStatutory.Add(o.totalStatutory)
	s.e1 = s.e1.Add(o.e1)
	s.e2 = s.e2.Add(o.e2)
	s.e3 = s.e3.Add(o.e3)
	s.taxablePay = s.taxablePay.Add(o.taxablePay)
	s.taxCharged = s.taxCharged.Add(o.taxCharged)
	s.personalRelief = s.personalRelief.Add(o.personalRelief)
	s.insuranceRelief = s.insuranceRelief.Add(o.insuranceRelief)
	s.paye = s.paye.Add(o.paye)
}

func (s p9Sums) figures() P9Figures {
	return P9Figures{
		Basic:           f64(s.basic),
		Benefits:        f64(s.benefits),
		Quarters:        f64(s.quarters),
		Gross:           f64(s.gross),
		NSSF:            f64(s.nssf),
		SHIF:            f64(s.shif),
		HousingLevy:     f64(s.housingLevy),
		TotalStatutory:  f64(s.totalStatutory),
		E1:              f64(s.e1),
		E2:              f64(s.e2),
		E3:              f64(s.e3),
		TaxablePay:      f64(s.taxablePay),
		TaxCharged:      f64(s.taxCharged),
		PersonalRelief:  f64(s.personalRelief),
		InsuranceRelief: f64(s.insuranceRelief),
		PAYE:            f64(s.paye),
	}
}

// LookupMap adapts a key-indexed map to a Lookup.
func LookupMap(records map[Key]Result) Lookup {
	return func(k Key) (Result, bool) {
		r, ok := records[k]
		return r, ok
	}
}
