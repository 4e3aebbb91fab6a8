package reports

import (
	"encoding/csv"
	"io"
	"strconv"

	"p9ify/internal/domain/employees"
	"p9ify/internal/domain/payroll"
)

func WriteEmployeesCSV(w io.Writer, people []employees.Employee) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Name", "KRA PIN", "Employee ID", "National ID", "Date Added"}); err != nil {
		return err
	}
	for _, e := range people {
		added := ""
		if !e.CreatedAt.IsZero() {
			added = e.CreatedAt.Format(dateLayout)
		}
		if err := writer.Write([]string{e.Name, e.PIN, e.EmployeeNo, e.NationalID, added}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteRegisterCSV writes the monthly payroll register with a totals row.
func WriteRegisterCSV(w io.Writer, sheet payroll.MonthSheet) error {
	writer := csv.NewWriter(w)
	header := []string{"Employee", "KRA PIN", "Employee ID", "Basic", "Benefits", "Quarters", "Gross", "NSSF", "SHIF", "Housing Levy", "Taxable", "PAYE", "Net"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, row := range sheet.Rows {
		r := row.Record
		if err := writer.Write([]string{
			row.EmployeeName, row.PIN, row.EmployeeNo,
			amount(r.Basic), amount(r.Benefits), amount(r.Quarters), amount(r.Gross),
			amount(r.NSSF), amount(r.SHIF), amount(r.AHL), amount(r.Taxable), amount(r.PAYE), amount(r.Net),
		}); err != nil {
			return err
		}
	}
	t := sheet.Totals
	if err := writer.Write([]string{
		"TOTALS", "", "",
		amount(t.Basic), "", "", "",
		amount(t.NSSF), amount(t.SHIF), amount(t.AHL), "", amount(t.PAYE), amount(t.Net),
	}); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// WriteP9CSV writes the twelve months of a P9 card followed by totals and
// the annual averages.
func WriteP9CSV(w io.Writer, c P9Card) error {
	writer := csv.NewWriter(w)
	meta := [][]string{
		{"P9A INCOME TAX DEDUCTION CARD", strconv.Itoa(c.Card.Year)},
		{"Employer Name", c.Employer.Name},
		{"Employer PIN", c.Employer.PIN},
		{"Employee Name", c.Employee.Name},
		{"Employee PIN", c.Employee.PIN},
	}
	for _, rec := range meta {
		if err := writer.Write(rec); err != nil {
			return err
		}
	}
	if err := writer.Write([]string{
		"Month", "Basic Salary", "Benefits", "Quarters", "Total Gross",
		"E1", "E2", "E3", "Taxable Pay", "Tax Charged", "Personal Relief", "Insurance Relief", "PAYE",
	}); err != nil {
		return err
	}
	write := func(label string, f payroll.P9Figures) error {
		return writer.Write([]string{
			label, amount(f.Basic), amount(f.Benefits), amount(f.Quarters), amount(f.Gross),
			amount(f.E1), amount(f.E2), amount(f.E3), amount(f.TaxablePay), amount(f.TaxCharged),
			amount(f.PersonalRelief), amount(f.InsuranceRelief), amount(f.PAYE),
		})
	}
	for _, m := range c.Card.Months {
		if err := write(m.Month, m.P9Figures); err != nil {
			return err
		}
	}
	if err := write("TOTALS", c.Card.Totals); err != nil {
		return err
	}
	summary := [][]string{
		{"Monthly Average Gross", amount(c.Card.AverageMonthlyGross)},
		{"Effective Tax Rate (%)", strconv.FormatFloat(c.Card.EffectiveTaxRate, 'f', 1, 64)},
	}
	for _, rec := range summary {
		if err := writer.Write(rec); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// amount keeps CSV numbers machine readable: no grouping, no currency.
func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
