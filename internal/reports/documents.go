package reports

import (
	"fmt"
	"time"

	"p9ify/internal/domain/employees"
	"p9ify/internal/domain/payroll"
	"p9ify/internal/domain/settings"
)

// Payslip is everything printed on one monthly payslip.
type Payslip struct {
	Employer    settings.Settings
	Employee    employees.Employee
	Key         payroll.Key
	Result      payroll.Result
	GeneratedAt time.Time
}

// Number is the payslip reference, "{employee}-{year}-{month}".
func (p Payslip) Number() string {
	return fmt.Sprintf("%s-%d-%d", p.Employee.ID, p.Key.Year, int(p.Key.Month))
}

func (p Payslip) FileName() string {
	return fmt.Sprintf("Payslip-%s-%s-%d.pdf", safeFileName(p.Employee.Name), p.Key.Month, p.Key.Year)
}

// P9Card is an annual tax deduction card ready for rendering.
type P9Card struct {
	Employer    settings.Settings
	Employee    employees.Employee
	Card        payroll.AnnualP9
	GeneratedAt time.Time
}

func (c P9Card) FileName(ext string) string {
	return fmt.Sprintf("P9-%s-%d.%s", safeFileName(c.Employee.Name), c.Card.Year, ext)
}

// EffectiveRate is annual PAYE as a percentage of taxable pay.
func (c P9Card) EffectiveRate() float64 {
	return c.Card.EffectiveTaxRate
}
