package payroll

import (
	"time"

	"p9ify/internal/domain/employees"
)

// Band is one PAYE bracket. Upper is the inclusive top of the band in
// monthly taxable pay; zero means unbounded and must be last.
type Band struct {
	Upper float64 `json:"upper" yaml:"upper"`
	Rate  float64 `json:"rate" yaml:"rate"`
}

// Rates is the resolved rate configuration fed to the calculator.
type Rates struct {
	SHIFPercent     float64 `json:"shif"`
	AHLPercent      float64 `json:"ahl"`
	NSSFPercent     float64 `json:"nssf"`
	PersonalRelief  float64 `json:"personalRelief"`
	InsuranceRelief float64 `json:"insRelief"`
	Benefits        float64 `json:"benefits"`
	Quarters        float64 `json:"quarters"`

	// NSSFCap and Bands fall back to NSSFCapAmount and DefaultBands when zero.
	NSSFCap float64 `json:"-"`
	Bands   []Band  `json:"-"`
}

// RatesInput is the boundary form of Rates where every field is optional.
type RatesInput struct {
	SHIFPercent     *float64 `json:"shif,omitempty" yaml:"shif"`
	AHLPercent      *float64 `json:"ahl,omitempty" yaml:"ahl"`
	NSSFPercent     *float64 `json:"nssf,omitempty" yaml:"nssf"`
	PersonalRelief  *float64 `json:"personalRelief,omitempty" yaml:"personalRelief"`
	InsuranceRelief *float64 `json:"insRelief,omitempty" yaml:"insRelief"`
	Benefits        *float64 `json:"benefits,omitempty" yaml:"benefits"`
	Quarters        *float64 `json:"quarters,omitempty" yaml:"quarters"`
}

type Input struct {
	Basic float64 `json:"basic"`
	// SuppliedNSSF, when non-nil and nonzero, replaces the derived figure.
	SuppliedNSSF *float64 `json:"nssf,omitempty"`
	// Benefits and Quarters override the configured defaults when set.
	Benefits *float64 `json:"benefits,omitempty"`
	Quarters *float64 `json:"quarters,omitempty"`
}

type Result struct {
	Basic           float64    `json:"basic"`
	Benefits        float64    `json:"benefits"`
	Quarters        float64    `json:"quarters"`
	Gross           float64    `json:"gross"`
	SHIF            float64    `json:"shif"`
	AHL             float64    `json:"ahl"`
	NSSF            float64    `json:"nssf"`
	Taxable         float64    `json:"taxable"`
	TaxCharged      float64    `json:"taxCharged"`
	Relief          float64    `json:"relief"`
	InsRelief       float64    `json:"insRelief"`
	PAYE            float64    `json:"paye"`
	Net             float64    `json:"net"`
	TotalDeductions float64    `json:"totalDeductions"`
	NSSFSupplied    bool       `json:"nssfSupplied,omitempty"`
	Warnings        []string   `json:"warnings,omitempty"`
	CalculatedAt    *time.Time `json:"calculatedAt,omitempty"`
}

// P9Figures holds the per-month columns of a P9 card; the same shape is
// used for the annual totals.
type P9Figures struct {
	Basic           float64 `json:"basic"`
	Benefits        float64 `json:"benefits"`
	Quarters        float64 `json:"quarters"`
	Gross           float64 `json:"gross"`
	NSSF            float64 `json:"nssf"`
	SHIF            float64 `json:"shif"`
	HousingLevy     float64 `json:"housingLevy"`
	TotalStatutory  float64 `json:"totalStatutory"`
	E1              float64 `json:"e1"`
	E2              float64 `json:"e2"`
	E3              float64 `json:"e3"`
	TaxablePay      float64 `json:"taxablePay"`
	TaxCharged      float64 `json:"taxCharged"`
	PersonalRelief  float64 `json:"personalRelief"`
	InsuranceRelief float64 `json:"insuranceRelief"`
	PAYE            float64 `json:"paye"`
}

type P9Month struct {
	Month string `json:"month"`
	P9Figures
}

type AnnualP9 struct {
	EmployeeID string    `json:"employeeId"`
	Year       int       `json:"year"`
	Months     []P9Month `json:"monthlyData"`
	Totals     P9Figures `json:"summary"`
	// AverageMonthlyGross is annual gross over twelve months, whole shillings.
	AverageMonthlyGross float64 `json:"averageMonthlyGross"`
	// EffectiveTaxRate is annual PAYE as a percentage of taxable pay, one
	// decimal place; zero when nothing was taxable.
	EffectiveTaxRate float64 `json:"effectiveTaxRate"`
}

// Lookup returns the stored result for a key, if any.
type Lookup func(Key) (Result, bool)

type MonthTotals struct {
	Basic float64 `json:"basic"`
	NSSF  float64 `json:"nssf"`
	SHIF  float64 `json:"shif"`
	AHL   float64 `json:"ahl"`
	PAYE  float64 `json:"paye"`
	Net   float64 `json:"net"`
}

type MonthRow struct {
	EmployeeID   string `json:"employeeId"`
	EmployeeName string `json:"employeeName"`
	EmployeeNo   string `json:"employeeNo,omitempty"`
	PIN          string `json:"pin"`
	Key          string `json:"key"`
	HasRecord    bool   `json:"hasRecord"`
	Record       Result `json:"record"`
}

type MonthSheet struct {
	Year         int         `json:"year"`
	Month        string      `json:"month"`
	Rows         []MonthRow  `json:"rows"`
	Totals       MonthTotals `json:"totals"`
	PayslipCount int         `json:"payslipCount"`
}

type PayslipSummary struct {
	Key          string  `json:"key"`
	EmployeeID   string  `json:"employeeId"`
	EmployeeName string  `json:"employee"`
	Year         int     `json:"year"`
	MonthName    string  `json:"monthName"`
	MonthNumber  int     `json:"monthNumber"`
	Label        string  `json:"month"`
	NSSFEmployee float64 `json:"nssfEmployee"`
	NSSFEmployer float64 `json:"nssfEmployer"`
	Data         Result  `json:"data"`
}

type PayslipFilter struct {
	EmployeeID string
	Year       int
}

type HistoryEntry struct {
	Key   string  `json:"key"`
	Month string  `json:"month"`
	Gross float64 `json:"gross"`
	Data  Result  `json:"data"`
}

type ExportTotals struct {
	TotalEarnings float64 `json:"totalEarnings"`
	TotalPAYE     float64 `json:"totalPAYE"`
	TotalNet      float64 `json:"totalNet"`
}

// EmployeeExport is the per-employee data download.
type EmployeeExport struct {
	Employee       employees.Employee `json:"employee"`
	PayrollHistory []HistoryEntry     `json:"payrollHistory"`
	ExportedAt     time.Time          `json:"exportedAt"`
	Totals         ExportTotals       `json:"totals"`
}
