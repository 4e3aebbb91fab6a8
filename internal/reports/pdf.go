package reports

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"p9ify/internal/domain/payroll"
)

const dateLayout = "02/01/2006"

// RenderPayslipPDF writes an A4 portrait payslip.
func RenderPayslipPDF(w io.Writer, p Payslip) error {
	r := p.Result
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payslip "+p.Number(), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, p.Employer.Name, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, "KRA PIN: "+p.Employer.PIN, "", 1, "L", false, 0, "")
	if p.Employer.Address != "" {
		pdf.MultiCell(0, 5, p.Employer.Address, "", "L", false)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "PAYSLIP - "+p.Key.Label(), "B", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "", 10)
	left := []string{
		"Employee: " + p.Employee.Name,
		"KRA PIN: " + p.Employee.PIN,
	}
	if p.Employee.EmployeeNo != "" {
		left = append(left, "Employee ID: "+p.Employee.EmployeeNo)
	}
	if p.Employee.NationalID != "" {
		left = append(left, "National ID: "+p.Employee.NationalID)
	}
	right := []string{
		"Pay Period: " + p.Key.Label(),
		"Payment Date: " + p.GeneratedAt.Format(dateLayout),
		"Pay Slip No: " + p.Number(),
		"Status: PAID",
	}
	for i := 0; i < len(left) || i < len(right); i++ {
		l, rt := "", ""
		if i < len(left) {
			l = left[i]
		}
		if i < len(right) {
			rt = right[i]
		}
		pdf.CellFormat(95, 6, l, "", 0, "L", false, 0, "")
		pdf.CellFormat(95, 6, rt, "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	section := func(title string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetFillColor(235, 235, 235)
		pdf.CellFormat(190, 7, title, "1", 1, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 10)
	}
	line := func(label string, amount float64) {
		pdf.CellFormat(130, 6, label, "LR", 0, "L", false, 0, "")
		pdf.CellFormat(60, 6, FormatNumber(amount), "R", 1, "R", false, 0, "")
	}
	total := func(label string, amount float64) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(130, 7, label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, FormatNumber(amount), "1", 1, "R", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
	}

	section("Earnings")
	line("Basic Pay", r.Basic)
	if r.Benefits > 0 {
		line("Benefits", r.Benefits)
	}
	if r.Quarters > 0 {
		line("Quarters", r.Quarters)
	}
	gross := r.Gross
	if gross == 0 {
		gross = r.Basic + r.Benefits + r.Quarters
	}
	total("Gross Pay", gross)
	pdf.Ln(3)

	section("Deductions")
	line("PAYE (Tax)", r.PAYE)
	line("NSSF", r.NSSF)
	line("SHIF", r.SHIF)
	if r.AHL > 0 {
		line("Housing Levy", r.AHL)
	}
	deductions := r.TotalDeductions
	if deductions == 0 {
		deductions = r.PAYE + r.NSSF + r.SHIF + r.AHL
	}
	total("Total Deductions", deductions)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(130, 9, "Net Salary Payable", "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 9, FormatKES(r.Net), "1", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(190, 5, AmountInWords(r.Net), "", "L", false)
	pdf.Ln(16)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(80, 6, "Employee Signature", "T", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "", "", 0, "C", false, 0, "")
	pdf.CellFormat(80, 6, "Authorized Signature", "T", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, "This is a computer-generated payslip. No signature required for digital records.", "", 1, "C", false, 0, "")

	return pdf.Output(w)
}

var p9Columns = []struct {
	title string
	width float64
}{
	{"MONTH", 22}, {"Basic Salary", 18}, {"Benefits", 16}, {"Quarters", 16}, {"Total Gross", 19},
	{"E1 30% Gross", 18}, {"E2 NSSF", 16}, {"E3 SHIF+AHL", 18}, {"Int.", 10}, {"Retire H", 13},
	{"Taxable Pay", 19}, {"Tax Charged", 19}, {"Pers. Relief", 18}, {"Ins. Relief", 16}, {"PAYE", 19},
}

// RenderP9PDF writes an A4 landscape P9A card.
func RenderP9PDF(w io.Writer, c P9Card) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("P9 %s %d", c.Employee.Name, c.Card.Year), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "KENYA REVENUE AUTHORITY - DOMESTIC TAXES DEPARTMENT", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("P9A INCOME TAX DEDUCTION CARD - YEAR %d", c.Card.Year), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(140, 5, "Employee Name: "+c.Employee.Name, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Employer Name: "+c.Employer.Name, "", 1, "R", false, 0, "")
	pdf.CellFormat(140, 5, "Employee PIN: "+c.Employee.PIN, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Employer PIN: "+c.Employer.PIN, "", 1, "R", false, 0, "")
	idLine := ""
	if c.Employee.NationalID != "" {
		idLine = "National ID: " + c.Employee.NationalID
	}
	pdf.CellFormat(140, 5, idLine, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Date Generated: "+c.GeneratedAt.Format(dateLayout), "", 1, "R", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 7)
	pdf.SetFillColor(235, 235, 235)
	for _, col := range p9Columns {
		pdf.CellFormat(col.width, 8, col.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 7)
	for _, m := range c.Card.Months {
		p9Row(pdf, m.Month, m.P9Figures)
	}
	pdf.SetFont("Helvetica", "B", 7)
	p9Row(pdf, "TOTALS", c.Card.Totals)
	pdf.Ln(4)

	t := c.Card.Totals
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Annual Gross: %s   Taxable: %s   PAYE: %s   Effective Tax Rate: %.1f%%",
		FormatKES(t.Gross), FormatKES(t.TaxablePay), FormatKES(t.PAYE), c.EffectiveRate()), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Monthly Average Gross: %s   Tax Charged: %s",
		FormatKES(c.Card.AverageMonthlyGross), FormatKES(t.TaxCharged)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("NSSF: %s   SHIF: %s   Housing Levy: %s   Total Statutory: %s",
		FormatKES(t.NSSF), FormatKES(t.SHIF), FormatKES(t.HousingLevy), FormatKES(t.TotalStatutory)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, "E1 = 30% of gross (exemption), E2 = NSSF, E3 = SHIF + Housing Levy.", "", 1, "L", false, 0, "")

	return pdf.Output(w)
}

func p9Row(pdf *gofpdf.Fpdf, label string, f payroll.P9Figures) {
	values := []string{
		label,
		FormatNumber(f.Basic), FormatNumber(f.Benefits), FormatNumber(f.Quarters), FormatNumber(f.Gross),
		FormatNumber(f.E1), FormatNumber(f.E2), FormatNumber(f.E3), "0", "0",
		FormatNumber(f.TaxablePay), FormatNumber(f.TaxCharged), FormatNumber(f.PersonalRelief),
		FormatNumber(f.InsuranceRelief), FormatNumber(f.PAYE),
	}
	for i, col := range p9Columns {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(col.width, 6, values[i], "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}
