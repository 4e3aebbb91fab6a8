// Package reports renders payslips and P9 cards as PDF and CSV.
package reports

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatNumber groups thousands and shows decimals only when present.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	if v == math.Trunc(v) {
		return printer.Sprintf("%d", int64(v))
	}
	return printer.Sprintf("%.2f", v)
}

// FormatKES renders an amount as Kenyan shillings, e.g. "KES 39,617".
func FormatKES(v float64) string {
	if v < 0 {
		return "-KES " + FormatNumber(-v)
	}
	return "KES " + FormatNumber(v)
}

func safeFileName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "employee"
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "employee"
	}
	return b.String()
}
