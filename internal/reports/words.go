package reports

import (
	"math"
	"strings"
)

var (
	ones  = []string{"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine"}
	teens = []string{"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen", "Seventeen", "Eighteen", "Nineteen"}
	tens  = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}
)

var scales = []struct {
	size int64
	name string
}{
	{1_000_000_000, "Billion"},
	{1_000_000, "Million"},
	{1_000, "Thousand"},
}

// AmountInWords spells out the whole-shilling part of an amount in the
// style printed on payslips: "Thirty Nine Thousand Six Hundred and
// Seventeen Shillings Only".
func AmountInWords(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "Zero Shillings"
	}
	negative := amount < 0
	abs := math.Abs(amount)
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	var n int64 = math.MaxInt64
	if abs < float64(math.MaxInt64) {
		n = int64(math.Floor(abs))
	}
	if n == 0 {
		return "Zero Shillings"
	}
	words := strings.Join(spell(n), " ") + " Shillings Only"
	if negative {
		return "Minus " + words
	}
	return words
}

func spell(n int64) []string {
	var parts []string
	for _, scale := range scales {
		if n >= scale.size {
			parts = append(parts, spell(n/scale.size)...)
			parts = append(parts, scale.name)
			n %= scale.size
		}
	}
	if n > 0 {
		parts = append(parts, hundreds(int(n)))
	}
	return parts
}

func hundreds(n int) string {
	var b strings.Builder
	if n >= 100 {
		b.WriteString(ones[n/100] + " Hundred")
		n %= 100
		if n > 0 {
			b.WriteString(" and ")
		}
	}
	switch {
	case n >= 20:
		b.WriteString(tens[n/10])
		if n%10 > 0 {
			b.WriteString(" " + ones[n%10])
		}
	case n >= 10:
		b.WriteString(teens[n-10])
	case n > 0:
		b.WriteString(ones[n])
	}
	return b.String()
}
