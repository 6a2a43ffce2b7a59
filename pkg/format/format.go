// Package format renders numeric and date values the way the hotel's reports
// display them: Brazilian grouping and decimal separators, DD/MM/YYYY dates.
// Everything here is a pure function; aggregation code never imports it.
package format

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// NotAvailable is rendered wherever a value is absent.
const NotAvailable = "N/A"

const dateLayout = "02/01/2006"

// Currency formats a monetary value as "R$ 1.234.567,89".
func Currency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable
	}
	neg := v < 0
	cents := int64(math.Round(math.Abs(v) * 100))
	whole := cents / 100
	frac := cents % 100

	out := fmt.Sprintf("R$ %s,%02d", groupThousands(whole), frac)
	if neg {
		out = "-" + out
	}
	return out
}

// Number formats a value as a grouped integer, "1.234.567". Fractions are
// truncated, matching how the reports show counts.
func Number(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable
	}
	n := int64(v)
	if n < 0 {
		return "-" + groupThousands(-n)
	}
	return groupThousands(n)
}

// Percent formats a percentage with one decimal and a comma separator: "12,5%".
func Percent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable
	}
	return strings.Replace(fmt.Sprintf("%.1f%%", v), ".", ",", 1)
}

// Date renders a time in the locale layout. The zero time renders as absent.
func Date(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}
	return t.Format(dateLayout)
}

// NormalizeDate coerces a date string to DD/MM/YYYY. Strings already in that
// layout pass through; ISO dates (YYYY-MM-DD) are converted; anything else is
// returned unchanged so the caller still has something to display.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return NotAvailable
	}
	if _, err := time.Parse(dateLayout, s); err == nil {
		return s
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format(dateLayout)
	}
	return s
}

func groupThousands(n int64) string {
	digits := fmt.Sprintf("%d", n)
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
