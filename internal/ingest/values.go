package ingest

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// noValueTokens are cell texts that brokerage and vendor exports use for "no data".
var noValueTokens = map[string]struct{}{
	"":       {},
	"-":      {},
	"--":     {},
	"\u2014": {},
	"n/a":    {},
	"na":     {},
	"nm":     {},
}

var (
	hundred   = decimal.NewFromInt(100)
	maxBigInt = decimal.NewFromInt(math.MaxInt64)
	minBigInt = decimal.NewFromInt(math.MinInt64)
)

// parseDecimal strips currency decoration from a cell and parses what is left.
// "(123.45)" is negative; every character outside [0-9.-] is dropped first.
func parseDecimal(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if _, ok := noValueTokens[strings.ToLower(s)]; ok {
		return decimal.Zero, false
	}

	negative := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")

	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" || cleaned == "." || cleaned == "-" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	if negative && d.IsPositive() {
		d = d.Neg()
	}
	return d, true
}

// ParseNumber parses currency or plain numeric text such as "$1,234.56" or "(12.00)".
// Values too large for a float64 yield no value.
func ParseNumber(raw string) (float64, bool) {
	d, ok := parseDecimal(raw)
	if !ok {
		return 0, false
	}
	return FiniteFloat(d.InexactFloat64())
}

// ParsePercent parses "1.37%" style text into a decimal fraction (0.0137).
func ParsePercent(raw string) (float64, bool) {
	d, ok := parseDecimal(raw)
	if !ok {
		return 0, false
	}
	return FiniteFloat(d.Div(hundred).InexactFloat64())
}

// ParseBigInt parses integer text bounded to the signed 64-bit range.
// Exponent notation ("7.0790813e+07") is accepted; fractions are truncated.
// NaN, Infinity and out-of-range values yield no value.
func ParseBigInt(raw string) (int64, bool) {
	s := strings.TrimSpace(raw)
	d, err := decimal.NewFromString(s)
	if err != nil {
		var ok bool
		if d, ok = parseDecimal(s); !ok {
			return 0, false
		}
	}
	return boundedInt(d)
}

func boundedInt(d decimal.Decimal) (int64, bool) {
	d = d.Truncate(0)
	if d.GreaterThan(maxBigInt) || d.LessThan(minBigInt) {
		return 0, false
	}
	return d.IntPart(), true
}

// FiniteFloat passes through finite values and reports NaN/±Inf as no value.
func FiniteFloat(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// OptFloat turns a (value, ok) result into a nullable column value.
func OptFloat(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}

// OptInt is OptFloat for integer columns.
func OptInt(v int64, ok bool) *int64 {
	if !ok {
		return nil
	}
	return &v
}
