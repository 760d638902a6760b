package ingest

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$1,234.56", 1234.56, true},
		{"(123.45)", -123.45, true},
		{"($1,000.00)", -1000, true},
		{"+$12.34", 12.34, true},
		{"-7.5", -7.5, true},
		{"  42 ", 42, true},
		{"1.37%", 1.37, true},
		{"", 0, false},
		{"--", 0, false},
		{"—", 0, false},
		{"N/A", 0, false},
		{"n/a", 0, false},
		{"NM", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"$", 0, false},
		{".", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		assert.Equal(t, tt.ok, ok, "ok for %q", tt.in)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-12, "value for %q", tt.in)
		}
	}
}

func TestParsePercent(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1.37%", 0.0137, true},
		{"(12.5%)", -0.125, true},
		{"+0.50%", 0.005, true},
		{"-3%", -0.03, true},
		{"100", 1, true},
		{"", 0, false},
		{"--", 0, false},
		{"N/A", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParsePercent(tt.in)
		assert.Equal(t, tt.ok, ok, "ok for %q", tt.in)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-15, "value for %q", tt.in)
		}
	}
}

func TestParseBigInt_Bounds(t *testing.T) {
	rejected := []string{"NaN", "nan", "Infinity", "-Infinity", "inf", "9223372036854775808", "-9223372036854775809", "1e30", ""}
	for _, in := range rejected {
		_, ok := ParseBigInt(in)
		assert.False(t, ok, "expected %q to be rejected", in)
	}

	v, ok := ParseBigInt("9223372036854775807")
	assert.True(t, ok)
	assert.Equal(t, int64(math.MaxInt64), v)

	v, ok = ParseBigInt("-9223372036854775808")
	assert.True(t, ok)
	assert.Equal(t, int64(math.MinInt64), v)
}

func TestParseBigInt_Forms(t *testing.T) {
	tests := map[string]int64{
		"1,234":         1234,
		"7.0790813e+07": 70790813,
		"12.9":          12,
		"(15)":          -15,
	}
	for in, want := range tests {
		got, ok := ParseBigInt(in)
		assert.True(t, ok, "expected %q to parse", in)
		assert.Equal(t, want, got, "value for %q", in)
	}
}

func TestFiniteFloat(t *testing.T) {
	_, ok := FiniteFloat(math.NaN())
	assert.False(t, ok)
	_, ok = FiniteFloat(math.Inf(-1))
	assert.False(t, ok)
	v, ok := FiniteFloat(1.5)
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)
}

func TestParseNumber_OverflowIsNoValue(t *testing.T) {
	huge := "$1" + strings.Repeat("0", 400)
	_, ok := ParseNumber(huge)
	assert.False(t, ok)
	_, ok = ParsePercent(huge + "%")
	assert.False(t, ok)
	assert.Nil(t, OptFloat(ParseNumber("-" + strings.Repeat("9", 400))))

	v, ok := ParseNumber("1" + strings.Repeat("0", 300))
	assert.True(t, ok)
	assert.False(t, math.IsInf(v, 0))
}

func TestOptFloat(t *testing.T) {
	assert.Nil(t, OptFloat(ParseNumber("--")))
	p := OptFloat(ParseNumber("$5"))
	if assert.NotNil(t, p) {
		assert.Equal(t, 5.0, *p)
	}
}
