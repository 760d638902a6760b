package ingest

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDateToken(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2025-10-17", date(2025, 10, 17), true},
		{"Portfolio_Positions_2025-10-17.csv", date(2025, 10, 17), true},
		{"positions_2025_03_04.csv", date(2025, 3, 4), true},
		{"Portfolio_Positions_Oct-17-2025.csv", date(2025, 10, 17), true},
		{"positions jan 5 2024.csv", date(2024, 1, 5), true},
		{"Positions_DEC_31_2023.csv", date(2023, 12, 31), true},
		{"positions_2025-13-45.csv", time.Time{}, false},
		{"positions.csv", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseDateToken(tt.in)
		if ok != tt.ok {
			t.Errorf("%q: expected ok=%v, got %v", tt.in, tt.ok, ok)
			continue
		}
		if ok && !got.Equal(tt.want) {
			t.Errorf("%q: expected %s, got %s", tt.in, tt.want.Format(DateLayout), got.Format(DateLayout))
		}
	}
}

func TestResolveAsOf_Precedence(t *testing.T) {
	now := time.Date(2025, 11, 2, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		name     string
		explicit string
		filename string
		want     time.Time
		source   AsOfSource
	}{
		{"explicit wins", "2025-01-02", "Positions_2025-10-17.csv", date(2025, 1, 2), AsOfExplicit},
		{"filename over today", "", "Positions_2025-10-17.csv", date(2025, 10, 17), AsOfFilename},
		{"bad explicit falls through", "not a date", "Positions_Oct-17-2025.csv", date(2025, 10, 17), AsOfFilename},
		{"today", "", "positions.csv", date(2025, 11, 2), AsOfToday},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, source := ResolveAsOf(tt.explicit, tt.filename, now)
			if !got.Equal(tt.want) {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
			if source != tt.source {
				t.Errorf("expected source %s, got %s", tt.source, source)
			}
		})
	}
}

func TestParseISODateInName(t *testing.T) {
	if got, ok := ParseISODateInName("Top Rated Stocks 2025-09-30.xlsx"); !ok || !got.Equal(date(2025, 9, 30)) {
		t.Errorf("unexpected result %s ok=%v", got, ok)
	}
	if _, ok := ParseISODateInName("quant_2025_09_30.xlsx"); ok {
		t.Error("underscore dates are not accepted for ranking exports")
	}
}
