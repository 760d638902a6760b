package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
)

var (
	BalanceHeaders      = []string{"roth balance", "balance", "portfolio value", "portfoliovalue"}
	PortfolioRetHeaders = []string{"roth", "portfolio return", "return", "portfolio_ret"}
	VOORetHeaders       = []string{"voo", "voo return", "voo_ret"}
	QQQRetHeaders       = []string{"qqq", "qqq return", "qqq_ret"}
)

// Leading markers of cash-movement rows in a performance export.
var performanceSkipPrefixes = []string{"TRANSFER", "DEPOSIT"}

var performanceDateLayouts = []string{"1/2/2006", "1/2/06", DateLayout, "1-2-06"}

// PerformanceRow is one day of portfolio value and returns. Returns are decimal fractions.
type PerformanceRow struct {
	Day            time.Time
	PortfolioValue *float64
	PortfolioRet   *float64
	VOORet         *float64
	QQQRet         *float64
}

// ParsePerformanceCSV reads a daily performance export.
func ParsePerformanceCSV(r io.Reader) ([]PerformanceRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return ParsePerformanceRecords(records)
}

// ParsePerformanceXLSX reads the same layout from the first worksheet of a workbook.
func ParsePerformanceXLSX(r io.Reader) ([]PerformanceRow, error) {
	sheet, err := ReadSheet(r, "")
	if err != nil {
		return nil, err
	}
	return ParsePerformanceRecords(sheet.Rows)
}

// ParsePerformanceRecords maps a header row plus data rows onto PerformanceRow.
// Column one carries the date. Balance falls back to column two when no balance
// header resolves; return columns must match exactly so "Roth" never binds to
// "Roth Balance".
func ParsePerformanceRecords(records [][]string) ([]PerformanceRow, error) {
	start := 0
	for start < len(records) && isBlankRecord(records[start]) {
		start++
	}
	if start >= len(records) {
		return nil, ErrEmptyFile
	}

	hs := NewHeaderSet(records[start])
	balanceCol := hs.Index(BalanceHeaders...)
	if balanceCol < 0 && len(hs.Headers()) > 1 {
		balanceCol = 1
	}
	portCol := hs.ExactIndex(PortfolioRetHeaders...)
	vooCol := hs.ExactIndex(VOORetHeaders...)
	qqqCol := hs.ExactIndex(QQQRetHeaders...)

	var rows []PerformanceRow
	for _, record := range records[start+1:] {
		day, ok := performanceDay(cell(record, 0))
		if !ok {
			continue
		}
		rows = append(rows, PerformanceRow{
			Day:            day,
			PortfolioValue: OptFloat(ParseNumber(cell(record, balanceCol))),
			PortfolioRet:   OptFloat(ParsePercent(cell(record, portCol))),
			VOORet:         OptFloat(ParsePercent(cell(record, vooCol))),
			QQQRet:         OptFloat(ParsePercent(cell(record, qqqCol))),
		})
	}
	if len(rows) == 0 {
		return nil, ErrNoUsableRows
	}
	return rows, nil
}

// performanceDay extracts the date from the first cell. The cell may carry a label
// before the date ("Mon 10/17/2025"); the last token holding '/' or '-' is used.
func performanceDay(first string) (time.Time, bool) {
	upper := strings.ToUpper(first)
	for _, p := range performanceSkipPrefixes {
		if strings.HasPrefix(upper, p) {
			return time.Time{}, false
		}
	}
	if !strings.ContainsAny(first, "0123456789") {
		return time.Time{}, false
	}

	token := first
	fields := strings.Fields(first)
	for i := len(fields) - 1; i >= 0; i-- {
		if strings.ContainsAny(fields[i], "/-") {
			token = fields[i]
			break
		}
	}
	for _, layout := range performanceDateLayouts {
		if t, err := time.Parse(layout, token); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
