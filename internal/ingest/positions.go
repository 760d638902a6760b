package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// Canonical positions fields and the export column names that map onto them.
var (
	SymbolHeaders           = []string{"symbol", "security symbol", "ticker"}
	QuantityHeaders         = []string{"quantity", "shares", "current shares"}
	AverageCostHeaders      = []string{"average cost basis", "average cost", "cost basis per share"}
	LastPriceHeaders        = []string{"last price", "price", "current price"}
	LastPriceChangeHeaders  = []string{"last price change", "price change"}
	CurrentValueHeaders     = []string{"current value", "market value", "current va"}
	TodaysGainDollarHeaders = []string{"today's gain/loss dollar", "todays gain $", "today's gain $", "today's ga $"}
	TodaysGainPctHeaders    = []string{"today's gain/loss percent", "todays gain %", "today's gain %", "today's ga %"}
	TotalGainDollarHeaders  = []string{"total gain/loss dollar", "total gain dollar", "total gain/loss $"}
	TotalGainPctHeaders     = []string{"total gain/loss percent", "total gain %", "total gain/loss %"}
	PercentOfAccountHeaders = []string{"percent of account", "percent of"}
	CostBasisTotalHeaders   = []string{"cost basis total", "cost basis t"}
	AccountNameHeaders      = []string{"account name", "account"}
	AccountNumberHeaders    = []string{"account number", "account #"}
	DescriptionHeaders      = []string{"description"}
	TypeHeaders             = []string{"type"}
)

// PositionRow is one data row of a brokerage positions export.
// Percent fields are decimal fractions.
type PositionRow struct {
	Line             int
	AccountNumber    string
	AccountName      string
	Symbol           string
	Description      string
	SecurityType     string
	Quantity         *float64
	LastPrice        *float64
	LastPriceChange  *float64
	CurrentValue     *float64
	TodaysGainDollar *float64
	TodaysGainPct    *float64
	TotalGainDollar  *float64
	TotalGainPct     *float64
	PercentOfAccount *float64
	CostBasisTotal   *float64
	AverageCost      *float64
	Raw              map[string]string
}

// PositionsFile is a parsed positions export.
type PositionsFile struct {
	Headers []string
	Rows    []PositionRow
}

type positionColumns struct {
	symbol, quantity, averageCost, lastPrice, lastPriceChange, currentValue int
	todaysGainDollar, todaysGainPct, totalGainDollar, totalGainPct          int
	percentOfAccount, costBasisTotal, accountName, accountNumber, desc, typ int
}

// ParsePositionsCSV reads a positions export. Missing symbol, quantity or average
// cost columns are a structural error reported before any row is read.
func ParsePositionsCSV(r io.Reader) (*PositionsFile, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var header []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV header: %w", err)
		}
		if !isBlankRecord(record) {
			header = record
			break
		}
	}

	hs := NewHeaderSet(header)
	cols := positionColumns{
		symbol:           hs.Index(SymbolHeaders...),
		quantity:         hs.Index(QuantityHeaders...),
		averageCost:      hs.Index(AverageCostHeaders...),
		lastPrice:        hs.Index(LastPriceHeaders...),
		lastPriceChange:  hs.Index(LastPriceChangeHeaders...),
		currentValue:     hs.Index(CurrentValueHeaders...),
		todaysGainDollar: hs.Index(TodaysGainDollarHeaders...),
		todaysGainPct:    hs.Index(TodaysGainPctHeaders...),
		totalGainDollar:  hs.Index(TotalGainDollarHeaders...),
		totalGainPct:     hs.Index(TotalGainPctHeaders...),
		percentOfAccount: hs.Index(PercentOfAccountHeaders...),
		costBasisTotal:   hs.Index(CostBasisTotalHeaders...),
		accountName:      hs.Index(AccountNameHeaders...),
		accountNumber:    hs.Index(AccountNumberHeaders...),
		desc:             hs.Index(DescriptionHeaders...),
		typ:              hs.ExactIndex(TypeHeaders...),
	}

	var missing []string
	if cols.symbol < 0 {
		missing = append(missing, "symbol")
	}
	if cols.quantity < 0 {
		missing = append(missing, "quantity")
	}
	if cols.averageCost < 0 {
		missing = append(missing, "average cost basis")
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing, Found: hs.Headers()}
	}

	file := &PositionsFile{Headers: hs.Headers()}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if isBlankRecord(record) {
			continue
		}
		file.Rows = append(file.Rows, buildPositionRow(line, hs.Headers(), record, cols))
	}
	return file, nil
}

func buildPositionRow(line int, headers, record []string, cols positionColumns) PositionRow {
	raw := make(map[string]string, len(headers))
	for i, h := range headers {
		if h == "" {
			continue
		}
		raw[h] = cell(record, i)
	}

	row := PositionRow{
		Line:             line,
		AccountNumber:    cell(record, cols.accountNumber),
		AccountName:      cell(record, cols.accountName),
		Symbol:           cell(record, cols.symbol),
		Description:      cell(record, cols.desc),
		SecurityType:     cell(record, cols.typ),
		Quantity:         OptFloat(ParseNumber(cell(record, cols.quantity))),
		LastPrice:        OptFloat(ParseNumber(cell(record, cols.lastPrice))),
		LastPriceChange:  OptFloat(ParseNumber(cell(record, cols.lastPriceChange))),
		CurrentValue:     OptFloat(ParseNumber(cell(record, cols.currentValue))),
		TodaysGainDollar: OptFloat(ParseNumber(cell(record, cols.todaysGainDollar))),
		TodaysGainPct:    OptFloat(ParsePercent(cell(record, cols.todaysGainPct))),
		TotalGainDollar:  OptFloat(ParseNumber(cell(record, cols.totalGainDollar))),
		TotalGainPct:     OptFloat(ParsePercent(cell(record, cols.totalGainPct))),
		PercentOfAccount: OptFloat(ParsePercent(cell(record, cols.percentOfAccount))),
		CostBasisTotal:   OptFloat(ParseNumber(cell(record, cols.costBasisTotal))),
		AverageCost:      OptFloat(ParseNumber(cell(record, cols.averageCost))),
		Raw:              raw,
	}
	if row.CostBasisTotal == nil && row.Quantity != nil && row.AverageCost != nil {
		total := *row.Quantity * *row.AverageCost
		row.CostBasisTotal = &total
	}
	return row
}
