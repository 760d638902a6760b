package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fidelityExport = `Account Number,Account Name,Symbol,Description,Quantity,Last Price,Last Price Change,Current Value,Today's Gain/Loss Dollar,Today's Gain/Loss Percent,Total Gain/Loss Dollar,Total Gain/Loss Percent,Percent Of Account,Cost Basis Total,Average Cost Basis,Type
Z123,ROTH IRA,SPAXX**,HELD IN MONEY MARKET,,,,$1520.33,,,,,3.02%,,,Cash
Z123,ROTH IRA,AAPL,APPLE INC,10,$227.50,+$1.25,"$2,275.00",+$12.50,+0.55%,+$275.00,+13.75%,45.10%,"$2,000.00",$200.00,Cash
Z123,ROTH IRA,Pending Activity,,,,,-$250.00,,,,,,,,
Z123,ROTH IRA,NVDA,NVIDIA CORP,5,$140.00,-$2.00,$700.00,-$10.00,-1.41%,($50.00),(6.67%),13.88%,,$150.00,Cash
Z123,ROTH IRA,MSFT,MICROSOFT CORP,0,$410.00,,$0.00,,,,,,,$300.00,Cash

"The data and information in this spreadsheet is provided to you solely for your use."
`

func TestParsePositionsCSV_FidelityExport(t *testing.T) {
	file, err := ParsePositionsCSV(strings.NewReader(fidelityExport))
	require.NoError(t, err)
	require.Len(t, file.Rows, 6)

	aapl := file.Rows[1]
	assert.Equal(t, "AAPL", aapl.Symbol)
	assert.Equal(t, "ROTH IRA", aapl.AccountName)
	assert.Equal(t, "Z123", aapl.AccountNumber)
	require.NotNil(t, aapl.Quantity)
	assert.Equal(t, 10.0, *aapl.Quantity)
	require.NotNil(t, aapl.LastPrice)
	assert.Equal(t, 227.5, *aapl.LastPrice)
	require.NotNil(t, aapl.CurrentValue)
	assert.Equal(t, 2275.0, *aapl.CurrentValue)
	require.NotNil(t, aapl.TodaysGainPct)
	assert.InDelta(t, 0.0055, *aapl.TodaysGainPct, 1e-12)
	require.NotNil(t, aapl.AverageCost)
	assert.Equal(t, 200.0, *aapl.AverageCost)
	assert.Equal(t, "$2,275.00", aapl.Raw["Current Value"])
	assert.Equal(t, ClassHolding, Classify(aapl))

	nvda := file.Rows[3]
	require.NotNil(t, nvda.TotalGainDollar)
	assert.Equal(t, -50.0, *nvda.TotalGainDollar)
	require.NotNil(t, nvda.TotalGainPct)
	assert.InDelta(t, -0.0667, *nvda.TotalGainPct, 1e-12)
	require.NotNil(t, nvda.CostBasisTotal, "cost basis total falls back to quantity * average cost")
	assert.Equal(t, 750.0, *nvda.CostBasisTotal)

	assert.Equal(t, ClassCashEquivalent, Classify(file.Rows[0]))
	assert.Equal(t, ClassPending, Classify(file.Rows[2]))
	assert.Equal(t, ClassInvalidQuantity, Classify(file.Rows[4]))
	assert.Equal(t, ClassBlankSymbol, Classify(file.Rows[5]))
}

func TestParsePositionsCSV_MissingColumns(t *testing.T) {
	csv := "Ticker,Description,Market Value\nAAPL,Apple,100\n"
	_, err := ParsePositionsCSV(strings.NewReader(csv))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumns))

	var mc *MissingColumnsError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, []string{"quantity", "average cost basis"}, mc.Missing)
	assert.Equal(t, []string{"Ticker", "Description", "Market Value"}, mc.Found)
	assert.Contains(t, err.Error(), "Market Value")
}

func TestParsePositionsCSV_AlternateHeaders(t *testing.T) {
	csv := "Security Symbol,Current Shares,Cost Basis Per Share,Current Price,Account\n tsla ,3,\"1,000.00\",250,Brokerage\n"
	file, err := ParsePositionsCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, file.Rows, 1)
	row := file.Rows[0]
	assert.Equal(t, "tsla", row.Symbol)
	assert.Equal(t, "Brokerage", row.AccountName)
	assert.Equal(t, 1000.0, *row.AverageCost)
	assert.Equal(t, 250.0, *row.LastPrice)
}

func TestParsePositionsCSV_Empty(t *testing.T) {
	_, err := ParsePositionsCSV(strings.NewReader("\n\n"))
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestParsePositionsCSV_StripsNulBytes(t *testing.T) {
	csv := "Symbol,Description,Quantity,Average Cost Basis\x00\nAAPL,bad\x00desc,10,$100.00\n"
	file, err := ParsePositionsCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, file.Rows, 1)

	row := file.Rows[0]
	assert.Equal(t, "baddesc", row.Description)
	assert.Equal(t, "baddesc", row.Raw["Description"])
	assert.Contains(t, file.Headers, "Average Cost Basis")
	assert.Equal(t, ClassHolding, Classify(row))
}
