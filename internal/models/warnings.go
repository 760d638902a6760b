package models

// WarningCode categorizes warnings by subsystem.
// W1xxx = ingestion, W2xxx = market data, W3xxx = derived metrics.
type WarningCode string

const (
	WarnAsOfDefaulted    WarningCode = "W1001" // no usable date in request or filename; today was used
	WarnRowsRejected     WarningCode = "W1002" // rows failed to persist even when written alone
	WarnTickerFetch      WarningCode = "W2001" // market data fetch failed for one ticker
	WarnBackfillDay      WarningCode = "W2002" // one backfill day failed and was skipped
	WarnInsufficientData WarningCode = "W3001" // fewer observations than the rolling window
)

// Warning represents a non-fatal issue encountered during processing.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}
