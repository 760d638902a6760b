package models

// Bar is one daily OHLCV row
type Bar struct {
	Date   string   `json:"date"`
	Ticker string   `json:"ticker,omitempty"`
	Open   *float64 `json:"open"`
	High   *float64 `json:"high"`
	Low    *float64 `json:"low"`
	Close  *float64 `json:"close"`
	Volume *int64   `json:"volume"`
	VWAP   *float64 `json:"vwap"`
	Trades *int64   `json:"trades"`
}

// BarsResponse is a per-ticker bar series
type BarsResponse struct {
	Ticker    string `json:"ticker"`
	Timeframe string `json:"timeframe"`
	From      string `json:"from"`
	To        string `json:"to"`
	Bars      []Bar  `json:"bars"`
}

// BatchBarsRequest asks for daily bars for several tickers. Symbols is the
// older name of Tickers; both are accepted.
type BatchBarsRequest struct {
	Tickers []string     `json:"tickers"`
	Symbols []string     `json:"symbols"`
	Start   FlexibleDate `json:"start"`
	End     FlexibleDate `json:"end"`
}

// BatchBarsResponse holds per-ticker results; one failing ticker does not fail the rest
type BatchBarsResponse struct {
	Start    string            `json:"start"`
	End      string            `json:"end"`
	Results  map[string][]Bar  `json:"results"`
	Errors   map[string]string `json:"errors,omitempty"`
	Warnings []Warning         `json:"warnings,omitempty"`
}

// BackfillRequest selects the calendar range of a grouped-daily backfill
type BackfillRequest struct {
	Start FlexibleDate `json:"start"`
	End   FlexibleDate `json:"end"`
}

// BackfillDayResult reports one calendar day of a backfill
type BackfillDayResult struct {
	Date    string `json:"date"`
	Fetched int    `json:"fetched"`
	OK      int    `json:"ok"`
	Bad     int    `json:"bad"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BackfillResult summarises a backfill run
type BackfillResult struct {
	Start      string              `json:"start"`
	End        string              `json:"end"`
	Days       []BackfillDayResult `json:"days"`
	TotalOK    int                 `json:"total_ok"`
	TotalBad   int                 `json:"total_bad"`
	FailedDays int                 `json:"failed_days"`
	Warnings   []Warning           `json:"warnings,omitempty"`
}
