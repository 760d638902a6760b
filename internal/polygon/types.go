package polygon

import (
	"encoding/json"
	"time"
)

// AggsResponse is the envelope of the aggregates endpoints
type AggsResponse struct {
	Ticker       string      `json:"ticker"`
	Status       string      `json:"status"`
	ResultsCount int         `json:"resultsCount"`
	Results      []AggResult `json:"results"`
}

// AggResult is one aggregate bar. Numeric fields are kept as json.Number so
// large volumes and float-encoded integers survive decoding intact.
type AggResult struct {
	Ticker    string      `json:"T"`
	Open      json.Number `json:"o"`
	High      json.Number `json:"h"`
	Low       json.Number `json:"l"`
	Close     json.Number `json:"c"`
	Volume    json.Number `json:"v"`
	VWAP      json.Number `json:"vw"`
	Trades    json.Number `json:"n"`
	Timestamp json.Number `json:"t"`
}

// DailyBar is a normalized daily bar. Nil fields were absent or unusable.
type DailyBar struct {
	Date   time.Time
	Ticker string
	Open   *float64
	High   *float64
	Low    *float64
	Close  *float64
	Volume *int64
	VWAP   *float64
	Trades *int64
}
