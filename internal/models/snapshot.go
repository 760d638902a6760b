package models

// PositionsUploadResult is returned after a positions export is ingested
type PositionsUploadResult struct {
	Status            string         `json:"status"`
	SnapshotAsOf      string         `json:"snapshot_as_of"`
	SourceFilename    string         `json:"source_filename"`
	RawRows           int            `json:"raw_rows"`
	InsertedHoldings  int            `json:"inserted_holdings"`
	InsertedPrices    int            `json:"inserted_prices"`
	CreatedSecurities int            `json:"created_securities"`
	CreatedAccounts   int            `json:"created_accounts"`
	ReplacedHoldings  int64          `json:"replaced_holdings,omitempty"`
	SkippedRows       int            `json:"skipped_rows"`
	SkipReasons       map[string]int `json:"skip_reasons"`
	Warnings          []Warning      `json:"warnings,omitempty"`
}

// SummaryKPIs are the headline numbers of the latest raw snapshot
type SummaryKPIs struct {
	AsOf          string   `json:"as_of"`
	MarketValue   float64  `json:"market_value"`
	CostValue     float64  `json:"cost_value"`
	InvestedValue float64  `json:"invested_value"`
	Cash          float64  `json:"cash"`
	PLAbs         float64  `json:"pl_abs"`
	PLPct         *float64 `json:"pl_pct"`
	TotalValue    float64  `json:"total_value"`
	InvestedPct   *float64 `json:"invested_pct"`
}

// EquityPoint is one day of account balance
type EquityPoint struct {
	Date    string  `json:"date"`
	Balance float64 `json:"balance"`
}

// EquityCurveResponse is an ascending balance series
type EquityCurveResponse struct {
	Series []EquityPoint `json:"series"`
	Count  int           `json:"count"`
}

// LegacyEquityPoint keeps the older {date, equity} shape
type LegacyEquityPoint struct {
	Date   string  `json:"date"`
	Equity float64 `json:"equity"`
}

// Position is one security of a holdings snapshot priced for display
type Position struct {
	Ticker          string   `json:"ticker"`
	AsOf            string   `json:"as_of"`
	Quantity        float64  `json:"quantity"`
	AvgCost         *float64 `json:"avg_cost"`
	Price           *float64 `json:"price"`
	PrevClose       *float64 `json:"prev_close"`
	MarketValue     float64  `json:"market_value"`
	CostValue       float64  `json:"cost_value"`
	UnrealizedPL    float64  `json:"unrealized_pl"`
	UnrealizedPLPct *float64 `json:"unrealized_pl_pct"`
	DayChange       *float64 `json:"day_change"`
	DayChangePct    *float64 `json:"day_change_pct"`
}

// PositionsResponse wraps the latest positions list
type PositionsResponse struct {
	AsOf string     `json:"as_of"`
	Data []Position `json:"data"`
}

// SnapshotTotals aggregates a holdings snapshot
type SnapshotTotals struct {
	MarketValue float64  `json:"market"`
	CostValue   float64  `json:"cost"`
	PLAbs       float64  `json:"pl_abs"`
	PLPct       *float64 `json:"pl_pct"`
}

// SnapshotPositions is a holdings snapshot for one as-of date
type SnapshotPositions struct {
	AsOf      string         `json:"as_of"`
	Totals    SnapshotTotals `json:"totals"`
	Positions []Position     `json:"positions"`
}

// PortfolioTotals is the cost/value/P&L of the latest holdings snapshot
type PortfolioTotals struct {
	AsOf       string   `json:"as_of"`
	TotalCost  float64  `json:"total_cost"`
	TotalValue float64  `json:"total_value"`
	PL         float64  `json:"pl"`
	PLPct      *float64 `json:"pl_pct"`
}

// DashboardLatest summarises the latest raw snapshot including unsettled cash
type DashboardLatest struct {
	SnapshotAsOf          string  `json:"snapshot_as_of"`
	TotalValue            float64 `json:"total_value"`
	Cash                  float64 `json:"cash"`
	PendingAmount         float64 `json:"pending_amount"`
	PendingSells          float64 `json:"pending_sells"`
	PendingBuys           float64 `json:"pending_buys"`
	NonCashPositionsValue float64 `json:"non_cash_positions_value"`
	UnrealizedPnLTotal    float64 `json:"unrealized_pnl_total"`
	TodaysPnLTotal        float64 `json:"todays_pnl_total"`
}

// ActivityAction is the inferred direction of a quantity change
type ActivityAction string

const (
	ActionBuy  ActivityAction = "BUY"
	ActionSell ActivityAction = "SELL"
)

// ActivityChange is the quantity delta for one ticker between two snapshots
type ActivityChange struct {
	Symbol   string         `json:"symbol"`
	OldQty   float64        `json:"old_qty"`
	NewQty   float64        `json:"new_qty"`
	DeltaQty float64        `json:"delta_qty"`
	Action   ActivityAction `json:"action"`
}

// ActivityResponse lists inferred trades between two as-of dates
type ActivityResponse struct {
	From    string           `json:"from"`
	To      string           `json:"to"`
	Changes []ActivityChange `json:"changes"`
}
