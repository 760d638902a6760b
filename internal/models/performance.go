package models

// PerformanceDay is one row of the daily performance series
type PerformanceDay struct {
	Day            string   `json:"day"`
	PortfolioValue *float64 `json:"portfolio_value"`
	PortfolioRet   *float64 `json:"portfolio_ret"`
	VOORet         *float64 `json:"voo_ret"`
	QQQRet         *float64 `json:"qqq_ret"`
}

// PerformanceUploadResult is returned after a performance export is ingested
type PerformanceUploadResult struct {
	Status   string    `json:"status"`
	Rows     int       `json:"rows"`
	Upserted int       `json:"upserted"`
	Rejected int       `json:"rejected"`
	FirstDay string    `json:"first_day"`
	LastDay  string    `json:"last_day"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// RollupSet is one window of compounded returns
type RollupSet struct {
	Portfolio float64 `json:"portfolio"`
	VOO       float64 `json:"voo"`
	QQQ       float64 `json:"qqq"`
}

// RollupsResponse carries compounded returns for the fixed windows
type RollupsResponse struct {
	AsOf       string    `json:"as_of"`
	SinceStart RollupSet `json:"since_start"`
	Last30D    RollupSet `json:"last_30d"`
	Last7D     RollupSet `json:"last_7d"`
	YTD        RollupSet `json:"ytd"`
}

// MetricsDay is one row of rolling betas
type MetricsDay struct {
	Day       string   `json:"day"`
	Beta20VOO *float64 `json:"beta_20_voo"`
	Beta30VOO *float64 `json:"beta_30_voo"`
	Beta60VOO *float64 `json:"beta_60_voo"`
	Beta20QQQ *float64 `json:"beta_20_qqq"`
	Beta30QQQ *float64 `json:"beta_30_qqq"`
	Beta60QQQ *float64 `json:"beta_60_qqq"`
}

// MetricsRunResult reports what a derived-metrics run wrote
type MetricsRunResult struct {
	Mode     string    `json:"mode"`
	Day      string    `json:"day,omitempty"`
	Written  int       `json:"written"`
	Bad      int       `json:"bad"`
	Status   string    `json:"status"`
	Warnings []Warning `json:"warnings,omitempty"`
}
