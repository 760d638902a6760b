package models

import "time"

// RankingReportType identifies a vendor ranking export
type RankingReportType string

const (
	ReportTopRated RankingReportType = "top_rated"
	ReportQuant    RankingReportType = "quant"
)

// Valid reports whether t is a known report type
func (t RankingReportType) Valid() bool {
	return t == ReportTopRated || t == ReportQuant
}

// RankingFile is the metadata of one uploaded ranking export
type RankingFile struct {
	ID               string            `json:"id"`
	ReportType       RankingReportType `json:"report_type"`
	AsOfDate         string            `json:"as_of_date"`
	OriginalFilename string            `json:"original_filename"`
	SHA256           string            `json:"sha256"`
	RowCount         int               `json:"row_count"`
	ReceivedAt       time.Time         `json:"received_at"`
}

// RankingUploadResult is returned after a ranking export is ingested
type RankingUploadResult struct {
	Status       string            `json:"status"`
	FileID       string            `json:"file_id,omitempty"`
	ReportType   RankingReportType `json:"report_type"`
	AsOfDate     string            `json:"as_of_date"`
	SHA256       string            `json:"sha256"`
	RowsUpserted int               `json:"rows_upserted"`
	RowsRejected int               `json:"rows_rejected,omitempty"`
	Warnings     []Warning         `json:"warnings,omitempty"`
}

// RankingEntry is the latest ranking of one symbol
type RankingEntry struct {
	Symbol           string            `json:"symbol"`
	AsOfDate         string            `json:"as_of_date"`
	ReportType       RankingReportType `json:"report_type"`
	Rank             *int64            `json:"rank"`
	CompanyName      *string           `json:"company_name"`
	Price            *float64          `json:"price"`
	ChangePct        *float64          `json:"change_pct"`
	QuantRating      *float64          `json:"quant_rating"`
	SAAnalystRating  *float64          `json:"sa_analyst_rating"`
	WallStreetRating *float64          `json:"wall_st_rating"`
	Sector           *string           `json:"sector"`
	Industry         *string           `json:"industry"`
	MarketCap        *float64          `json:"market_cap"`
	YieldFwd         *float64          `json:"yield_fwd"`
}

// SnapshotFileInfo describes the newest archived positions export
type SnapshotFileInfo struct {
	Filename   string    `json:"filename"`
	SHA256     string    `json:"sha256"`
	SizeBytes  int64     `json:"size_bytes"`
	ModifiedAt time.Time `json:"modified_at"`
}
