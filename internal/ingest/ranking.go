package ingest

import (
	"io"
	"strings"
)

// RankingRequiredColumns must all be present in a vendor ranking export.
var RankingRequiredColumns = []string{"rank", "symbol", "company name", "price", "change %", "quant rating"}

// RankingRow is one security in a vendor ranking export.
type RankingRow struct {
	Rank             *int64
	Symbol           string
	CompanyName      string
	Price            *float64
	ChangePct        *float64
	QuantRating      *float64
	SAAnalystRating  *float64
	WallStreetRating *float64
	Sector           string
	Industry         string
	MarketCap        *float64
	YieldFwd         *float64
	Raw              map[string]string
}

// RankingSheet is a parsed vendor ranking export.
type RankingSheet struct {
	SheetName string
	Columns   []string
	Rows      []RankingRow
}

// ParseRankingXLSX reads the "Summary" sheet (or the first sheet) of a ranking export.
// Column names are lower-cased with whitespace collapsed before matching.
func ParseRankingXLSX(r io.Reader) (*RankingSheet, error) {
	sheet, err := ReadSheet(r, "Summary")
	if err != nil {
		return nil, err
	}

	columns := make([]string, len(sheet.Rows[0]))
	idx := make(map[string]int, len(columns))
	for i, h := range sheet.Rows[0] {
		columns[i] = NormalizeHeader(h)
		if _, seen := idx[columns[i]]; !seen {
			idx[columns[i]] = i
		}
	}

	var missing []string
	for _, req := range RankingRequiredColumns {
		if _, ok := idx[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing, Found: columns}
	}

	col := func(record []string, name string) string {
		i, ok := idx[name]
		if !ok {
			return ""
		}
		return cell(record, i)
	}

	out := &RankingSheet{SheetName: sheet.Name, Columns: columns}
	for _, record := range sheet.Rows[1:] {
		symbol := strings.ToUpper(col(record, "symbol"))
		if symbol == "" {
			continue
		}

		raw := make(map[string]string, len(columns))
		for i, c := range columns {
			if c != "" {
				raw[c] = cell(record, i)
			}
		}

		sector, industry := splitSectorIndustry(col(record, "sector & industry"))
		out.Rows = append(out.Rows, RankingRow{
			Rank:             OptInt(ParseBigInt(col(record, "rank"))),
			Symbol:           symbol,
			CompanyName:      col(record, "company name"),
			Price:            OptFloat(ParseNumber(col(record, "price"))),
			ChangePct:        OptFloat(ParsePercent(col(record, "change %"))),
			QuantRating:      OptFloat(ParseNumber(col(record, "quant rating"))),
			SAAnalystRating:  OptFloat(ParseNumber(col(record, "sa analyst ratings"))),
			WallStreetRating: OptFloat(ParseNumber(col(record, "wall street ratings"))),
			Sector:           sector,
			Industry:         industry,
			MarketCap:        OptFloat(ParseNumber(col(record, "market cap"))),
			YieldFwd:         OptFloat(ParsePercent(col(record, "yield fwd"))),
			Raw:              raw,
		})
	}
	return out, nil
}

// splitSectorIndustry splits "Information Technology / Semiconductors".
func splitSectorIndustry(v string) (string, string) {
	var parts []string
	for _, p := range strings.Split(v, "/") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], parts[1]
	}
}
