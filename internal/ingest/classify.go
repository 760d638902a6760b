package ingest

import "strings"

// Classification is the outcome of classifying one positions row.
type Classification string

const (
	ClassHolding          Classification = "HOLDING"
	ClassCashEquivalent   Classification = "CASH_EQUIVALENT"
	ClassPending          Classification = "PENDING"
	ClassBlankSymbol      Classification = "BLANK_SYMBOL"
	ClassInvalidQuantity  Classification = "INVALID_QUANTITY"
	ClassInvalidCostBasis Classification = "INVALID_COST_BASIS"

	// ClassWriteFailed counts rows the database rejected; Classify never returns it.
	ClassWriteFailed Classification = "WRITE_FAILED"
)

const pendingActivityType = "PENDING ACTIVITY"

var cashSymbols = map[string]struct{}{
	"MMF":  {},
	"CASH": {},
}

// IsCashEquivalent reports whether a symbol is a money-market or cash sweep vehicle.
// Fidelity marks its core sweep position with a "**" suffix.
func IsCashEquivalent(symbol string) bool {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if strings.HasPrefix(sym, "SPAXX") || strings.HasSuffix(sym, "**") {
		return true
	}
	_, ok := cashSymbols[sym]
	return ok
}

// IsPending reports whether a row is a pending-activity placeholder.
func IsPending(symbol, securityType string) bool {
	if strings.EqualFold(strings.TrimSpace(securityType), pendingActivityType) {
		return true
	}
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(symbol)), "PENDING")
}

// Classify applies the rules in fixed order; the first match wins.
func Classify(row PositionRow) Classification {
	switch {
	case strings.TrimSpace(row.Symbol) == "":
		return ClassBlankSymbol
	case IsCashEquivalent(row.Symbol):
		return ClassCashEquivalent
	case IsPending(row.Symbol, row.SecurityType):
		return ClassPending
	case row.Quantity == nil || *row.Quantity == 0:
		return ClassInvalidQuantity
	case row.AverageCost == nil:
		return ClassInvalidCostBasis
	default:
		return ClassHolding
	}
}

// ClassCounts tallies classifications for an upload.
type ClassCounts map[Classification]int

// Add records one classified row.
func (c ClassCounts) Add(class Classification) {
	c[class]++
}

// Skipped is the number of rows that were not projected into holdings.
func (c ClassCounts) Skipped() int {
	n := 0
	for class, count := range c {
		if class != ClassHolding {
			n += count
		}
	}
	return n
}

// SkipReasons returns the non-holding counts keyed by lower-case reason.
func (c ClassCounts) SkipReasons() map[string]int {
	reasons := make(map[string]int)
	for class, count := range c {
		if class != ClassHolding && count > 0 {
			reasons[strings.ToLower(string(class))] = count
		}
	}
	return reasons
}
