package services

import (
	"context"
	"time"

	"github.com/epeers/portfolio-tracker/internal/ingest"
	"github.com/epeers/portfolio-tracker/internal/models"
	"github.com/epeers/portfolio-tracker/internal/repository"
)

// PortfolioService serves the read side of the latest snapshot
type PortfolioService struct {
	snapshotRepo *repository.SnapshotRepository
	accountRepo  *repository.AccountRepository
}

// NewPortfolioService creates a new PortfolioService
func NewPortfolioService(snapshotRepo *repository.SnapshotRepository, accountRepo *repository.AccountRepository) *PortfolioService {
	return &PortfolioService{
		snapshotRepo: snapshotRepo,
		accountRepo:  accountRepo,
	}
}

// Summary computes headline KPIs from the latest raw snapshot. Cash-equivalent
// and pending rows count toward total value and cash but not toward cost,
// invested value or P&L.
func (s *PortfolioService) Summary(ctx context.Context) (*models.SummaryKPIs, error) {
	defer TrackTime("Summary", time.Now())

	totals, err := s.snapshotRepo.LatestRawTotals(ctx)
	if err != nil {
		return nil, err
	}
	return &models.SummaryKPIs{
		AsOf:          totals.AsOf.Format(ingest.DateLayout),
		MarketValue:   totals.TotalValue,
		CostValue:     totals.NonCashCost,
		InvestedValue: totals.NonCashValue,
		Cash:          totals.Cash + totals.PendingAmount,
		PLAbs:         totals.NonCashUnrealized,
		PLPct:         ratio(totals.NonCashUnrealized, totals.NonCashCost),
		TotalValue:    totals.TotalValue,
		InvestedPct:   ratio(totals.NonCashValue, totals.TotalValue),
	}, nil
}

// Positions prices every security of the latest holdings snapshot
func (s *PortfolioService) Positions(ctx context.Context) (*models.PositionsResponse, error) {
	defer TrackTime("Positions", time.Now())

	asOf, err := s.snapshotRepo.LatestHoldingsAsOf(ctx)
	if err != nil {
		return nil, err
	}
	holdings, err := s.snapshotRepo.SnapshotHoldings(ctx, asOf)
	if err != nil {
		return nil, err
	}
	positions, _ := BuildPositions(asOf, holdings)
	return &models.PositionsResponse{AsOf: asOf.Format(ingest.DateLayout), Data: positions}, nil
}

// Totals returns cost, value and P&L of the latest holdings snapshot
func (s *PortfolioService) Totals(ctx context.Context) (*models.PortfolioTotals, error) {
	asOf, err := s.snapshotRepo.LatestHoldingsAsOf(ctx)
	if err != nil {
		return nil, err
	}
	holdings, err := s.snapshotRepo.SnapshotHoldings(ctx, asOf)
	if err != nil {
		return nil, err
	}
	_, totals := BuildPositions(asOf, holdings)
	return &models.PortfolioTotals{
		AsOf:       asOf.Format(ingest.DateLayout),
		TotalCost:  totals.CostValue,
		TotalValue: totals.MarketValue,
		PL:         totals.PLAbs,
		PLPct:      totals.PLPct,
	}, nil
}

// Accounts lists the brokerage accounts seen in uploads
func (s *PortfolioService) Accounts(ctx context.Context) ([]string, error) {
	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []string{}
	}
	return accounts, nil
}

// BuildPositions values a holdings snapshot. A security without a price on or
// before the as-of is valued at cost. Day change needs both the as-of price and
// an earlier close.
func BuildPositions(asOf time.Time, holdings []repository.SnapshotHolding) ([]models.Position, models.SnapshotTotals) {
	positions := make([]models.Position, 0, len(holdings))
	var totals models.SnapshotTotals

	for _, h := range holdings {
		p := models.Position{
			Ticker:    h.Ticker,
			AsOf:      asOf.Format(ingest.DateLayout),
			Quantity:  h.Quantity,
			Price:     h.Close,
			PrevClose: h.PrevClose,
		}
		if h.CostValue != nil {
			p.CostValue = *h.CostValue
			if h.Quantity != 0 {
				avg := *h.CostValue / h.Quantity
				p.AvgCost = &avg
			}
		}

		if h.Close != nil {
			p.MarketValue = h.Quantity * *h.Close
		} else {
			p.MarketValue = p.CostValue
		}
		p.UnrealizedPL = p.MarketValue - p.CostValue
		p.UnrealizedPLPct = ratio(p.UnrealizedPL, p.CostValue)

		if h.Close != nil && h.PrevClose != nil {
			change := (*h.Close - *h.PrevClose) * h.Quantity
			p.DayChange = &change
			p.DayChangePct = ratio(*h.Close-*h.PrevClose, *h.PrevClose)
		}

		totals.MarketValue += p.MarketValue
		totals.CostValue += p.CostValue
		positions = append(positions, p)
	}

	totals.PLAbs = totals.MarketValue - totals.CostValue
	totals.PLPct = ratio(totals.PLAbs, totals.CostValue)
	return positions, totals
}

// ratio returns num/den, or nil when den is zero.
func ratio(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	r := num / den
	return &r
}
