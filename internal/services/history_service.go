package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/epeers/portfolio-tracker/internal/ingest"
	"github.com/epeers/portfolio-tracker/internal/models"
	"github.com/epeers/portfolio-tracker/internal/repository"
)

// ActivityEpsilon is the smallest quantity change reported as a trade
const ActivityEpsilon = 1e-9

// HistoryService serves point-in-time views over stored snapshots
type HistoryService struct {
	snapshotRepo *repository.SnapshotRepository
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(snapshotRepo *repository.SnapshotRepository) *HistoryService {
	return &HistoryService{snapshotRepo: snapshotRepo}
}

// Snapshots lists snapshot dates newest first
func (s *HistoryService) Snapshots(ctx context.Context, limit int) ([]string, error) {
	if limit < 1 || limit > MaxSeriesDays {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidParameter, MaxSeriesDays)
	}
	dates, err := s.snapshotRepo.ListSnapshotDates(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(ingest.DateLayout)
	}
	return out, nil
}

// PositionsAsOf values the holdings snapshot of one date
func (s *HistoryService) PositionsAsOf(ctx context.Context, asOf time.Time) (*models.SnapshotPositions, error) {
	defer TrackTime("PositionsAsOf", time.Now())

	holdings, err := s.snapshotRepo.SnapshotHoldings(ctx, asOf)
	if err != nil {
		return nil, err
	}
	if len(holdings) == 0 {
		return nil, repository.ErrSnapshotNotFound
	}
	positions, totals := BuildPositions(asOf, holdings)
	return &models.SnapshotPositions{
		AsOf:      asOf.Format(ingest.DateLayout),
		Totals:    totals,
		Positions: positions,
	}, nil
}

// DashboardLatest summarises the latest raw snapshot including pending activity
func (s *HistoryService) DashboardLatest(ctx context.Context) (*models.DashboardLatest, error) {
	t, err := s.snapshotRepo.LatestRawTotals(ctx)
	if err != nil {
		return nil, err
	}
	return &models.DashboardLatest{
		SnapshotAsOf:          t.AsOf.Format(ingest.DateLayout),
		TotalValue:            t.TotalValue,
		Cash:                  t.Cash,
		PendingAmount:         t.PendingAmount,
		PendingSells:          t.PendingSells,
		PendingBuys:           t.PendingBuys,
		NonCashPositionsValue: t.NonCashValue,
		UnrealizedPnLTotal:    t.UnrealizedTotal,
		TodaysPnLTotal:        t.TodaysTotal,
	}, nil
}

// Activity infers buys and sells from quantity changes between two snapshots
func (s *HistoryService) Activity(ctx context.Context, from, to time.Time) (*models.ActivityResponse, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: to (%s) is before from (%s)", ErrInvalidRange, to.Format(ingest.DateLayout), from.Format(ingest.DateLayout))
	}
	before, err := s.snapshotRepo.QuantitiesByTicker(ctx, from)
	if err != nil {
		return nil, err
	}
	after, err := s.snapshotRepo.QuantitiesByTicker(ctx, to)
	if err != nil {
		return nil, err
	}
	return &models.ActivityResponse{
		From:    from.Format(ingest.DateLayout),
		To:      to.Format(ingest.DateLayout),
		Changes: InferActivity(before, after),
	}, nil
}

// InferActivity diffs two ticker->quantity maps. A ticker missing from one side
// counts as zero; changes smaller than ActivityEpsilon are dropped. Results are
// ordered by ticker.
func InferActivity(before, after map[string]float64) []models.ActivityChange {
	tickers := make(map[string]struct{}, len(before)+len(after))
	for t := range before {
		tickers[t] = struct{}{}
	}
	for t := range after {
		tickers[t] = struct{}{}
	}

	changes := []models.ActivityChange{}
	for t := range tickers {
		oldQty, newQty := before[t], after[t]
		delta := newQty - oldQty
		if math.Abs(delta) < ActivityEpsilon {
			continue
		}
		action := models.ActionBuy
		if delta < 0 {
			action = models.ActionSell
		}
		changes = append(changes, models.ActivityChange{
			Symbol:   t,
			OldQty:   oldQty,
			NewQty:   newQty,
			DeltaQty: delta,
			Action:   action,
		})
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Symbol < changes[j].Symbol })
	return changes
}
