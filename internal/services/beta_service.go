package services

import (
	"context"
	"fmt"
	"time"

	"github.com/epeers/portfolio-tracker/internal/analytics"
	"github.com/epeers/portfolio-tracker/internal/ingest"
	"github.com/epeers/portfolio-tracker/internal/models"
	"github.com/epeers/portfolio-tracker/internal/repository"
	log "github.com/sirupsen/logrus"
)

const (
	MetricsModeUpdate   = "update"
	MetricsModeBackfill = "backfill"
)

// PerformanceSource reads the daily return series
type PerformanceSource interface {
	All(ctx context.Context) ([]repository.PerformanceRecord, error)
	Until(ctx context.Context, end time.Time) ([]repository.PerformanceRecord, error)
}

// MetricsStore persists rolling betas
type MetricsStore interface {
	LatestDayMissingMetrics(ctx context.Context) (*time.Time, error)
	Upsert(ctx context.Context, rows []repository.MetricsRow) (*repository.UpsertResult, error)
}

// BetaService computes rolling betas of the portfolio against VOO and QQQ.
// Once a day has a metrics row it is never recomputed by UpdateLatestMissing;
// BackfillAll is the only path that rewrites history.
type BetaService struct {
	perf    PerformanceSource
	metrics MetricsStore
}

// NewBetaService creates a new BetaService
func NewBetaService(perf PerformanceSource, metrics MetricsStore) *BetaService {
	return &BetaService{perf: perf, metrics: metrics}
}

// UpdateLatestMissing writes metrics for the newest performance day that has
// none. Days with metrics are never rewritten and a run with nothing missing
// writes nothing.
func (s *BetaService) UpdateLatestMissing(ctx context.Context) (*models.MetricsRunResult, error) {
	defer TrackTime("UpdateLatestMissing", time.Now())

	result := &models.MetricsRunResult{Mode: MetricsModeUpdate, Status: "ok"}
	target, err := s.metrics.LatestDayMissingMetrics(ctx)
	if err != nil {
		return nil, err
	}
	if target == nil {
		result.Status = "up_to_date"
		log.Info("rolling beta: no day missing metrics")
		return result, nil
	}
	result.Day = target.Format(ingest.DateLayout)

	records, err := s.perf.Until(ctx, *target)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, repository.ErrNoPerformanceData
	}
	obsVOO, obsQQQ := observations(records)
	last := len(records) - 1
	if len(records) < analytics.BetaWindows[len(analytics.BetaWindows)-1] {
		AddWarning(ctx, models.Warning{
			Code:    models.WarnInsufficientData,
			Message: fmt.Sprintf("only %d observations up to %s; longer windows are empty", len(records), result.Day),
		})
	}

	row := metricsRow(records[last].Day, obsVOO, obsQQQ, last)
	upserted, err := s.metrics.Upsert(ctx, []repository.MetricsRow{row})
	if err != nil {
		return nil, err
	}
	result.Written = upserted.OK
	result.Bad = len(upserted.Bad)
	log.Infof("rolling beta: wrote metrics for %s", result.Day)
	return result, nil
}

// BackfillAll recomputes metrics for every performance day and upserts them
func (s *BetaService) BackfillAll(ctx context.Context) (*models.MetricsRunResult, error) {
	defer TrackTime("BackfillAll", time.Now())

	records, err := s.perf.All(ctx)
	if err != nil {
		return nil, err
	}
	result := &models.MetricsRunResult{Mode: MetricsModeBackfill, Status: "ok"}
	if len(records) == 0 {
		result.Status = "no_data"
		return result, nil
	}

	obsVOO, obsQQQ := observations(records)
	rows := make([]repository.MetricsRow, len(records))
	for i, r := range records {
		rows[i] = metricsRow(r.Day, obsVOO, obsQQQ, i)
	}

	upserted, err := s.metrics.Upsert(ctx, rows)
	if err != nil {
		return nil, err
	}
	if len(upserted.Bad) > 0 {
		AddWarning(ctx, models.Warning{
			Code:    models.WarnRowsRejected,
			Message: fmt.Sprintf("%d metrics rows were rejected by the database", len(upserted.Bad)),
		})
	}
	result.Day = records[len(records)-1].Day.Format(ingest.DateLayout)
	result.Written = upserted.OK
	result.Bad = len(upserted.Bad)
	log.Infof("rolling beta backfill: %d days written, %d bad", result.Written, result.Bad)
	return result, nil
}

func observations(records []repository.PerformanceRecord) (voo, qqq []analytics.Observation) {
	voo = make([]analytics.Observation, len(records))
	qqq = make([]analytics.Observation, len(records))
	for i, r := range records {
		voo[i] = analytics.Observation{Portfolio: r.PortfolioRet, Benchmark: r.VOORet}
		qqq[i] = analytics.Observation{Portfolio: r.PortfolioRet, Benchmark: r.QQQRet}
	}
	return voo, qqq
}

func metricsRow(day time.Time, voo, qqq []analytics.Observation, i int) repository.MetricsRow {
	return repository.MetricsRow{
		Day:       day,
		Beta20VOO: analytics.BetaAt(voo, i, 20),
		Beta30VOO: analytics.BetaAt(voo, i, 30),
		Beta60VOO: analytics.BetaAt(voo, i, 60),
		Beta20QQQ: analytics.BetaAt(qqq, i, 20),
		Beta30QQQ: analytics.BetaAt(qqq, i, 30),
		Beta60QQQ: analytics.BetaAt(qqq, i, 60),
	}
}
