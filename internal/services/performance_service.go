package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/epeers/portfolio-tracker/internal/analytics"
	"github.com/epeers/portfolio-tracker/internal/ingest"
	"github.com/epeers/portfolio-tracker/internal/models"
	"github.com/epeers/portfolio-tracker/internal/repository"
	log "github.com/sirupsen/logrus"
)

const (
	MaxSeriesDays     = 10000
	DefaultSeriesDays = 120
)

// PerformanceService handles the daily performance series and its readers
type PerformanceService struct {
	perfRepo    *repository.PerformanceRepository
	metricsRepo *repository.MetricsRepository
	now         func() time.Time
}

// NewPerformanceService creates a new PerformanceService
func NewPerformanceService(perfRepo *repository.PerformanceRepository, metricsRepo *repository.MetricsRepository) *PerformanceService {
	return &PerformanceService{
		perfRepo:    perfRepo,
		metricsRepo: metricsRepo,
		now:         time.Now,
	}
}

// ParsePerformanceFile picks the parser from the file extension
func ParsePerformanceFile(filename string, body io.Reader) ([]ingest.PerformanceRow, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ingest.ParsePerformanceCSV(body)
	case ".xlsx":
		return ingest.ParsePerformanceXLSX(body)
	default:
		return nil, fmt.Errorf("%w: %q (expected .csv or .xlsx)", ingest.ErrUnsupportedFile, filename)
	}
}

// Upload parses a performance export and upserts it by day
func (s *PerformanceService) Upload(ctx context.Context, filename string, body io.Reader) (*models.PerformanceUploadResult, error) {
	defer TrackTime("PerformanceUpload", time.Now())

	rows, err := ParsePerformanceFile(filename, body)
	if err != nil {
		return nil, err
	}

	upserted, err := s.perfRepo.Upsert(ctx, rows)
	if err != nil {
		return nil, err
	}
	if len(upserted.Bad) > 0 {
		AddWarning(ctx, models.Warning{
			Code:    models.WarnRowsRejected,
			Message: fmt.Sprintf("%d performance rows were rejected by the database", len(upserted.Bad)),
		})
	}

	result := &models.PerformanceUploadResult{
		Status:   "ok",
		Rows:     len(rows),
		Upserted: upserted.OK,
		Rejected: len(upserted.Bad),
	}
	first, last := rows[0].Day, rows[0].Day
	for _, r := range rows[1:] {
		if r.Day.Before(first) {
			first = r.Day
		}
		if r.Day.After(last) {
			last = r.Day
		}
	}
	result.FirstDay = first.Format(ingest.DateLayout)
	result.LastDay = last.Format(ingest.DateLayout)

	log.Infof("performance upload %q: %d rows, %d upserted, %d rejected", filename, result.Rows, result.Upserted, result.Rejected)
	return result, nil
}

func validateDays(days int) error {
	if days < 1 || days > MaxSeriesDays {
		return fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidParameter, MaxSeriesDays)
	}
	return nil
}

// Series returns the newest days of performance ascending
func (s *PerformanceService) Series(ctx context.Context, days int) ([]models.PerformanceDay, error) {
	if err := validateDays(days); err != nil {
		return nil, err
	}
	records, err := s.perfRepo.Series(ctx, days)
	if err != nil {
		return nil, err
	}
	out := make([]models.PerformanceDay, 0, len(records))
	for _, r := range records {
		out = append(out, models.PerformanceDay{
			Day:            r.Day.Format(ingest.DateLayout),
			PortfolioValue: r.PortfolioValue,
			PortfolioRet:   r.PortfolioRet,
			VOORet:         r.VOORet,
			QQQRet:         r.QQQRet,
		})
	}
	return out, nil
}

// EquityCurve returns the account balance of the newest window days ascending.
// Days without a balance are left out.
func (s *PerformanceService) EquityCurve(ctx context.Context, window int) (*models.EquityCurveResponse, error) {
	if err := validateDays(window); err != nil {
		return nil, err
	}
	records, err := s.perfRepo.Series(ctx, window)
	if err != nil {
		return nil, err
	}
	series := make([]models.EquityPoint, 0, len(records))
	for _, r := range records {
		if r.PortfolioValue == nil {
			continue
		}
		series = append(series, models.EquityPoint{Date: r.Day.Format(ingest.DateLayout), Balance: *r.PortfolioValue})
	}
	return &models.EquityCurveResponse{Series: series, Count: len(series)}, nil
}

// LegacyEquityCurve is EquityCurve in the older {date, equity} shape
func (s *PerformanceService) LegacyEquityCurve(ctx context.Context, window int) ([]models.LegacyEquityPoint, error) {
	curve, err := s.EquityCurve(ctx, window)
	if err != nil {
		return nil, err
	}
	out := make([]models.LegacyEquityPoint, len(curve.Series))
	for i, p := range curve.Series {
		out[i] = models.LegacyEquityPoint{Date: p.Date, Equity: p.Balance}
	}
	return out, nil
}

// Rollups compounds the stored daily returns over the fixed reporting windows
func (s *PerformanceService) Rollups(ctx context.Context) (*models.RollupsResponse, error) {
	defer TrackTime("Rollups", time.Now())

	records, err := s.perfRepo.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, repository.ErrNoPerformanceData
	}

	series := make([]analytics.DailyReturns, len(records))
	for i, r := range records {
		series[i] = analytics.DailyReturns{Day: r.Day, Portfolio: r.PortfolioRet, VOO: r.VOORet, QQQ: r.QQQRet}
	}
	rollups := analytics.ComputeRollups(series, s.now())

	return &models.RollupsResponse{
		AsOf:       records[len(records)-1].Day.Format(ingest.DateLayout),
		SinceStart: rollupSet(rollups.SinceStart),
		Last30D:    rollupSet(rollups.Last30D),
		Last7D:     rollupSet(rollups.Last7D),
		YTD:        rollupSet(rollups.YTD),
	}, nil
}

func rollupSet(r analytics.Rollup) models.RollupSet {
	return models.RollupSet{Portfolio: r.Portfolio, VOO: r.VOO, QQQ: r.QQQ}
}

// Metrics returns the stored rolling betas of the newest days ascending
func (s *PerformanceService) Metrics(ctx context.Context, days int) ([]models.MetricsDay, error) {
	if err := validateDays(days); err != nil {
		return nil, err
	}
	rows, err := s.metricsRepo.List(ctx, days)
	if err != nil {
		return nil, err
	}
	out := make([]models.MetricsDay, 0, len(rows))
	for _, m := range rows {
		out = append(out, models.MetricsDay{
			Day:       m.Day.Format(ingest.DateLayout),
			Beta20VOO: m.Beta20VOO,
			Beta30VOO: m.Beta30VOO,
			Beta60VOO: m.Beta60VOO,
			Beta20QQQ: m.Beta20QQQ,
			Beta30QQQ: m.Beta30QQQ,
			Beta60QQQ: m.Beta60QQQ,
		})
	}
	return out, nil
}
