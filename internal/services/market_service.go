package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/epeers/portfolio-tracker/internal/ingest"
	"github.com/epeers/portfolio-tracker/internal/models"
	"github.com/epeers/portfolio-tracker/internal/polygon"
	"github.com/epeers/portfolio-tracker/internal/repository"
	"github.com/epeers/portfolio-tracker/internal/util"
	log "github.com/sirupsen/logrus"
)

// DefaultTimeframe is used when a bars request names none
const DefaultTimeframe = "6M"

// timeframeLookback maps a chart timeframe to how many calendar days of bars it needs
var timeframeLookback = map[string]int{
	"1D": 2,
	"1M": 32,
	"3M": 100,
	"6M": 200,
	"1Y": 370,
	"5Y": 365 * 5,
}

// BarsSource fetches daily bars from the market-data provider
type BarsSource interface {
	GetDailyBars(ctx context.Context, ticker string, start, end time.Time) ([]polygon.DailyBar, error)
	GetGroupedDaily(ctx context.Context, date time.Time) ([]polygon.DailyBar, error)
}

// BarsStore persists one day of bars per call
type BarsStore interface {
	UpsertDay(ctx context.Context, bars []repository.BarRow) (*repository.UpsertResult, error)
}

// MarketService serves market data and the grouped-daily backfill
type MarketService struct {
	source BarsSource
	store  BarsStore
	now    func() time.Time
}

// NewMarketService creates a new MarketService
func NewMarketService(source BarsSource, store BarsStore) *MarketService {
	return &MarketService{source: source, store: store, now: time.Now}
}

// Bars returns daily bars for ticker covering timeframe, ending today
func (s *MarketService) Bars(ctx context.Context, ticker, timeframe string) (*models.BarsResponse, error) {
	defer TrackTime("Bars", time.Now())

	ticker = repository.NormalizeTicker(ticker)
	if ticker == "" || len(ticker) > 12 {
		return nil, fmt.Errorf("%w: invalid ticker", ErrInvalidParameter)
	}
	timeframe = strings.ToUpper(strings.TrimSpace(timeframe))
	if timeframe == "" {
		timeframe = DefaultTimeframe
	}
	lookback, ok := timeframeLookback[timeframe]
	if !ok {
		return nil, fmt.Errorf("%w: timeframe must be one of 1D, 1M, 3M, 6M, 1Y, 5Y", ErrInvalidParameter)
	}

	end := ingest.Today(s.now())
	start := end.AddDate(0, 0, -lookback)
	bars, err := s.source.GetDailyBars(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}
	return &models.BarsResponse{
		Ticker:    ticker,
		Timeframe: timeframe,
		From:      start.Format(ingest.DateLayout),
		To:        end.Format(ingest.DateLayout),
		Bars:      toModelBars(bars, false),
	}, nil
}

// BatchBars fetches daily bars for several tickers one after another. A ticker
// that fails is reported in Errors and does not stop the rest.
func (s *MarketService) BatchBars(ctx context.Context, req models.BatchBarsRequest) (*models.BatchBarsResponse, error) {
	defer TrackTime("BatchBars", time.Now())

	start, end := req.Start.Time, req.End.Time
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("%w: start and end are required", ErrInvalidParameter)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end is before start", ErrInvalidRange)
	}
	tickers := append(append([]string{}, req.Tickers...), req.Symbols...)
	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: tickers is required", ErrInvalidParameter)
	}

	resp := &models.BatchBarsResponse{
		Start:   start.Format(ingest.DateLayout),
		End:     end.Format(ingest.DateLayout),
		Results: make(map[string][]models.Bar),
	}
	for _, raw := range tickers {
		ticker := repository.NormalizeTicker(raw)
		if ticker == "" {
			continue
		}
		if _, done := resp.Results[ticker]; done {
			continue
		}
		bars, err := s.source.GetDailyBars(ctx, ticker, start, end)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warnf("bars fetch failed for %s: %v", ticker, err)
			if resp.Errors == nil {
				resp.Errors = make(map[string]string)
			}
			resp.Errors[ticker] = err.Error()
			resp.Warnings = append(resp.Warnings, models.Warning{
				Code:    models.WarnTickerFetch,
				Message: fmt.Sprintf("%s: %v", ticker, err),
			})
			continue
		}
		resp.Results[ticker] = toModelBars(bars, true)
	}
	return resp, nil
}

// Backfill loads grouped-daily bars for every weekday in [start, end]. Each day
// is fetched and committed on its own; a day that fails is logged and skipped.
func (s *MarketService) Backfill(ctx context.Context, start, end time.Time) (*models.BackfillResult, error) {
	defer TrackTime("Backfill", time.Now())

	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("%w: start and end are required", ErrInvalidParameter)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end is before start", ErrInvalidRange)
	}

	result := &models.BackfillResult{
		Start: start.Format(ingest.DateLayout),
		End:   end.Format(ingest.DateLayout),
		Days:  []models.BackfillDayResult{},
	}
	for _, day := range util.Weekdays(start, end) {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		dayResult := s.backfillDay(ctx, day)
		if dayResult.Error != "" {
			result.FailedDays++
			AddWarning(ctx, models.Warning{
				Code:    models.WarnBackfillDay,
				Message: fmt.Sprintf("%s: %s", dayResult.Date, dayResult.Error),
			})
		}
		result.TotalOK += dayResult.OK
		result.TotalBad += dayResult.Bad
		result.Days = append(result.Days, dayResult)
	}
	log.Infof("bars backfill %s..%s: %d ok, %d bad, %d failed days",
		result.Start, result.End, result.TotalOK, result.TotalBad, result.FailedDays)
	return result, nil
}

func (s *MarketService) backfillDay(ctx context.Context, day time.Time) models.BackfillDayResult {
	ds := day.Format(ingest.DateLayout)
	out := models.BackfillDayResult{Date: ds}

	bars, err := s.source.GetGroupedDaily(ctx, day)
	if err != nil {
		log.Errorf("%s: polygon error: %v", ds, err)
		out.Error = err.Error()
		return out
	}
	out.Fetched = len(bars)
	if len(bars) == 0 {
		log.Infof("%s: no rows (holiday?)", ds)
		out.Skipped = true
		return out
	}

	rows := make([]repository.BarRow, len(bars))
	for i, b := range bars {
		rows[i] = repository.BarRow{
			Date: day, Ticker: b.Ticker,
			Open: b.Open, High: b.High, Low: b.Low, Close: b.Close,
			Volume: b.Volume, VWAP: b.VWAP, Trades: b.Trades,
		}
	}

	upserted, err := s.store.UpsertDay(ctx, rows)
	if err != nil {
		log.Errorf("%s: commit failed: %v", ds, err)
		out.Error = err.Error()
		return out
	}
	out.OK = upserted.OK
	out.Bad = len(upserted.Bad)
	log.Infof("%s: upserted %d rows, %d bad", ds, out.OK, out.Bad)
	return out
}

func toModelBars(bars []polygon.DailyBar, withTicker bool) []models.Bar {
	out := make([]models.Bar, 0, len(bars))
	for _, b := range bars {
		m := models.Bar{
			Date:   b.Date.Format(ingest.DateLayout),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
			VWAP:   b.VWAP,
			Trades: b.Trades,
		}
		if withTicker {
			m.Ticker = b.Ticker
		}
		out = append(out, m)
	}
	return out
}
