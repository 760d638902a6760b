package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/epeers/portfolio-tracker/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePerformance struct {
	records []repository.PerformanceRecord
}

func (f *fakePerformance) All(ctx context.Context) ([]repository.PerformanceRecord, error) {
	return f.records, nil
}

func (f *fakePerformance) Until(ctx context.Context, end time.Time) ([]repository.PerformanceRecord, error) {
	var out []repository.PerformanceRecord
	for _, r := range f.records {
		if !r.Day.After(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

// fakeMetrics applies the same target rule as the SQL: the newest day without metrics.
type fakeMetrics struct {
	perf    *fakePerformance
	written map[time.Time]repository.MetricsRow
	upserts int
}

func (f *fakeMetrics) LatestDayMissingMetrics(ctx context.Context) (*time.Time, error) {
	var latest *time.Time
	for _, r := range f.perf.records {
		d := r.Day
		if _, ok := f.written[d]; !ok && (latest == nil || d.After(*latest)) {
			latest = &d
		}
	}
	return latest, nil
}

func (f *fakeMetrics) Upsert(ctx context.Context, rows []repository.MetricsRow) (*repository.UpsertResult, error) {
	f.upserts++
	for _, r := range rows {
		f.written[r.Day] = r
	}
	return &repository.UpsertResult{Total: len(rows), OK: len(rows)}, nil
}

func performanceDays(n int) *fakePerformance {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	perf := &fakePerformance{}
	for i := 0; i < n; i++ {
		b := math.Sin(float64(i)) / 100
		port := 1.5*b + 0.0005
		perf.records = append(perf.records, repository.PerformanceRecord{
			Day:          start.AddDate(0, 0, i),
			PortfolioRet: fp(port),
			VOORet:       fp(b),
			QQQRet:       fp(b),
		})
	}
	return perf
}

func TestBetaService_UpdateWritesLatestDayOnce(t *testing.T) {
	perf := performanceDays(25)
	metrics := &fakeMetrics{perf: perf, written: map[time.Time]repository.MetricsRow{}}
	svc := NewBetaService(perf, metrics)

	first, err := svc.UpdateLatestMissing(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-01-25", first.Day)
	assert.Equal(t, 1, first.Written)

	row := metrics.written[perf.records[24].Day]
	require.NotNil(t, row.Beta20VOO)
	assert.InDelta(t, 1.5, *row.Beta20VOO, 1e-9)
	assert.Nil(t, row.Beta30VOO)
	assert.Nil(t, row.Beta60QQQ)

	second, err := svc.UpdateLatestMissing(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "up_to_date", second.Status)
	assert.Equal(t, 0, second.Written)
	assert.Equal(t, 1, metrics.upserts)
}

func TestBetaService_UpdateNeverRewritesHistory(t *testing.T) {
	perf := performanceDays(25)
	metrics := &fakeMetrics{perf: perf, written: map[time.Time]repository.MetricsRow{}}
	svc := NewBetaService(perf, metrics)

	_, err := svc.UpdateLatestMissing(context.Background())
	require.NoError(t, err)
	frozen := metrics.written[perf.records[24].Day]

	// upstream data for a written day changes; an update run leaves it alone
	perf.records[24].PortfolioRet = fp(0.5)
	result, err := svc.UpdateLatestMissing(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Written)
	assert.Equal(t, frozen, metrics.written[perf.records[24].Day])

	// a new day is picked up
	perf.records = append(perf.records, repository.PerformanceRecord{
		Day: perf.records[24].Day.AddDate(0, 0, 1), PortfolioRet: fp(0.01), VOORet: fp(0.02), QQQRet: fp(0.01),
	})
	result, err = svc.UpdateLatestMissing(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-01-26", result.Day)
}

func TestBetaService_UpdateFillsOlderGap(t *testing.T) {
	perf := performanceDays(25)
	metrics := &fakeMetrics{perf: perf, written: map[time.Time]repository.MetricsRow{}}
	svc := NewBetaService(perf, metrics)

	// every day but 01-10 already has metrics, including later ones
	for _, r := range perf.records {
		if r.Day.Format("2006-01-02") != "2024-01-10" {
			metrics.written[r.Day] = repository.MetricsRow{Day: r.Day}
		}
	}

	result, err := svc.UpdateLatestMissing(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", result.Day)
	assert.Equal(t, 1, result.Written)
	assert.Equal(t, 1, metrics.upserts)

	// the gap is filled from returns up to that day only
	row := metrics.written[perf.records[9].Day]
	assert.Nil(t, row.Beta20VOO)

	again, err := svc.UpdateLatestMissing(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "up_to_date", again.Status)
	assert.Equal(t, 1, metrics.upserts)
}

func TestBetaService_BackfillRewritesEveryDay(t *testing.T) {
	perf := performanceDays(61)
	metrics := &fakeMetrics{perf: perf, written: map[time.Time]repository.MetricsRow{}}
	svc := NewBetaService(perf, metrics)

	result, err := svc.BackfillAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 61, result.Written)
	assert.Len(t, metrics.written, 61)

	assert.Nil(t, metrics.written[perf.records[18].Day].Beta20VOO)
	last := metrics.written[perf.records[60].Day]
	require.NotNil(t, last.Beta60QQQ)
	assert.InDelta(t, 1.5, *last.Beta60QQQ, 1e-9)
}

func TestBetaService_BackfillEmpty(t *testing.T) {
	perf := &fakePerformance{}
	svc := NewBetaService(perf, &fakeMetrics{perf: perf, written: map[time.Time]repository.MetricsRow{}})
	result, err := svc.BackfillAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "no_data", result.Status)
}
