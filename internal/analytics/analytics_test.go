package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func p(v float64) *float64 { return &v }

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestCompound(t *testing.T) {
	got := Compound([]*float64{p(0.01), p(-0.02), p(0.03)})
	want := 1.01*0.98*1.03 - 1
	assert.InDelta(t, want, got, 1e-12)
	assert.InDelta(t, 0.0195, got, 1e-4)
}

func TestCompound_MissingDayIsZero(t *testing.T) {
	with := Compound([]*float64{p(0.01), nil, p(0.03)})
	without := Compound([]*float64{p(0.01), p(0.03)})
	assert.InDelta(t, without, with, 1e-15)
	assert.Equal(t, 0.0, Compound(nil))
}

func TestRollingBeta_ScaledSeries(t *testing.T) {
	obs := make([]Observation, 25)
	for i := range obs {
		b := math.Sin(float64(i)) / 100
		obs[i] = Observation{Portfolio: p(2*b + 0.001), Benchmark: p(b)}
	}

	betas := RollingBeta(obs, 20)
	require.Len(t, betas, 25)
	for i := 0; i < 19; i++ {
		assert.Nil(t, betas[i], "index %d", i)
	}
	for i := 19; i < 25; i++ {
		require.NotNil(t, betas[i], "index %d", i)
		assert.InDelta(t, 2.0, *betas[i], 1e-9)
	}
	assert.InDelta(t, 2.0, *BetaAt(obs, 24, 20), 1e-9)
	assert.Nil(t, BetaAt(obs, 24, 30))
}

func TestRollingBeta_ZeroVarianceAndGaps(t *testing.T) {
	flat := make([]Observation, 20)
	for i := range flat {
		flat[i] = Observation{Portfolio: p(float64(i) / 100), Benchmark: p(0)}
	}
	assert.Nil(t, RollingBeta(flat, 20)[19])

	gappy := make([]Observation, 20)
	for i := range gappy {
		gappy[i] = Observation{Portfolio: p(float64(i)), Benchmark: p(float64(i % 3))}
	}
	gappy[5].Benchmark = nil
	assert.Nil(t, RollingBeta(gappy, 20)[19])
}

func TestComputeRollups(t *testing.T) {
	series := []DailyReturns{
		{Day: date("2023-12-29"), Portfolio: p(0.10), VOO: p(0.01), QQQ: p(0.02)},
		{Day: date("2024-01-02"), Portfolio: p(0.01), VOO: p(0.01), QQQ: nil},
		{Day: date("2024-03-25"), Portfolio: p(-0.02), VOO: p(0.00), QQQ: p(0.01)},
		{Day: date("2024-03-29"), Portfolio: p(0.03), VOO: p(0.02), QQQ: p(0.01)},
	}
	r := ComputeRollups(series, date("2024-04-01"))

	assert.InDelta(t, 1.10*1.01*0.98*1.03-1, r.SinceStart.Portfolio, 1e-12)
	assert.InDelta(t, 1.01*0.98*1.03-1, r.YTD.Portfolio, 1e-12)
	assert.InDelta(t, 0.98*1.03-1, r.Last30D.Portfolio, 1e-12)
	assert.InDelta(t, 0.98*1.03-1, r.Last7D.Portfolio, 1e-12)
	assert.InDelta(t, 1.01*1.01-1, r.YTD.QQQ, 1e-12)
}

func TestComputeRollups_YTDFallsBackToInception(t *testing.T) {
	series := []DailyReturns{
		{Day: date("2024-02-01"), Portfolio: p(0.05)},
		{Day: date("2024-02-02"), Portfolio: p(0.05)},
	}
	r := ComputeRollups(series, date("2024-06-01"))
	assert.Equal(t, r.SinceStart, r.YTD)
	assert.Equal(t, Rollup{}, ComputeRollups(nil, date("2024-06-01")).YTD)
}
