package analytics

import (
	"math"
	"time"
)

// Compound returns the compounded return of a series of daily returns,
// exp(sum(log1p(r))) - 1. Missing days contribute zero.
func Compound(returns []*float64) float64 {
	var sum float64
	for _, r := range returns {
		if r == nil {
			continue
		}
		sum += math.Log1p(*r)
	}
	return math.Expm1(sum)
}

// DailyReturns is one day of portfolio and benchmark returns
type DailyReturns struct {
	Day       time.Time
	Portfolio *float64
	VOO       *float64
	QQQ       *float64
}

// Rollup is the compounded return of each series over one window
type Rollup struct {
	Portfolio float64
	VOO       float64
	QQQ       float64
}

// Rollups are the fixed reporting windows
type Rollups struct {
	SinceStart Rollup
	Last30D    Rollup
	Last7D     Rollup
	YTD        Rollup
}

// ComputeRollups compounds series (ascending by day) over since-inception, the
// trailing 30 and 7 calendar days relative to today, and year to date. When the
// first day of the series falls after January 1 of today's year, YTD equals
// since-inception.
func ComputeRollups(series []DailyReturns, today time.Time) Rollups {
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	jan1 := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	out := Rollups{
		SinceStart: rollupFrom(series, time.Time{}),
		Last30D:    rollupFrom(series, today.AddDate(0, 0, -30)),
		Last7D:     rollupFrom(series, today.AddDate(0, 0, -7)),
	}
	if len(series) > 0 && series[0].Day.After(jan1) {
		out.YTD = out.SinceStart
	} else {
		out.YTD = rollupFrom(series, jan1)
	}
	return out
}

func rollupFrom(series []DailyReturns, start time.Time) Rollup {
	var p, v, q []*float64
	for _, d := range series {
		if d.Day.Before(start) {
			continue
		}
		p = append(p, d.Portfolio)
		v = append(v, d.VOO)
		q = append(q, d.QQQ)
	}
	return Rollup{Portfolio: Compound(p), VOO: Compound(v), QQQ: Compound(q)}
}
