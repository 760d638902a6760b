// Package analytics holds the pure numeric routines behind the performance
// readers and the rolling beta job.
package analytics

import "math"

// BetaWindows are the trailing observation counts betas are computed over.
var BetaWindows = []int{20, 30, 60}

// Observation is one day of portfolio and benchmark returns. Nil means the
// source row had no value.
type Observation struct {
	Portfolio *float64
	Benchmark *float64
}

// RollingBeta returns, for every index i, cov(p, b) / var(b) over the window
// observations ending at i. The result is nil until a full window is
// available, when any value in the window is missing, or when the benchmark
// variance is zero or the ratio is not finite.
func RollingBeta(obs []Observation, window int) []*float64 {
	out := make([]*float64, len(obs))
	if window < 2 {
		return out
	}
	for i := window - 1; i < len(obs); i++ {
		out[i] = windowBeta(obs[i-window+1 : i+1])
	}
	return out
}

// BetaAt computes the beta of the window ending at index i.
func BetaAt(obs []Observation, i, window int) *float64 {
	if window < 2 || i < window-1 || i >= len(obs) {
		return nil
	}
	return windowBeta(obs[i-window+1 : i+1])
}

func windowBeta(win []Observation) *float64 {
	n := float64(len(win))
	var sumP, sumB float64
	for _, o := range win {
		if o.Portfolio == nil || o.Benchmark == nil {
			return nil
		}
		sumP += *o.Portfolio
		sumB += *o.Benchmark
	}
	meanP, meanB := sumP/n, sumB/n

	var cov, variance float64
	for _, o := range win {
		db := *o.Benchmark - meanB
		cov += (*o.Portfolio - meanP) * db
		variance += db * db
	}
	cov /= n - 1
	variance /= n - 1

	if variance == 0 || math.IsNaN(variance) || math.IsInf(variance, 0) {
		return nil
	}
	beta := cov / variance
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		return nil
	}
	return &beta
}
