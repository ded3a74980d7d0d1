package engine

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// mean returns the arithmetic mean of values, or 0 for an empty slice.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// stddev returns the sample (n-1 denominator) standard deviation of values,
// or 0 for fewer than two values.
func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

// percentile returns the p-th percentile (0-100) of values, matching the
// teacher's CalculatePercentile behavior.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return stat.Quantile(p/100.0, stat.Empirical, sorted, nil)
}

// pearsonCorrelation returns the absolute Pearson correlation coefficient
// between two equal-length series, or 0 if fewer than 3 points are given.
func pearsonCorrelation(x, y []float64) float64 {
	n := len(x)
	if n > len(y) {
		n = len(y)
	}
	if n < 3 {
		return 0
	}
	c := stat.Correlation(x[:n], y[:n], nil)
	return math.Abs(c)
}

// autocorrelationLag1 returns the lag-1 autocorrelation of values.
func autocorrelationLag1(values []float64) float64 {
	n := len(values)
	if n < 3 {
		return 0
	}
	m := mean(values)
	var num, den float64
	for i := 0; i < n-1; i++ {
		num += (values[i] - m) * (values[i+1] - m)
	}
	for i := 0; i < n; i++ {
		den += (values[i] - m) * (values[i] - m)
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// coefficientOfVariation is the "spikiness" measure used by the teacher's
// CalculateVolatilityFromValues: stddev / mean.
func coefficientOfVariation(values []float64) float64 {
	m := mean(values)
	if m == 0 {
		return 0
	}
	return stddev(values) / m
}

// zScoreAnomalyCount counts points whose absolute z-score exceeds threshold.
func zScoreAnomalyCount(values []float64, threshold float64) int {
	if len(values) < 3 {
		return 0
	}
	m := mean(values)
	sd := stddev(values)
	if sd == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if math.Abs(v-m)/sd > threshold {
			count++
		}
	}
	return count
}

// rank01 returns the fraction of values strictly less than v — an empirical
// CDF evaluation used by the distributional detector's per-metric breakdown.
func rank01(values []float64, v float64) float64 {
	if len(values) == 0 {
		return 0
	}
	below := 0
	for _, x := range values {
		if x < v {
			below++
		}
	}
	return float64(below) / float64(len(values))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
