// Package signals provides the price and fundamentals calculations behind a
// stock's metrics. Every function reports absence rather than panicking.
package signals

import (
	"math"

	"github.com/bobmcallan/stockbot/internal/models"
)

// DefaultRSIWindow is the look-back used when no window is configured.
const DefaultRSIWindow = 14

// PeriodPerformance returns the percentage change from the first to the
// last close of the series.
func PeriodPerformance(series models.PriceSeries) (pct models.Percent, ok bool) {
	defer guard(&ok)

	first, ok := series.FirstClose()
	if !ok {
		return 0, false
	}
	last, _ := series.LastClose()
	if first == 0 {
		return 0, false
	}
	v := (last - first) / first * 100
	if !finite(v) {
		return 0, false
	}
	return models.Percent(v), true
}

// RSI calculates the Relative Strength Index over the closes of series.
//
// Gains and losses are smoothed with an adjusted exponentially weighted mean
// (alpha = 1/window). The series must hold at least window observations.
// A zero average loss yields 100.
func RSI(series models.PriceSeries, window int) (rsi models.Oscillator, ok bool) {
	defer guard(&ok)

	if window < 1 || len(series) < window || len(series) < 2 {
		return 0, false
	}

	closes := series.Closes()
	gains := make([]float64, 0, len(closes)-1)
	losses := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if !finite(delta) {
			return 0, false
		}
		gains = append(gains, math.Max(delta, 0))
		losses = append(losses, math.Max(-delta, 0))
	}

	alpha := 1.0 / float64(window)
	avgGain := adjustedEWMA(gains, alpha)
	avgLoss := adjustedEWMA(losses, alpha)

	if avgLoss == 0 {
		return 100, true
	}

	rs := avgGain / avgLoss
	v := 100 - (100 / (1 + rs))
	if !finite(v) {
		return 0, false
	}
	return models.Oscillator(v), true
}

// adjustedEWMA returns the exponentially weighted mean of values evaluated at
// the last element, normalising by the sum of weights.
func adjustedEWMA(values []float64, alpha float64) float64 {
	decay := 1 - alpha
	var num, den float64
	weight := 1.0
	for i := len(values) - 1; i >= 0; i-- {
		num += weight * values[i]
		den += weight
		weight *= decay
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// ClassifyRSI classifies RSI value
func ClassifyRSI(rsi float64) string {
	if rsi >= 70 {
		return "overbought"
	}
	if rsi <= 30 {
		return "oversold"
	}
	return "neutral"
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// guard converts a panic in the calling calculation into absence.
func guard(ok *bool) {
	if r := recover(); r != nil {
		*ok = false
	}
}
