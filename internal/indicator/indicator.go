// Package indicator provides the technical indicator series consumed by the
// backtest strategies and scanners. Warm-up gaps are represented as NaN;
// callers must check Defined before comparing values.
package indicator

import (
	"math"

	"idx-trader-go/internal/models"
)

// Defined reports whether an indicator value is usable (not a warm-up gap).
func Defined(v float64) bool {
	return !math.IsNaN(v)
}

// EMA computes an exponential moving average with smoothing 2/(period+1),
// seeded at the first value.
func EMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	alpha := 2.0 / (float64(period) + 1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// RSI computes the relative strength index using simple moving averages of
// gains and losses over the period. The first `period` values are NaN.
func RSI(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(values) <= period {
		return out
	}

	for i := period; i < len(values); i++ {
		var gain, loss float64
		for j := i - period + 1; j <= i; j++ {
			delta := values[j] - values[j-1]
			if delta > 0 {
				gain += delta
			} else {
				loss -= delta
			}
		}
		avgGain := gain / float64(period)
		avgLoss := loss / float64(period)

		if avgLoss == 0 {
			if avgGain == 0 {
				continue // flat window, RSI undefined
			}
			out[i] = 100
			continue
		}
		rs := avgGain / avgLoss
		out[i] = 100 - (100 / (1 + rs))
	}
	return out
}

// ATR computes the average true range over the period. The first `period`
// values are NaN because the true range needs a previous close.
func ATR(bars []models.Bar, period int) []float64 {
	out := make([]float64, len(bars))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(bars) <= period {
		return out
	}

	tr := make([]float64, len(bars))
	tr[0] = math.NaN()
	for i := 1; i < len(bars); i++ {
		highLow := bars[i].High - bars[i].Low
		highClose := math.Abs(bars[i].High - bars[i-1].Close)
		lowClose := math.Abs(bars[i].Low - bars[i-1].Close)
		tr[i] = math.Max(highLow, math.Max(highClose, lowClose))
	}

	for i := period; i < len(bars); i++ {
		var sum float64
		for j := i - period + 1; j <= i; j++ {
			sum += tr[j]
		}
		out[i] = sum / float64(period)
	}
	return out
}

// OBV computes on-balance volume, starting at zero.
func OBV(bars []models.Bar) []float64 {
	out := make([]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		switch {
		case bars[i].Close > bars[i-1].Close:
			out[i] = out[i-1] + bars[i].Volume
		case bars[i].Close < bars[i-1].Close:
			out[i] = out[i-1] - bars[i].Volume
		default:
			out[i] = out[i-1]
		}
	}
	return out
}

// VWAP computes the cumulative volume-weighted average price.
func VWAP(bars []models.Bar) []float64 {
	out := make([]float64, len(bars))
	var pvSum, vSum float64
	for i, b := range bars {
		tp := (b.High + b.Low + b.Close) / 3
		pvSum += tp * b.Volume
		vSum += b.Volume
		if vSum == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = pvSum / vSum
	}
	return out
}

// PivotPoints computes the classic pivot, first resistance and first support
// from the second-to-last bar, truncated to whole price points.
func PivotPoints(bars []models.Bar) (pivot, r1, s1 int) {
	if len(bars) < 2 {
		return 0, 0, 0
	}
	prev := bars[len(bars)-2]
	p := (prev.High + prev.Low + prev.Close) / 3
	return int(p), int(2*p - prev.Low), int(2*p - prev.High)
}

// RollingMax returns, per index, the maximum of the prior `window` values
// (the current value excluded). Indices without a full window are NaN.
func RollingMax(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	for i := window; i < len(values); i++ {
		max := values[i-window]
		for j := i - window + 1; j < i; j++ {
			if values[j] > max {
				max = values[j]
			}
		}
		out[i] = max
	}
	return out
}

// RollingMin is the mirror of RollingMax.
func RollingMin(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	for i := window; i < len(values); i++ {
		min := values[i-window]
		for j := i - window + 1; j < i; j++ {
			if values[j] < min {
				min = values[j]
			}
		}
		out[i] = min
	}
	return out
}
