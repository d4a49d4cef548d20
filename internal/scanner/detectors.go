package scanner

import (
	"idx-trader-go/internal/indicator"
	"idx-trader-go/internal/models"
)

// DetectSleepingDragon reports a sideways stock waking up on volume: the last
// sidewaysDays trade in a narrow range (under 15% of the mean close) while
// today's volume exceeds volMultiplier times the period average. Returns the
// price range percentage and the volume ratio alongside the verdict.
func DetectSleepingDragon(bars []models.Bar, sidewaysDays int, volMultiplier float64) (bool, float64, float64) {
	if len(bars) < sidewaysDays {
		return false, 0, 0
	}

	recent := bars[len(bars)-sidewaysDays:]
	high := recent[0].High
	low := recent[0].Low
	var closeSum float64
	for _, b := range recent {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
		closeSum += b.Close
	}
	meanClose := closeSum / float64(len(recent))
	priceRange := (high - low) / meanClose * 100
	isSideways := priceRange < 15

	var volSum float64
	for _, b := range recent[:len(recent)-1] {
		volSum += b.Volume
	}
	avgVol := volSum / float64(len(recent)-1)
	todayVol := recent[len(recent)-1].Volume

	volRatio := 0.0
	if avgVol > 0 {
		volRatio = todayVol / avgVol
	}
	volSpike := avgVol > 0 && todayVol > avgVol*volMultiplier

	return isSideways && volSpike, priceRange, volRatio
}

// Divergence verdicts from DetectOBVDivergence.
const (
	DivergenceNone         = "NORMAL"
	DivergenceAccumulation = "HIDDEN_ACCUMULATION"
	DivergenceBullish      = "BULLISH_DIVERGENCE"
	DivergenceBearish      = "BEARISH_DIVERGENCE"
)

// DetectOBVDivergence compares the price trend against the OBV trend over the
// lookback window. A flat or falling price with rising OBV suggests quiet
// accumulation; a rising price with falling OBV suggests distribution.
func DetectOBVDivergence(bars []models.Bar, lookback int) (bool, string) {
	if len(bars) < lookback {
		return false, DivergenceNone
	}

	recent := bars[len(bars)-lookback:]
	priceChange := (recent[len(recent)-1].Close - recent[0].Close) / recent[0].Close * 100

	obv := indicator.OBV(recent)
	obvChange := obv[len(obv)-1] - obv[0]

	switch {
	case priceChange > -5 && priceChange < 5 && obvChange > 0:
		return true, DivergenceAccumulation
	case priceChange < -5 && obvChange > 0:
		return true, DivergenceBullish
	case priceChange > 5 && obvChange < 0:
		return true, DivergenceBearish
	default:
		return false, DivergenceNone
	}
}

// DetectMorningSpike reports the open-equals-low pattern: the day opened at
// (or within 0.5% of) its low with a daily range above 2%, a sign of strong
// buying from the first tick. Returns the range percentage as well.
func DetectMorningSpike(bars []models.Bar) (bool, float64) {
	if len(bars) == 0 {
		return false, 0
	}

	today := bars[len(bars)-1]
	isOpenLow := (today.Open-today.Low)/today.Open*100 < 0.5
	dailyRange := (today.High - today.Low) / today.Low * 100
	isHighVol := dailyRange > 2

	return isOpenLow && isHighVol, dailyRange
}
