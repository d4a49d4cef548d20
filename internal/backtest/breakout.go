package backtest

import (
	"fmt"

	"idx-trader-go/internal/indicator"
	"idx-trader-go/internal/models"
)

// BreakoutStrategy signals while the close is outside a Donchian-style
// channel: above the rolling high of the last Lookback bars, or below the
// rolling low of the last Lookback/2 bars. Both windows exclude the current
// bar. Unlike the crossing strategies the condition is level-held, so the
// same signal can repeat on consecutive bars while the close stays outside
// the channel.
type BreakoutStrategy struct {
	Lookback int
}

func (s *BreakoutStrategy) Kind() StrategyKind {
	return KindBreakout
}

func (s *BreakoutStrategy) Signals(bars []models.Bar) []models.Signal {
	highRoll := indicator.RollingMax(highs(bars), s.Lookback)
	lowRoll := indicator.RollingMin(lows(bars), s.Lookback/2)

	signals := make([]models.Signal, len(bars))
	for i, b := range bars {
		switch {
		case indicator.Defined(highRoll[i]) && b.Close > highRoll[i]:
			signals[i] = models.SignalBuy
		case indicator.Defined(lowRoll[i]) && b.Close < lowRoll[i]:
			signals[i] = models.SignalSell
		}
	}
	return signals
}

func (s *BreakoutStrategy) Advise(bars []models.Bar) Advice {
	if len(bars) == 0 {
		return Advice{Action: ActionUnknown, Rationale: "no data available"}
	}

	highRoll := indicator.RollingMax(highs(bars), s.Lookback)
	lowRoll := indicator.RollingMin(lows(bars), s.Lookback/2)
	signals := s.Signals(bars)

	last := len(bars) - 1
	close := bars[last].Close

	switch signals[last] {
	case models.SignalBuy:
		return Advice{
			Action:    ActionBuy,
			Rationale: fmt.Sprintf("Breakout! Close (%.0f) > %d-day high (%.0f)", close, s.Lookback, highRoll[last]),
		}
	case models.SignalSell:
		return Advice{
			Action:    ActionSell,
			Rationale: fmt.Sprintf("Breakdown! Close (%.0f) < %d-day low (%.0f)", close, s.Lookback/2, lowRoll[last]),
		}
	}

	if indicator.Defined(highRoll[last]) && indicator.Defined(lowRoll[last]) {
		return Advice{
			Action:    ActionNeutral,
			Rationale: fmt.Sprintf("Consolidation. Close %.0f inside channel %.0f-%.0f", close, lowRoll[last], highRoll[last]),
		}
	}
	return Advice{
		Action:    ActionNeutral,
		Rationale: fmt.Sprintf("Consolidation. Close %.0f", close),
	}
}
