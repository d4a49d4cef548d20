package backtest

import (
	"fmt"

	"idx-trader-go/internal/indicator"
	"idx-trader-go/internal/models"
)

// MACrossStrategy buys when the fast EMA crosses above the slow EMA and
// sells on the mirrored crossing (golden cross / death cross).
type MACrossStrategy struct {
	FastPeriod int
	SlowPeriod int
}

func (s *MACrossStrategy) Kind() StrategyKind {
	return KindMACross
}

func (s *MACrossStrategy) Signals(bars []models.Bar) []models.Signal {
	prices := closes(bars)
	fast := indicator.EMA(prices, s.FastPeriod)
	slow := indicator.EMA(prices, s.SlowPeriod)

	signals := make([]models.Signal, len(bars))
	for i := range bars {
		switch {
		case crossedAbove(fast, slow, i):
			signals[i] = models.SignalBuy
		case crossedBelow(fast, slow, i):
			signals[i] = models.SignalSell
		}
	}
	return signals
}

func (s *MACrossStrategy) Advise(bars []models.Bar) Advice {
	if len(bars) == 0 {
		return Advice{Action: ActionUnknown, Rationale: "no data available"}
	}

	prices := closes(bars)
	fast := indicator.EMA(prices, s.FastPeriod)
	slow := indicator.EMA(prices, s.SlowPeriod)
	signals := s.Signals(bars)

	last := len(bars) - 1
	f, sl := fast[last], slow[last]

	switch signals[last] {
	case models.SignalBuy:
		return Advice{
			Action:    ActionBuy,
			Rationale: fmt.Sprintf("Golden Cross! Fast MA (%.0f) > Slow MA (%.0f)", f, sl),
		}
	case models.SignalSell:
		return Advice{
			Action:    ActionSell,
			Rationale: fmt.Sprintf("Death Cross! Fast MA (%.0f) < Slow MA (%.0f)", f, sl),
		}
	}

	if f > sl {
		return Advice{
			Action:    ActionHoldBuy,
			Rationale: fmt.Sprintf("Uptrend. Fast MA (%.0f) > Slow MA (%.0f)", f, sl),
		}
	}
	return Advice{
		Action:    ActionHoldSell,
		Rationale: fmt.Sprintf("Downtrend. Fast MA (%.0f) < Slow MA (%.0f)", f, sl),
	}
}
