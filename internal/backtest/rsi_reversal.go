package backtest

import (
	"fmt"

	"idx-trader-go/internal/indicator"
	"idx-trader-go/internal/models"
)

// RSIReversalStrategy buys when RSI crosses back above the oversold level
// and sells when it falls back below the overbought level.
type RSIReversalStrategy struct {
	Period     int
	Oversold   float64
	Overbought float64
}

func (s *RSIReversalStrategy) Kind() StrategyKind {
	return KindRSIReversal
}

func (s *RSIReversalStrategy) Signals(bars []models.Bar) []models.Signal {
	rsi := indicator.RSI(closes(bars), s.Period)

	signals := make([]models.Signal, len(bars))
	for i := 1; i < len(bars); i++ {
		if !indicator.Defined(rsi[i]) || !indicator.Defined(rsi[i-1]) {
			continue
		}
		switch {
		case rsi[i] > s.Oversold && rsi[i-1] <= s.Oversold:
			signals[i] = models.SignalBuy
		case rsi[i] < s.Overbought && rsi[i-1] >= s.Overbought:
			signals[i] = models.SignalSell
		}
	}
	return signals
}

func (s *RSIReversalStrategy) Advise(bars []models.Bar) Advice {
	if len(bars) == 0 {
		return Advice{Action: ActionUnknown, Rationale: "no data available"}
	}

	rsi := indicator.RSI(closes(bars), s.Period)
	signals := s.Signals(bars)
	last := len(bars) - 1
	r := rsi[last]

	switch signals[last] {
	case models.SignalBuy:
		return Advice{
			Action:    ActionBuy,
			Rationale: fmt.Sprintf("RSI Reversal Up! RSI (%.1f) crossed above %.0f", r, s.Oversold),
		}
	case models.SignalSell:
		return Advice{
			Action:    ActionSell,
			Rationale: fmt.Sprintf("RSI Reversal Down! RSI (%.1f) crossed below %.0f", r, s.Overbought),
		}
	}

	if !indicator.Defined(r) {
		return Advice{Action: ActionUnknown, Rationale: "RSI still warming up"}
	}
	if r > 50 {
		return Advice{Action: ActionNeutral, Rationale: fmt.Sprintf("RSI Bullish Zone (%.1f)", r)}
	}
	return Advice{Action: ActionNeutral, Rationale: fmt.Sprintf("RSI Bearish Zone (%.1f)", r)}
}
