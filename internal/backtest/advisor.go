package backtest

import "idx-trader-go/internal/models"

// Action is the closed vocabulary of live advice outcomes.
type Action string

const (
	ActionBuy      Action = "BUY"
	ActionSell     Action = "SELL"
	ActionHoldBuy  Action = "HOLD_BUY"
	ActionHoldSell Action = "HOLD_SELL"
	ActionNeutral  Action = "NEUTRAL"
	ActionUnknown  Action = "UNKNOWN"
)

// Advice pairs an action with the indicator state that produced it.
type Advice struct {
	Action    Action `json:"action"`
	Rationale string `json:"rationale"`
}

// LiveSignal reapplies a strategy to a lookback window and classifies the
// newest bar. It never runs a full simulation; the window only needs to be
// long enough to stabilize the strategy's indicators.
func LiveSignal(kind StrategyKind, params Params, bars []models.Bar) Advice {
	if len(bars) == 0 {
		return Advice{Action: ActionUnknown, Rationale: "no data available"}
	}
	return NewStrategy(kind, params).Advise(bars)
}
