package backtest

import (
	"fmt"

	"idx-trader-go/internal/config"
	"idx-trader-go/internal/indicator"
	"idx-trader-go/internal/models"
)

// StrategyKind identifies one of the built-in strategy rules.
type StrategyKind int

const (
	KindMACross StrategyKind = iota
	KindRSIReversal
	KindBreakout
)

func (k StrategyKind) String() string {
	switch k {
	case KindMACross:
		return "MA Cross"
	case KindRSIReversal:
		return "RSI Reversal"
	case KindBreakout:
		return "Breakout"
	default:
		return "Unknown"
	}
}

// ParseStrategyKind maps a configured strategy name to its kind.
func ParseStrategyKind(name string) (StrategyKind, error) {
	switch name {
	case "MA Cross", "ma_cross":
		return KindMACross, nil
	case "RSI Reversal", "rsi_reversal":
		return KindRSIReversal, nil
	case "Breakout", "breakout":
		return KindBreakout, nil
	default:
		return 0, fmt.Errorf("unknown strategy %q", name)
	}
}

// Params holds the numeric parameters of all strategy kinds; each strategy
// reads only its own fields.
type Params struct {
	FastPeriod int     `mapstructure:"fast_period"`
	SlowPeriod int     `mapstructure:"slow_period"`
	Period     int     `mapstructure:"period"`
	Oversold   float64 `mapstructure:"oversold"`
	Overbought float64 `mapstructure:"overbought"`
	Lookback   int     `mapstructure:"lookback"`
}

// DefaultParams mirrors the conventional defaults for each rule.
func DefaultParams() Params {
	return Params{
		FastPeriod: 20,
		SlowPeriod: 50,
		Period:     14,
		Oversold:   30,
		Overbought: 70,
		Lookback:   20,
	}
}

// ParamsFrom overlays configured values onto the defaults, ignoring unset
// (zero) fields.
func ParamsFrom(cfg config.Backtest) Params {
	params := DefaultParams()
	if cfg.FastPeriod > 0 {
		params.FastPeriod = cfg.FastPeriod
	}
	if cfg.SlowPeriod > 0 {
		params.SlowPeriod = cfg.SlowPeriod
	}
	if cfg.Period > 0 {
		params.Period = cfg.Period
	}
	if cfg.Oversold > 0 {
		params.Oversold = cfg.Oversold
	}
	if cfg.Overbought > 0 {
		params.Overbought = cfg.Overbought
	}
	if cfg.Lookback > 0 {
		params.Lookback = cfg.Lookback
	}
	return params
}

// Strategy maps a bar series to per-bar signals and, for the newest bar, to
// an actionable advice.
type Strategy interface {
	// Kind returns the strategy's identity.
	Kind() StrategyKind

	// Signals returns one signal per input bar.
	Signals(bars []models.Bar) []models.Signal

	// Advise inspects the newest bar and classifies it into an Advice.
	Advise(bars []models.Bar) Advice
}

// NewStrategy builds the strategy for a kind with the given parameters.
func NewStrategy(kind StrategyKind, p Params) Strategy {
	switch kind {
	case KindRSIReversal:
		return &RSIReversalStrategy{Period: p.Period, Oversold: p.Oversold, Overbought: p.Overbought}
	case KindBreakout:
		return &BreakoutStrategy{Lookback: p.Lookback}
	default:
		return &MACrossStrategy{FastPeriod: p.FastPeriod, SlowPeriod: p.SlowPeriod}
	}
}

func closes(bars []models.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

func highs(bars []models.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.High
	}
	return out
}

func lows(bars []models.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Low
	}
	return out
}

func defined4(a, b, c, d float64) bool {
	return indicator.Defined(a) && indicator.Defined(b) && indicator.Defined(c) && indicator.Defined(d)
}

// crossedAbove reports an upward crossing of a over b between the previous
// and current index. All four values must be defined, otherwise there is no
// crossing.
func crossedAbove(a, b []float64, i int) bool {
	if i == 0 {
		return false
	}
	if !defined4(a[i], b[i], a[i-1], b[i-1]) {
		return false
	}
	return a[i] > b[i] && a[i-1] <= b[i-1]
}

// crossedBelow is the mirror of crossedAbove.
func crossedBelow(a, b []float64, i int) bool {
	if i == 0 {
		return false
	}
	if !defined4(a[i], b[i], a[i-1], b[i-1]) {
		return false
	}
	return a[i] < b[i] && a[i-1] >= b[i-1]
}
