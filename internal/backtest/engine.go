package backtest

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"idx-trader-go/internal/models"
)

// Engine replays a bar series through a strategy and simulates a single-
// position, lot-quantized account with fee-inclusive accounting. A run is one
// synchronous pass over the series; results are deterministic for identical
// inputs. An Engine must not be shared across concurrent runs.
type Engine struct {
	logger         *zap.Logger
	initialCapital float64
	feeBuy         float64
	feeSell        float64
}

// NewEngine creates a backtest engine. Fees are fractional rates, e.g.
// 0.0015 for 0.15%.
func NewEngine(logger *zap.Logger, initialCapital, feeBuy, feeSell float64) *Engine {
	return &Engine{
		logger:         logger.Named("backtest"),
		initialCapital: initialCapital,
		feeBuy:         feeBuy,
		feeSell:        feeSell,
	}
}

// Result is the complete outcome of one simulation run.
type Result struct {
	RunID    uuid.UUID            `json:"run_id"`
	Ticker   string               `json:"ticker"`
	Strategy string               `json:"strategy"`
	Trades   []models.Trade       `json:"trades"`
	Equity   []models.EquityPoint `json:"equity"`
	Metrics  models.Metrics       `json:"metrics"`
	Signals  []models.Signal      `json:"signals"`
}

// Run simulates the strategy over the bar series. It returns nil when the
// series is empty; callers must treat that as "insufficient data".
func (e *Engine) Run(ticker string, bars []models.Bar, strategy Strategy) *Result {
	if len(bars) == 0 {
		e.logger.Warn("No bars to simulate", zap.String("ticker", ticker))
		return nil
	}

	signals := strategy.Signals(bars)

	capital := e.initialCapital
	var position *models.Position
	var trades []models.Trade
	equity := make([]models.EquityPoint, 0, len(bars))

	for i, bar := range bars {
		price := bar.Close
		signal := signals[i]

		// Mark to market before any execution on this bar.
		value := capital
		if position != nil {
			value += float64(position.Shares()) * price
		}
		equity = append(equity, models.EquityPoint{Timestamp: bar.Timestamp, Equity: value})

		switch {
		case position != nil && signal == models.SignalSell:
			capital += e.closePosition(&trades[len(trades)-1], position, bar, models.StatusWin)
			position = nil

		case position == nil && signal == models.SignalBuy:
			lots := e.affordableLots(capital, price)
			if lots == 0 {
				e.logger.Debug("Buy signal skipped, capital below one lot",
					zap.String("ticker", ticker),
					zap.Float64("price", price),
					zap.Float64("capital", capital))
				continue
			}

			grossCost := float64(lots*models.LotSize) * price
			totalCost := grossCost + grossCost*e.feeBuy
			capital -= totalCost

			position = &models.Position{
				Ticker:     ticker,
				EntryDate:  bar.Timestamp,
				EntryPrice: price,
				Lots:       lots,
				GrossCost:  grossCost,
				TotalCost:  totalCost,
			}
			trades = append(trades, models.Trade{
				Ticker:     ticker,
				EntryDate:  bar.Timestamp,
				EntryPrice: price,
				Lots:       lots,
				GrossCost:  grossCost,
				TotalCost:  totalCost,
				Status:     models.StatusOpen,
			})
		}
	}

	// Forced liquidation at the last close when the series ends long. The
	// final equity point becomes the realized proceeds, not the estimate.
	if position != nil {
		lastBar := bars[len(bars)-1]
		net := e.closePosition(&trades[len(trades)-1], position, lastBar, models.StatusOpenAtEnd)
		capital += net
		equity[len(equity)-1].Equity = capital
		position = nil
	}

	applyDrawdown(equity)

	result := &Result{
		RunID:    uuid.New(),
		Ticker:   ticker,
		Strategy: strategy.Kind().String(),
		Trades:   trades,
		Equity:   equity,
		Metrics:  ComputeMetrics(trades, equity, e.initialCapital),
		Signals:  signals,
	}

	e.logger.Info("Simulation complete",
		zap.String("ticker", ticker),
		zap.String("run_id", result.RunID.String()),
		zap.String("strategy", result.Strategy),
		zap.Int("bars", len(bars)),
		zap.Int("trades", len(trades)),
		zap.Float64("final_equity", result.Metrics.FinalEquity))

	return result
}

// affordableLots computes the largest lot count whose fee-inclusive cost fits
// in the available capital. All quantization truncates; leftover cash that
// cannot buy another full lot stays idle.
func (e *Engine) affordableLots(capital, price float64) int {
	if price <= 0 {
		return 0
	}
	maxValue := capital / (1 + e.feeBuy)
	shares := int(maxValue / price)
	return shares / models.LotSize
}

// closePosition sells the whole position at the bar's close, finalizes the
// trade record and returns the net proceeds. winStatus selects the status
// family: StatusWin for a signal-driven exit (downgraded to StatusLoss on a
// non-positive result), StatusOpenAtEnd for a forced close.
func (e *Engine) closePosition(trade *models.Trade, position *models.Position, bar models.Bar, winStatus string) float64 {
	shares := float64(position.Shares())
	gross := shares * bar.Close
	fee := gross * e.feeSell
	net := gross - fee

	trade.ExitDate = bar.Timestamp
	trade.ExitPrice = bar.Close
	trade.GrossPnL = gross - position.GrossCost
	trade.NetPnL = net - position.TotalCost
	trade.ReturnPct = trade.NetPnL / position.TotalCost * 100

	if winStatus == models.StatusOpenAtEnd {
		trade.Status = models.StatusOpenAtEnd
	} else if trade.NetPnL > 0 {
		trade.Status = models.StatusWin
	} else {
		trade.Status = models.StatusLoss
	}

	return net
}

// applyDrawdown fills the running peak and drawdown of an equity curve.
// Drawdown is always <= 0 and exactly 0 at or after a new peak.
func applyDrawdown(equity []models.EquityPoint) {
	var peak float64
	for i := range equity {
		if equity[i].Equity > peak {
			peak = equity[i].Equity
		}
		equity[i].Peak = peak
		equity[i].DrawdownPct = (equity[i].Equity - peak) / peak * 100
	}
}
