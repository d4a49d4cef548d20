package backtest

import (
	"math"

	"idx-trader-go/internal/models"
)

// ComputeMetrics aggregates a finished trade ledger and equity curve into a
// performance summary. An empty ledger yields a fully zeroed summary with
// FinalEquity at the initial capital; it is never an error.
//
// ProfitFactor policy: 0 with no trades at all, +Inf with trades but zero
// losses, otherwise the finite gross profit / gross loss ratio.
func ComputeMetrics(trades []models.Trade, equity []models.EquityPoint, initialCapital float64) models.Metrics {
	m := models.Metrics{FinalEquity: initialCapital}

	if len(equity) > 0 {
		m.FinalEquity = equity[len(equity)-1].Equity
		minDD := 0.0
		for _, p := range equity {
			if p.DrawdownPct < minDD {
				minDD = p.DrawdownPct
			}
		}
		m.MaxDrawdown = minDD
	}

	if initialCapital != 0 {
		m.ReturnPct = (m.FinalEquity - initialCapital) / initialCapital * 100
	}

	if len(trades) == 0 {
		return m
	}

	var wins int
	for _, t := range trades {
		m.NetProfit += t.NetPnL
		if t.NetPnL > 0 {
			wins++
			m.GrossProfit += t.NetPnL
		} else {
			m.GrossLoss += t.NetPnL
		}
	}
	m.GrossLoss = math.Abs(m.GrossLoss)

	m.TotalTrades = len(trades)
	m.WinRate = float64(wins) / float64(len(trades)) * 100

	if m.GrossLoss > 0 {
		m.ProfitFactor = m.GrossProfit / m.GrossLoss
	} else {
		m.ProfitFactor = math.Inf(1)
	}

	return m
}
