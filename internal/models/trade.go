package models

import (
	"encoding/json"
	"math"
	"time"
)

// Trade status values. OPEN trades are still held; OPEN_AT_END marks a
// position liquidated only because the data series ran out.
const (
	StatusOpen      = "OPEN"
	StatusWin       = "WIN"
	StatusLoss      = "LOSS"
	StatusOpenAtEnd = "OPEN_AT_END"
)

// Position is the one open holding of a simulation. It exists only while the
// engine is long.
type Position struct {
	Ticker     string
	EntryDate  time.Time
	EntryPrice float64
	Lots       int
	GrossCost  float64
	TotalCost  float64
}

// Shares returns the share count of the position.
func (p Position) Shares() int {
	return p.Lots * LotSize
}

// Trade records one buy-to-sell cycle. It is created at entry with status
// OPEN and finalized at exit.
type Trade struct {
	Ticker     string    `json:"ticker"`
	EntryDate  time.Time `json:"entry_date"`
	EntryPrice float64   `json:"entry_price"`
	Lots       int       `json:"lots"`
	GrossCost  float64   `json:"gross_cost"`
	TotalCost  float64   `json:"total_cost"`
	ExitDate   time.Time `json:"exit_date"`
	ExitPrice  float64   `json:"exit_price"`
	GrossPnL   float64   `json:"gross_pnl"`
	NetPnL     float64   `json:"net_pnl"`
	ReturnPct  float64   `json:"return_pct"`
	Status     string    `json:"status"`
}

// EquityPoint is one mark-to-market sample of the equity curve.
type EquityPoint struct {
	Timestamp   time.Time `json:"timestamp"`
	Equity      float64   `json:"equity"`
	Peak        float64   `json:"peak"`
	DrawdownPct float64   `json:"drawdown_pct"`
}

// Metrics summarizes a finished trade ledger and equity curve.
type Metrics struct {
	TotalTrades  int     `json:"total_trades"`
	WinRate      float64 `json:"win_rate"`
	NetProfit    float64 `json:"net_profit"`
	GrossProfit  float64 `json:"gross_profit"`
	GrossLoss    float64 `json:"gross_loss"`
	ProfitFactor float64 `json:"profit_factor"`
	MaxDrawdown  float64 `json:"max_drawdown"`
	FinalEquity  float64 `json:"final_equity"`
	ReturnPct    float64 `json:"return_pct"`
}

// MarshalJSON renders an unbounded profit factor as null; JSON has no +Inf.
func (m Metrics) MarshalJSON() ([]byte, error) {
	type alias Metrics
	out := struct {
		alias
		ProfitFactor *float64 `json:"profit_factor"`
	}{alias: alias(m)}
	if !math.IsInf(m.ProfitFactor, 0) {
		out.ProfitFactor = &m.ProfitFactor
	}
	return json.Marshal(out)
}
