package models

import "gorm.io/gorm"

// JournalEntry is a persisted trade record in the journal database.
type JournalEntry struct {
	gorm.Model
	Ticker          string  `json:"ticker"`
	EntryPrice      float64 `json:"entry_price"`
	StopLoss        float64 `json:"stop_loss"`
	TakeProfit      float64 `json:"take_profit"`
	Lots            int     `json:"lots"`
	Capital         float64 `json:"capital"`
	RiskPercent     float64 `json:"risk_percent"`
	RRR             float64 `json:"rrr"`
	PotentialProfit float64 `json:"potential_profit"`
	PotentialLoss   float64 `json:"potential_loss"`
	Decision        string  `json:"decision"`
	Notes           string  `json:"notes"`
	ExitPrice       float64 `json:"exit_price"`
	RealizedPnL     float64 `json:"realized_pnl"`
	Status          string  `json:"status" gorm:"default:OPEN"`
}
