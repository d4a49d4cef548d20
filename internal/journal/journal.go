// Package journal persists trade records and summarizes realized
// performance across them.
package journal

import (
	"encoding/json"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"idx-trader-go/internal/models"
)

// Store reads and writes journal entries.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore creates a journal store on top of the given database.
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger.Named("journal")}
}

// Save appends a new entry to the journal.
func (s *Store) Save(entry *models.JournalEntry) error {
	if err := s.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to save journal entry: %w", err)
	}
	s.logger.Info("Saved journal entry",
		zap.Uint("id", entry.ID),
		zap.String("ticker", entry.Ticker),
		zap.Int("lots", entry.Lots))
	return nil
}

// List returns all entries, most recent first.
func (s *Store) List() ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	if err := s.db.Order("created_at desc").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	return entries, nil
}

// CloseEntry records the exit of an open entry, computes its realized PnL
// net of the sell fee and flips its status to WIN or LOSS.
func (s *Store) CloseEntry(id uint, exitPrice, sellFeePct float64) (*models.JournalEntry, error) {
	var entry models.JournalEntry
	if err := s.db.First(&entry, id).Error; err != nil {
		return nil, fmt.Errorf("failed to find journal entry %d: %w", id, err)
	}
	if entry.Status != models.StatusOpen {
		return nil, fmt.Errorf("journal entry %d is already closed", id)
	}

	shares := float64(entry.Lots * models.LotSize)
	gross := (exitPrice - entry.EntryPrice) * shares
	sellFee := exitPrice * shares * sellFeePct

	entry.ExitPrice = exitPrice
	entry.RealizedPnL = gross - sellFee
	if entry.RealizedPnL > 0 {
		entry.Status = models.StatusWin
	} else {
		entry.Status = models.StatusLoss
	}

	if err := s.db.Save(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to close journal entry %d: %w", id, err)
	}

	s.logger.Info("Closed journal entry",
		zap.Uint("id", entry.ID),
		zap.String("ticker", entry.Ticker),
		zap.Float64("realized_pnl", entry.RealizedPnL),
		zap.String("status", entry.Status))

	return &entry, nil
}

// Summary aggregates realized performance across closed entries.
type Summary struct {
	TotalTrades   int       `json:"total_trades"`
	Wins          int       `json:"wins"`
	Losses        int       `json:"losses"`
	WinRate       float64   `json:"win_rate"`
	NetProfit     float64   `json:"net_profit"`
	ProfitFactor  float64   `json:"profit_factor"`
	AvgWin        float64   `json:"avg_win"`
	AvgLoss       float64   `json:"avg_loss"`
	CumulativePnL []float64 `json:"cumulative_pnl"`
}

// MarshalJSON renders an unbounded profit factor as null; JSON has no +Inf.
func (s Summary) MarshalJSON() ([]byte, error) {
	type alias Summary
	out := struct {
		alias
		ProfitFactor *float64 `json:"profit_factor"`
	}{alias: alias(s)}
	if !math.IsInf(s.ProfitFactor, 0) {
		out.ProfitFactor = &s.ProfitFactor
	}
	return json.Marshal(out)
}

// Summarize computes the performance summary over all closed entries,
// oldest first. Open entries are excluded. An empty journal yields a zeroed
// summary.
func (s *Store) Summarize() (Summary, error) {
	var entries []models.JournalEntry
	err := s.db.
		Where("status <> ?", models.StatusOpen).
		Order("created_at asc").
		Find(&entries).Error
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load closed journal entries: %w", err)
	}

	return summarize(entries), nil
}

func summarize(entries []models.JournalEntry) Summary {
	var sum Summary
	if len(entries) == 0 {
		return sum
	}

	var grossProfit, grossLoss, cumulative float64
	for _, e := range entries {
		sum.TotalTrades++
		cumulative += e.RealizedPnL
		sum.CumulativePnL = append(sum.CumulativePnL, cumulative)

		if e.RealizedPnL > 0 {
			sum.Wins++
			grossProfit += e.RealizedPnL
		} else {
			sum.Losses++
			grossLoss += -e.RealizedPnL
		}
	}

	sum.WinRate = float64(sum.Wins) / float64(sum.TotalTrades) * 100
	sum.NetProfit = grossProfit - grossLoss

	if grossLoss > 0 {
		sum.ProfitFactor = grossProfit / grossLoss
	} else {
		sum.ProfitFactor = math.Inf(1)
	}

	if sum.Wins > 0 {
		sum.AvgWin = grossProfit / float64(sum.Wins)
	}
	if sum.Losses > 0 {
		sum.AvgLoss = -grossLoss / float64(sum.Losses)
	}

	return sum
}
