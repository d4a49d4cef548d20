package journal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"idx-trader-go/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	// Use a new, non-shared in-memory database for each test to ensure isolation.
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(&models.JournalEntry{})
	assert.NoError(t, err)

	return NewStore(db, zap.NewNop())
}

func openEntry(ticker string, entryPrice float64, lots int) *models.JournalEntry {
	return &models.JournalEntry{
		Ticker:     ticker,
		EntryPrice: entryPrice,
		StopLoss:   entryPrice * 0.95,
		TakeProfit: entryPrice * 1.10,
		Lots:       lots,
		Capital:    10_000_000,
		Status:     models.StatusOpen,
	}
}

func TestSaveAndList(t *testing.T) {
	store := setupTestStore(t)

	assert.NoError(t, store.Save(openEntry("BBCA", 9500, 5)))
	assert.NoError(t, store.Save(openEntry("TLKM", 3200, 10)))

	entries, err := store.List()
	assert.NoError(t, err)
	assert.Len(t, entries, 2)

	for _, e := range entries {
		assert.NotZero(t, e.ID)
		assert.Equal(t, models.StatusOpen, e.Status)
	}
}

func TestCloseEntry_Win(t *testing.T) {
	store := setupTestStore(t)

	entry := openEntry("BBCA", 1000, 1)
	assert.NoError(t, store.Save(entry))

	closed, err := store.CloseEntry(entry.ID, 1100, 0.0025)
	assert.NoError(t, err)

	// 100 shares: gross 10_000, sell fee 1100*100*0.0025 = 275
	assert.Equal(t, models.StatusWin, closed.Status)
	assert.Equal(t, 1100.0, closed.ExitPrice)
	assert.InDelta(t, 9725.0, closed.RealizedPnL, 1e-9)
}

func TestCloseEntry_Loss(t *testing.T) {
	store := setupTestStore(t)

	entry := openEntry("BBCA", 1000, 1)
	assert.NoError(t, store.Save(entry))

	closed, err := store.CloseEntry(entry.ID, 950, 0.0025)
	assert.NoError(t, err)

	// gross -5_000, sell fee 950*100*0.0025 = 237.5
	assert.Equal(t, models.StatusLoss, closed.Status)
	assert.InDelta(t, -5237.5, closed.RealizedPnL, 1e-9)
}

func TestCloseEntry_AlreadyClosed(t *testing.T) {
	store := setupTestStore(t)

	entry := openEntry("BBCA", 1000, 1)
	assert.NoError(t, store.Save(entry))

	_, err := store.CloseEntry(entry.ID, 1100, 0)
	assert.NoError(t, err)

	_, err = store.CloseEntry(entry.ID, 1200, 0)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already closed")
}

func TestCloseEntry_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.CloseEntry(999, 1000, 0)
	assert.Error(t, err)
}

func TestSummarize_Empty(t *testing.T) {
	store := setupTestStore(t)

	sum, err := store.Summarize()
	assert.NoError(t, err)
	assert.Equal(t, 0, sum.TotalTrades)
	assert.Equal(t, 0.0, sum.ProfitFactor)
	assert.Empty(t, sum.CumulativePnL)
}

func TestSummarize_ExcludesOpenEntries(t *testing.T) {
	store := setupTestStore(t)

	closedEntry := openEntry("BBCA", 1000, 1)
	assert.NoError(t, store.Save(closedEntry))
	_, err := store.CloseEntry(closedEntry.ID, 1100, 0)
	assert.NoError(t, err)

	assert.NoError(t, store.Save(openEntry("TLKM", 3200, 10)))

	sum, err := store.Summarize()
	assert.NoError(t, err)
	assert.Equal(t, 1, sum.TotalTrades)
	assert.Equal(t, 1, sum.Wins)
}

func TestSummarize_MixedResults(t *testing.T) {
	store := setupTestStore(t)

	// Two wins, one loss; fees zeroed so the numbers stay exact.
	scenarios := []struct {
		entry float64
		exit  float64
	}{
		{1000, 1200}, // +20_000
		{1000, 1100}, // +10_000
		{1000, 940},  // -6_000
	}
	for _, sc := range scenarios {
		e := openEntry("BBCA", sc.entry, 1)
		assert.NoError(t, store.Save(e))
		_, err := store.CloseEntry(e.ID, sc.exit, 0)
		assert.NoError(t, err)
	}

	sum, err := store.Summarize()
	assert.NoError(t, err)

	assert.Equal(t, 3, sum.TotalTrades)
	assert.Equal(t, 2, sum.Wins)
	assert.Equal(t, 1, sum.Losses)
	assert.InDelta(t, 66.666, sum.WinRate, 0.01)
	assert.InDelta(t, 24_000, sum.NetProfit, 1e-9)
	assert.InDelta(t, 5.0, sum.ProfitFactor, 1e-9) // 30_000 / 6_000
	assert.InDelta(t, 15_000, sum.AvgWin, 1e-9)
	assert.InDelta(t, -6_000, sum.AvgLoss, 1e-9)
	assert.Len(t, sum.CumulativePnL, 3)
	assert.InDelta(t, 24_000, sum.CumulativePnL[2], 1e-9)
}

func TestSummarize_NoLosses(t *testing.T) {
	store := setupTestStore(t)

	e := openEntry("BBCA", 1000, 1)
	assert.NoError(t, store.Save(e))
	_, err := store.CloseEntry(e.ID, 1100, 0)
	assert.NoError(t, err)

	sum, err := store.Summarize()
	assert.NoError(t, err)
	assert.True(t, math.IsInf(sum.ProfitFactor, 1))
}
