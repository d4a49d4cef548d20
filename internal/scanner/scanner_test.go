package scanner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"idx-trader-go/internal/market"
	"idx-trader-go/internal/models"
)

// stubProvider serves canned bars per ticker.
type stubProvider struct {
	bars map[string][]models.Bar
}

func (p *stubProvider) DailyBars(ctx context.Context, ticker string, start, end time.Time) ([]models.Bar, error) {
	return p.RecentBars(ctx, ticker, 0)
}

func (p *stubProvider) RecentBars(ctx context.Context, ticker string, months int) ([]models.Bar, error) {
	bars, ok := p.bars[ticker]
	if !ok || len(bars) == 0 {
		return nil, market.ErrNoData
	}
	return bars, nil
}

func flatBars(n int, close, volume float64) []models.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	for i := range bars {
		bars[i] = models.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      close,
			High:      close,
			Low:       close,
			Close:     close,
			Volume:    volume,
		}
	}
	return bars
}

func TestParseTickers(t *testing.T) {
	got := ParseTickers("bbca, TLKM\nbmri;bbca\n ,GOTO")
	assert.Equal(t, []string{"BBCA", "TLKM", "BMRI", "GOTO"}, got)

	assert.Empty(t, ParseTickers("   "))
}

func TestParseTickers_CapsBatchSize(t *testing.T) {
	text := ""
	for i := 0; i < 80; i++ {
		text += string(rune('A'+i%26)) + string(rune('A'+i/26)) + ","
	}
	got := ParseTickers(text)
	assert.Len(t, got, maxBatchTickers)
}

func TestBatchScan_DragonMatch(t *testing.T) {
	// Flat tape, then a +5% day on 3x volume.
	bars := flatBars(25, 100, 1000)
	last := len(bars) - 1
	bars[last].Close = 105
	bars[last].Volume = 3000

	provider := &stubProvider{bars: map[string][]models.Bar{
		"BBCA": bars,
		"TLKM": flatBars(25, 100, 1000),
	}}
	sc := NewScanner(provider, zap.NewNop())

	results := sc.BatchScan(context.Background(), []string{"BBCA", "TLKM", "MISS"}, KindDragon)

	assert.Len(t, results, 3)
	assert.Equal(t, "BBCA", results[0].Ticker)
	assert.True(t, results[0].Match)
	assert.False(t, results[1].Match)
	assert.Error(t, results[2].Err)
	assert.False(t, results[2].Match)
}

func TestScanGem(t *testing.T) {
	// Rising tape keeps the close above its EMA20; a quiet last day counts
	// as consolidation.
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, 30)
	price := 100.0
	for i := range bars {
		bars[i] = models.Bar{Timestamp: start.AddDate(0, 0, i), Close: price, High: price, Low: price, Volume: 1000}
		price += 2
	}
	// Last day barely moves.
	bars[len(bars)-1].Close = bars[len(bars)-2].Close + 0.5

	r := scanGem("BBCA", bars)

	assert.True(t, r.Match)
	assert.Equal(t, "uptrend + consolidation", r.Reason)
}

func TestScanDayTrade(t *testing.T) {
	bars := flatBars(25, 1000, 2_000_000)
	last := len(bars) - 1
	bars[last].Close = 1040 // +4%
	bars[last].Volume = 10_000_000

	r := scanDayTrade("BBCA", bars)

	// 1040 * 10M = 10.4B liquidity, vol 5x, change +4%.
	assert.True(t, r.Match)

	quiet := flatBars(25, 1000, 2_000_000)
	r = scanDayTrade("TLKM", quiet)
	assert.False(t, r.Match)
}

func TestDetectSleepingDragon(t *testing.T) {
	// Narrow range for 20 days, volume explodes on the last one.
	bars := flatBars(20, 100, 1000)
	bars[len(bars)-1].Volume = 5000

	dragon, priceRange, volRatio := DetectSleepingDragon(bars, 20, 2.0)

	assert.True(t, dragon)
	assert.Less(t, priceRange, 15.0)
	assert.InDelta(t, 5.0, volRatio, 1e-9)

	// Same volume spike on a wide-range tape is not a dragon.
	wild := flatBars(20, 100, 1000)
	for i := range wild {
		if i%2 == 0 {
			wild[i].High = 130
			wild[i].Close = 125
		}
	}
	wild[len(wild)-1].Volume = 5000
	dragon, _, _ = DetectSleepingDragon(wild, 20, 2.0)
	assert.False(t, dragon)
}

func TestDetectSleepingDragon_TooShort(t *testing.T) {
	dragon, _, _ := DetectSleepingDragon(flatBars(5, 100, 1000), 20, 2.0)
	assert.False(t, dragon)
}

func TestDetectOBVDivergence(t *testing.T) {
	// Flat price with rising OBV: volume flowing in quietly.
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, 20)
	for i := range bars {
		close := 100.0
		if i%2 == 1 {
			close = 101 // small up days carry the volume
		}
		bars[i] = models.Bar{Timestamp: start.AddDate(0, 0, i), Close: close, Volume: 1000}
	}

	diverged, verdict := DetectOBVDivergence(bars, 20)

	assert.True(t, diverged)
	assert.Equal(t, DivergenceAccumulation, verdict)
}

func TestDetectOBVDivergence_Normal(t *testing.T) {
	diverged, verdict := DetectOBVDivergence(flatBars(20, 100, 1000), 20)
	assert.False(t, diverged)
	assert.Equal(t, DivergenceNone, verdict)
}

func TestDetectMorningSpike(t *testing.T) {
	bars := flatBars(5, 100, 1000)
	last := len(bars) - 1
	bars[last].Open = 100
	bars[last].Low = 100
	bars[last].High = 104
	bars[last].Close = 103

	spike, dailyRange := DetectMorningSpike(bars)

	assert.True(t, spike)
	assert.InDelta(t, 4.0, dailyRange, 1e-9)

	// Open well above the low is not the pattern.
	bars[last].Open = 103
	spike, _ = DetectMorningSpike(bars)
	assert.False(t, spike)
}
