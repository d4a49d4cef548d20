// Package scanner screens batches of tickers for setups worth a closer look.
// Each ticker is scanned independently; the batch fans out one goroutine per
// ticker over the market data provider.
package scanner

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"idx-trader-go/internal/indicator"
	"idx-trader-go/internal/market"
	"idx-trader-go/internal/models"
)

// maxBatchTickers caps one batch scan.
const maxBatchTickers = 50

// Kind selects the screening rule.
type Kind string

const (
	KindGem      Kind = "gem"      // uptrend in consolidation
	KindDragon   Kind = "dragon"   // volume explosion with price surge
	KindDayTrade Kind = "daytrade" // active, liquid, volume-backed mover
)

// Result is the outcome of scanning one ticker.
type Result struct {
	Ticker    string  `json:"ticker"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
	VolRatio  float64 `json:"vol_ratio"`
	Match     bool    `json:"match"`
	Reason    string  `json:"reason"`
	Err       error   `json:"-"`
}

// Scanner runs batch screens over the market data provider.
type Scanner struct {
	provider market.Provider
	logger   *zap.Logger
}

// NewScanner creates a scanner backed by a market data provider.
func NewScanner(provider market.Provider, logger *zap.Logger) *Scanner {
	return &Scanner{
		provider: provider,
		logger:   logger.Named("scanner"),
	}
}

// ParseTickers splits a comma, semicolon or newline separated ticker list,
// uppercases and dedupes it, and caps it at the batch limit.
func ParseTickers(text string) []string {
	text = strings.ReplaceAll(text, "\n", ",")
	text = strings.ReplaceAll(text, ";", ",")

	seen := make(map[string]struct{})
	var tickers []string
	for _, raw := range strings.Split(text, ",") {
		t := strings.ToUpper(strings.TrimSpace(raw))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tickers = append(tickers, t)
		if len(tickers) == maxBatchTickers {
			break
		}
	}
	return tickers
}

// BatchScan scans every ticker concurrently and returns one result per
// ticker, in input order. Per-ticker failures land in Result.Err instead of
// aborting the batch.
func (s *Scanner) BatchScan(ctx context.Context, tickers []string, kind Kind) []Result {
	results := make([]Result, len(tickers))

	var wg sync.WaitGroup
	for i, ticker := range tickers {
		wg.Add(1)
		go func(i int, ticker string) {
			defer wg.Done()
			results[i] = s.scanOne(ctx, ticker, kind)
		}(i, ticker)
	}
	wg.Wait()

	matches := 0
	for _, r := range results {
		if r.Match {
			matches++
		}
	}
	s.logger.Info("Batch scan complete",
		zap.String("kind", string(kind)),
		zap.Int("tickers", len(tickers)),
		zap.Int("matches", matches))

	return results
}

func (s *Scanner) scanOne(ctx context.Context, ticker string, kind Kind) Result {
	bars, err := s.provider.RecentBars(ctx, ticker, 1)
	if err != nil {
		return Result{Ticker: ticker, Reason: "data unavailable", Err: err}
	}
	if len(bars) < 5 {
		return Result{Ticker: ticker, Reason: "not enough history", Err: market.ErrNoData}
	}

	switch kind {
	case KindDragon:
		return scanDragon(ticker, bars)
	case KindDayTrade:
		return scanDayTrade(ticker, bars)
	default:
		return scanGem(ticker, bars)
	}
}

// scanGem looks for an uptrending stock pausing in consolidation: close above
// its EMA20 with today's move between -3% and +2%.
func scanGem(ticker string, bars []models.Bar) Result {
	lastClose := bars[len(bars)-1].Close
	prevClose := bars[len(bars)-2].Close

	ema20 := indicator.EMA(closesOf(bars), 20)
	isUptrend := lastClose > ema20[len(ema20)-1]

	changePct := (lastClose - prevClose) / prevClose * 100
	isConsolidating := changePct >= -3 && changePct <= 2

	r := Result{
		Ticker:    ticker,
		Price:     lastClose,
		ChangePct: changePct,
		VolRatio:  volumeRatio(bars),
		Match:     isUptrend && isConsolidating,
	}
	switch {
	case r.Match:
		r.Reason = "uptrend + consolidation"
	case !isUptrend:
		r.Reason = "not in uptrend"
	default:
		r.Reason = "not consolidating"
	}
	return r
}

// scanDragon looks for a volume explosion with a price surge: volume above
// 1.5x its 20-day average and today's change above +2%.
func scanDragon(ticker string, bars []models.Bar) Result {
	lastClose := bars[len(bars)-1].Close
	prevClose := bars[len(bars)-2].Close

	changePct := (lastClose - prevClose) / prevClose * 100
	volRatio := volumeRatio(bars)

	isVolumeSpike := volRatio > 1.5
	isPriceSurge := changePct > 2

	r := Result{
		Ticker:    ticker,
		Price:     lastClose,
		ChangePct: changePct,
		VolRatio:  volRatio,
		Match:     isVolumeSpike && isPriceSurge,
	}
	switch {
	case r.Match:
		r.Reason = fmt.Sprintf("vol %.1fx, %+.1f%%", volRatio, changePct)
	case !isVolumeSpike:
		r.Reason = fmt.Sprintf("vol %.1fx (min 1.5x)", volRatio)
	default:
		r.Reason = fmt.Sprintf("change %+.1f%% (min +2%%)", changePct)
	}

	// A sideways tape waking up on volume counts even before the price moves.
	if !r.Match {
		if sleeper, _, sleeperRatio := DetectSleepingDragon(bars, 20, 2.0); sleeper {
			r.Match = true
			r.Reason = fmt.Sprintf("sleeping dragon waking, vol %.1fx in sideways range", sleeperRatio)
		}
	}
	if !r.Match {
		if diverged, verdict := DetectOBVDivergence(bars, 20); diverged && verdict == DivergenceAccumulation {
			r.Reason += " | hidden accumulation"
		}
	}
	return r
}

// scanDayTrade looks for an active liquid mover: change between +2% and +10%,
// transaction value above 5 billion IDR and volume above 1.2x average.
func scanDayTrade(ticker string, bars []models.Bar) Result {
	last := bars[len(bars)-1]
	prevClose := bars[len(bars)-2].Close

	changePct := (last.Close - prevClose) / prevClose * 100
	volRatio := volumeRatio(bars)
	liquidityBillion := last.Close * last.Volume / 1_000_000_000

	isActive := changePct >= 2 && changePct <= 10
	isLiquid := liquidityBillion > 5
	isVolValid := volRatio > 1.2

	r := Result{
		Ticker:    ticker,
		Price:     last.Close,
		ChangePct: changePct,
		VolRatio:  volRatio,
		Match:     isActive && isLiquid && isVolValid,
	}

	if r.Match {
		r.Reason = fmt.Sprintf("%+.1f%% | %.1fB | vol %.1fx", changePct, liquidityBillion, volRatio)
		if spike, _ := DetectMorningSpike(bars); spike {
			r.Reason += " | opened at low"
		}
		vwap := indicator.VWAP(bars)
		if v := vwap[len(vwap)-1]; indicator.Defined(v) && last.Close > v {
			r.Reason += " | above VWAP"
		}
		return r
	}

	var issues []string
	if !isActive {
		if changePct < 2 {
			issues = append(issues, fmt.Sprintf("change %+.1f%% (min +2%%)", changePct))
		} else {
			issues = append(issues, fmt.Sprintf("change %+.1f%% (max +10%%)", changePct))
		}
	}
	if !isLiquid {
		issues = append(issues, fmt.Sprintf("liq %.1fB (min 5B)", liquidityBillion))
	}
	if !isVolValid {
		issues = append(issues, fmt.Sprintf("vol %.1fx (min 1.2x)", volRatio))
	}
	r.Reason = strings.Join(issues, " | ")
	return r
}

// volumeRatio compares today's volume against the average of the prior 20
// days, falling back to the whole series when history is short.
func volumeRatio(bars []models.Bar) float64 {
	last := len(bars) - 1
	start := last - 20
	if start < 0 {
		start = 0
	}

	var sum float64
	n := 0
	for i := start; i < last; i++ {
		sum += bars[i].Volume
		n++
	}
	if n == 0 || sum == 0 {
		return 0
	}
	avg := sum / float64(n)
	return bars[last].Volume / avg
}

func closesOf(bars []models.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}
