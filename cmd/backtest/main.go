package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"

	"idx-trader-go/internal/backtest"
	"idx-trader-go/internal/config"
	"idx-trader-go/internal/logger"
	"idx-trader-go/internal/market"
	"idx-trader-go/internal/models"
	"idx-trader-go/internal/scanner"
)

const dateLayout = "2006-01-02"

func main() {
	var (
		configPath = flag.String("config", "./configs", "path to the config directory")
		ticker     = flag.String("ticker", "", "IDX ticker to simulate, e.g. BBCA")
		start      = flag.String("start", "", "start date (YYYY-MM-DD)")
		end        = flag.String("end", "", "end date (YYYY-MM-DD), defaults to today")
		strategy   = flag.String("strategy", "", "strategy name, overrides config")
		live       = flag.Bool("live", false, "print a live signal instead of a backtest")
		scan       = flag.String("scan", "", "batch scan kind (gem|dragon|daytrade) over comma-separated -ticker list")
	)
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *ticker == "" {
		fmt.Fprintln(os.Stderr, "missing -ticker")
		os.Exit(1)
	}

	if *strategy == "" {
		*strategy = cfg.Backtest.Strategy
	}
	kind, err := backtest.ParseStrategyKind(*strategy)
	if err != nil {
		log.Fatal("Invalid strategy", zap.Error(err))
	}
	params := backtest.ParamsFrom(cfg.Backtest)

	provider := market.NewClient(&cfg.Provider, log)
	ctx := context.Background()

	switch {
	case *scan != "":
		runScan(ctx, log, provider, *ticker, scanner.Kind(*scan))
	case *live:
		runLive(ctx, log, provider, &cfg, *ticker, kind, params)
	default:
		runBacktest(ctx, log, provider, &cfg, *ticker, *start, *end, kind, params)
	}
}

func runBacktest(ctx context.Context, log *zap.Logger, provider market.Provider, cfg *config.Config,
	ticker, start, end string, kind backtest.StrategyKind, params backtest.Params) {

	endDate := time.Now()
	if end != "" {
		var err error
		endDate, err = time.Parse(dateLayout, end)
		if err != nil {
			log.Fatal("Invalid end date", zap.Error(err))
		}
	}
	startDate := endDate.AddDate(-1, 0, 0)
	if start != "" {
		var err error
		startDate, err = time.Parse(dateLayout, start)
		if err != nil {
			log.Fatal("Invalid start date", zap.Error(err))
		}
	}

	bars, err := provider.DailyBars(ctx, ticker, startDate, endDate)
	if err != nil {
		if errors.Is(err, market.ErrNoData) {
			log.Fatal("No data for ticker", zap.String("ticker", ticker))
		}
		log.Fatal("Failed to fetch bars", zap.Error(err))
	}

	engine := backtest.NewEngine(log, cfg.Backtest.InitialCapital, cfg.Backtest.FeeBuy, cfg.Backtest.FeeSell)
	result := engine.Run(ticker, bars, backtest.NewStrategy(kind, params))
	if result == nil {
		log.Fatal("Simulation produced no result", zap.String("ticker", ticker))
	}

	printTrades(result.Trades)
	printMetrics(result.Metrics)
}

func runLive(ctx context.Context, log *zap.Logger, provider market.Provider, cfg *config.Config,
	ticker string, kind backtest.StrategyKind, params backtest.Params) {

	bars, err := provider.RecentBars(ctx, ticker, cfg.Backtest.LookbackMonths)
	if err != nil && !errors.Is(err, market.ErrNoData) {
		log.Fatal("Failed to fetch bars", zap.Error(err))
	}

	advice := backtest.LiveSignal(kind, params, bars)
	fmt.Printf("%s [%s]\n%s: %s\n", ticker, kind, advice.Action, advice.Rationale)
}

func runScan(ctx context.Context, log *zap.Logger, provider market.Provider, tickerList string, kind scanner.Kind) {
	tickers := scanner.ParseTickers(tickerList)
	if len(tickers) == 0 {
		log.Fatal("No tickers to scan")
	}

	sc := scanner.NewScanner(provider, log)
	results := sc.BatchScan(ctx, tickers, kind)
	printScanResults(results)
}

func printTrades(trades []models.Trade) {
	if len(trades) == 0 {
		fmt.Println("No trades executed.")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Entry", "Exit", "Lots", "Entry Px", "Exit Px", "Net PnL", "Return", "Status")
	for _, t := range trades {
		table.Append(
			t.EntryDate.Format(dateLayout),
			t.ExitDate.Format(dateLayout),
			fmt.Sprintf("%d", t.Lots),
			fmt.Sprintf("%.0f", t.EntryPrice),
			fmt.Sprintf("%.0f", t.ExitPrice),
			fmt.Sprintf("%.0f", t.NetPnL),
			fmt.Sprintf("%.2f%%", t.ReturnPct),
			t.Status,
		)
	}
	table.Render()
}

func printMetrics(m models.Metrics) {
	pf := fmt.Sprintf("%.2f", m.ProfitFactor)
	if math.IsInf(m.ProfitFactor, 1) {
		pf = "INF"
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Metric", "Value")
	table.Append("Total Trades", fmt.Sprintf("%d", m.TotalTrades))
	table.Append("Win Rate", fmt.Sprintf("%.1f%%", m.WinRate))
	table.Append("Net Profit", fmt.Sprintf("%.0f", m.NetProfit))
	table.Append("Profit Factor", pf)
	table.Append("Max Drawdown", fmt.Sprintf("%.2f%%", m.MaxDrawdown))
	table.Append("Final Equity", fmt.Sprintf("%.0f", m.FinalEquity))
	table.Append("Return", fmt.Sprintf("%.2f%%", m.ReturnPct))
	table.Render()
}

func printScanResults(results []scanner.Result) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Ticker", "Price", "Change", "Vol", "Match", "Reason")
	for _, r := range results {
		match := ""
		if r.Match {
			match = "YES"
		}
		table.Append(
			r.Ticker,
			fmt.Sprintf("%.0f", r.Price),
			fmt.Sprintf("%+.1f%%", r.ChangePct),
			fmt.Sprintf("%.1fx", r.VolRatio),
			match,
			r.Reason,
		)
	}
	table.Render()
}
