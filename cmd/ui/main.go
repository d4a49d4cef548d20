package main

import (
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"idx-trader-go/internal/config"
	"idx-trader-go/internal/database"
	"idx-trader-go/internal/journal"
	"idx-trader-go/internal/logger"
	"idx-trader-go/internal/market"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Connect to the journal database
	db, err := database.NewDatabase(&cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	store := journal.NewStore(db, log)
	provider := market.NewClient(&cfg.Provider, log)

	// Setup HTTP server
	mux := http.NewServeMux()

	apiHandler := NewAPIHandler(log, &cfg, store, provider)

	// API endpoints
	mux.HandleFunc("/api/status", apiHandler.StatusHandler)
	mux.HandleFunc("/api/journal", apiHandler.JournalHandler)
	mux.HandleFunc("/api/journal/close", apiHandler.CloseJournalHandler)
	mux.HandleFunc("/api/journal/summary", apiHandler.SummaryHandler)
	mux.HandleFunc("/api/backtest", apiHandler.BacktestHandler)
	mux.HandleFunc("/api/advise", apiHandler.AdviseHandler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Starting web server", zap.String("address", addr))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("Web server failed", zap.Error(err))
	}
}
