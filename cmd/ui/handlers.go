package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"idx-trader-go/internal/backtest"
	"idx-trader-go/internal/config"
	"idx-trader-go/internal/indicator"
	"idx-trader-go/internal/journal"
	"idx-trader-go/internal/market"
	"idx-trader-go/internal/models"
)

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log       *zap.Logger
	cfg       *config.Config
	store     *journal.Store
	provider  market.Provider
	uuid      string
	startTime time.Time
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, cfg *config.Config, store *journal.Store, provider market.Provider) *APIHandler {
	return &APIHandler{
		log:       log,
		cfg:       cfg,
		store:     store,
		provider:  provider,
		uuid:      uuid.NewString(),
		startTime: time.Now(),
	}
}

// StatusHandler reports server identity and uptime.
func (h *APIHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	status := struct {
		UUID      string `json:"uuid"`
		StartTime string `json:"start_time"`
		Uptime    string `json:"uptime"`
	}{
		UUID:      h.uuid,
		StartTime: h.startTime.Format(time.RFC3339),
		Uptime:    time.Since(h.startTime).String(),
	}
	h.writeJSON(w, status)
}

// JournalHandler lists journal entries on GET and records a new one on POST.
func (h *APIHandler) JournalHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		h.createJournalEntry(w, r)
		return
	}

	entries, err := h.store.List()
	if err != nil {
		h.log.Error("Failed to list journal entries", zap.Error(err))
		http.Error(w, "Failed to list journal entries", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, entries)
}

// journalRequest is the body of POST /api/journal. Lots, RRR and the
// potential profit/loss are derived server-side from the sizing setup.
type journalRequest struct {
	Ticker      string  `json:"ticker"`
	EntryPrice  float64 `json:"entry_price"`
	StopLoss    float64 `json:"stop_loss"`
	TakeProfit  float64 `json:"take_profit"`
	Capital     float64 `json:"capital"`
	RiskPercent float64 `json:"risk_percent"`
	Decision    string  `json:"decision"`
	Notes       string  `json:"notes"`
}

func (h *APIHandler) createJournalEntry(w http.ResponseWriter, r *http.Request) {
	var req journalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Ticker == "" || req.EntryPrice <= 0 {
		http.Error(w, "Missing ticker or entry price", http.StatusBadRequest)
		return
	}

	// Derive missing stop/target levels from the recent tape: first support
	// and resistance pivots, with the stop never wider than 2x ATR.
	if req.StopLoss <= 0 || req.TakeProfit <= 0 {
		bars, err := h.provider.RecentBars(r.Context(), req.Ticker, 1)
		if err != nil {
			http.Error(w, "Stop loss and take profit required, no market data to derive them", http.StatusBadRequest)
			return
		}
		_, r1, s1 := indicator.PivotPoints(bars)
		atr := indicator.ATR(bars, 14)

		if req.StopLoss <= 0 {
			sl := float64(s1)
			if last := atr[len(atr)-1]; indicator.Defined(last) && req.EntryPrice-2*last > sl {
				sl = req.EntryPrice - 2*last
			}
			req.StopLoss = sl
		}
		if req.TakeProfit <= 0 {
			req.TakeProfit = float64(r1)
		}
	}

	setup := models.TradeSetup{
		Ticker:      req.Ticker,
		Capital:     req.Capital,
		EntryPrice:  req.EntryPrice,
		StopLoss:    req.StopLoss,
		TakeProfit:  req.TakeProfit,
		RiskPercent: req.RiskPercent,
		BuyFeePct:   h.cfg.Backtest.FeeBuy,
		SellFeePct:  h.cfg.Backtest.FeeSell,
	}
	lots := setup.MaxLots()
	if lots == 0 {
		http.Error(w, "Setup does not allow a single lot", http.StatusBadRequest)
		return
	}

	entry := &models.JournalEntry{
		Ticker:          req.Ticker,
		EntryPrice:      req.EntryPrice,
		StopLoss:        req.StopLoss,
		TakeProfit:      req.TakeProfit,
		Lots:            lots,
		Capital:         req.Capital,
		RiskPercent:     req.RiskPercent,
		RRR:             setup.RRR(),
		PotentialProfit: setup.PotentialProfit(lots),
		PotentialLoss:   setup.PotentialLoss(lots),
		Decision:        req.Decision,
		Notes:           req.Notes,
		Status:          models.StatusOpen,
	}
	if err := h.store.Save(entry); err != nil {
		h.log.Error("Failed to save journal entry", zap.Error(err))
		http.Error(w, "Failed to save journal entry", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, entry)
}

// CloseJournalHandler records the exit of an open journal entry.
func (h *APIHandler) CloseJournalHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ID        uint    `json:"id"`
		ExitPrice float64 `json:"exit_price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ID == 0 || req.ExitPrice <= 0 {
		http.Error(w, "Missing id or exit price", http.StatusBadRequest)
		return
	}

	entry, err := h.store.CloseEntry(req.ID, req.ExitPrice, h.cfg.Backtest.FeeSell)
	if err != nil {
		h.log.Error("Failed to close journal entry", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.writeJSON(w, entry)
}

// SummaryHandler returns the realized performance summary.
func (h *APIHandler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := h.store.Summarize()
	if err != nil {
		h.log.Error("Failed to summarize journal", zap.Error(err))
		http.Error(w, "Failed to summarize journal", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, summary)
}

// backtestRequest is the body of POST /api/backtest and /api/advise.
type backtestRequest struct {
	Ticker   string `json:"ticker"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Strategy string `json:"strategy"`
}

// BacktestHandler runs a simulation on demand and returns the full result.
func (h *APIHandler) BacktestHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, kind, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	end := time.Now()
	if req.End != "" {
		var err error
		if end, err = time.Parse("2006-01-02", req.End); err != nil {
			http.Error(w, "Invalid end date", http.StatusBadRequest)
			return
		}
	}
	start := end.AddDate(-1, 0, 0)
	if req.Start != "" {
		var err error
		if start, err = time.Parse("2006-01-02", req.Start); err != nil {
			http.Error(w, "Invalid start date", http.StatusBadRequest)
			return
		}
	}

	bars, err := h.provider.DailyBars(r.Context(), req.Ticker, start, end)
	if err != nil {
		if errors.Is(err, market.ErrNoData) {
			http.Error(w, "No data for ticker", http.StatusNotFound)
			return
		}
		h.log.Error("Failed to fetch bars", zap.Error(err))
		http.Error(w, "Failed to fetch market data", http.StatusBadGateway)
		return
	}

	engine := backtest.NewEngine(h.log, h.cfg.Backtest.InitialCapital, h.cfg.Backtest.FeeBuy, h.cfg.Backtest.FeeSell)
	result := engine.Run(req.Ticker, bars, backtest.NewStrategy(kind, h.params()))
	if result == nil {
		http.Error(w, "Insufficient data", http.StatusNotFound)
		return
	}
	h.writeJSON(w, result)
}

// AdviseHandler returns a live signal for the newest bar.
func (h *APIHandler) AdviseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, kind, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	bars, err := h.provider.RecentBars(r.Context(), req.Ticker, h.cfg.Backtest.LookbackMonths)
	if err != nil && !errors.Is(err, market.ErrNoData) {
		h.log.Error("Failed to fetch bars", zap.Error(err))
		http.Error(w, "Failed to fetch market data", http.StatusBadGateway)
		return
	}

	h.writeJSON(w, backtest.LiveSignal(kind, h.params(), bars))
}

func (h *APIHandler) parseRequest(w http.ResponseWriter, r *http.Request) (backtestRequest, backtest.StrategyKind, bool) {
	var req backtestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return req, 0, false
	}
	if req.Ticker == "" {
		http.Error(w, "Missing ticker", http.StatusBadRequest)
		return req, 0, false
	}

	name := req.Strategy
	if name == "" {
		name = h.cfg.Backtest.Strategy
	}
	kind, err := backtest.ParseStrategyKind(name)
	if err != nil {
		http.Error(w, "Unknown strategy", http.StatusBadRequest)
		return req, 0, false
	}
	return req, kind, true
}

func (h *APIHandler) params() backtest.Params {
	return backtest.ParamsFrom(h.cfg.Backtest)
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", zap.Error(err))
	}
}
