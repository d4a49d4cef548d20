package market

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"idx-trader-go/internal/config"
	"idx-trader-go/internal/models"
)

// IDX tickers are quoted on the provider with a market suffix.
const exchangeSuffix = ".JK"

// ErrNoData is returned when the provider has no bars for the requested
// ticker and range. Callers treat it as "insufficient data", not a failure.
var ErrNoData = errors.New("no market data available")

// Provider supplies cleaned daily OHLCV series. The backtest engine never
// talks to the network itself; everything goes through this interface.
type Provider interface {
	// DailyBars returns the ordered daily bars for a ticker between two
	// dates, inclusive of start and exclusive of end.
	DailyBars(ctx context.Context, ticker string, start, end time.Time) ([]models.Bar, error)

	// RecentBars returns roughly `months` months of daily bars ending now,
	// enough to stabilize strategy indicators for a live signal.
	RecentBars(ctx context.Context, ticker string, months int) ([]models.Bar, error)
}

// Client is a rate-limited REST client for the market data provider.
// It implements the Provider interface.
type Client struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

var _ Provider = (*Client)(nil)

// NewClient creates a market data client from the provider configuration.
func NewClient(cfg *config.Provider, logger *zap.Logger) *Client {
	client := resty.New().SetBaseURL(cfg.BaseURL)
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &Client{
		client:  client,
		logger:  logger.Named("market"),
		limiter: limiter,
	}
}

// barRow is one row of the provider's /history response.
type barRow struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// DailyBars fetches daily OHLCV bars for a ticker.
func (c *Client) DailyBars(ctx context.Context, ticker string, start, end time.Time) ([]models.Bar, error) {
	var rows []barRow

	req := c.client.R().
		SetContext(ctx).
		SetResult(&rows).
		SetQueryParams(map[string]string{
			"symbol":   ticker + exchangeSuffix,
			"interval": "1d",
			"start":    strconv.FormatInt(start.Unix(), 10),
			"end":      strconv.FormatInt(end.Unix(), 10),
		})

	resp, err := c.doRequest(ctx, http.MethodGet, "/history", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily bars for %s: %w", ticker, err)
	}

	result := *resp.Result().(*[]barRow)
	if len(result) == 0 {
		return nil, ErrNoData
	}

	bars := make([]models.Bar, len(result))
	for i, r := range result {
		bars[i] = models.Bar{
			Timestamp: time.Unix(r.Timestamp, 0).UTC(),
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			Volume:    r.Volume,
		}
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })

	c.logger.Debug("Fetched daily bars",
		zap.String("ticker", ticker),
		zap.Int("count", len(bars)))

	return bars, nil
}

// RecentBars fetches the last `months` months of daily bars.
func (c *Client) RecentBars(ctx context.Context, ticker string, months int) ([]models.Bar, error) {
	end := time.Now()
	start := end.AddDate(0, -months, 0)
	return c.DailyBars(ctx, ticker, start, end)
}

// doRequest executes a request with rate limiting and bounded retries on
// throttling and server errors.
func (c *Client) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", url))
		resp, err = req.Execute(method, url)

		if err == nil && resp.IsSuccess() {
			return resp, nil
		}

		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil && resp.StatusCode() != 0 {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				if seconds, convErr := strconv.Atoi(resp.Header().Get("Retry-After")); convErr == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 {
				shouldRetry = true
			}
		} else {
			// Network or other client-side errors.
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}

		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}
