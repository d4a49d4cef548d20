package market

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// setupTestServer creates a test server and a Client configured to use it.
func setupTestServer(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)

	c := &Client{
		client:  resty.New().SetBaseURL(server.URL),
		logger:  zap.NewNop(),
		limiter: rate.NewLimiter(rate.Inf, 1), // allow all requests in tests
	}
	return c, server
}

func barsJSON() string {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	return fmt.Sprintf(`[
		{"timestamp": %d, "open": 100, "high": 106, "low": 99, "close": 105, "volume": 1000},
		{"timestamp": %d, "open": 105, "high": 107, "low": 101, "close": 102, "volume": 1200}
	]`, base.Unix(), base.AddDate(0, 0, 1).Unix())
}

func TestDailyBars_Success(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/history", r.URL.Path)
		assert.Equal(t, "BBCA.JK", r.URL.Query().Get("symbol"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(barsJSON()))
	})

	c, server := setupTestServer(handler)
	defer server.Close()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars, err := c.DailyBars(context.Background(), "BBCA", start, start.AddDate(0, 1, 0))

	assert.NoError(t, err)
	assert.Len(t, bars, 2)
	assert.Equal(t, 105.0, bars[0].Close)
	assert.True(t, bars[0].Timestamp.Before(bars[1].Timestamp))
}

func TestDailyBars_NoData(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	c, server := setupTestServer(handler)
	defer server.Close()

	bars, err := c.DailyBars(context.Background(), "XXXX", time.Now().AddDate(0, -1, 0), time.Now())

	assert.ErrorIs(t, err, ErrNoData)
	assert.Nil(t, bars)
}

func TestDailyBars_RetriesServerError(t *testing.T) {
	attempts := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(barsJSON()))
	})

	c, server := setupTestServer(handler)
	defer server.Close()

	bars, err := c.DailyBars(context.Background(), "BBCA", time.Now().AddDate(0, -1, 0), time.Now())

	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Len(t, bars, 2)
}

func TestDailyBars_ClientErrorDoesNotRetry(t *testing.T) {
	attempts := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	})

	c, server := setupTestServer(handler)
	defer server.Close()

	_, err := c.DailyBars(context.Background(), "BBCA", time.Now().AddDate(0, -1, 0), time.Now())

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRecentBars_UsesLookbackWindow(t *testing.T) {
	var gotStart, gotEnd string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStart = r.URL.Query().Get("start")
		gotEnd = r.URL.Query().Get("end")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(barsJSON()))
	})

	c, server := setupTestServer(handler)
	defer server.Close()

	_, err := c.RecentBars(context.Background(), "BBCA", 6)

	assert.NoError(t, err)
	assert.NotEmpty(t, gotStart)
	assert.NotEmpty(t, gotEnd)
}
