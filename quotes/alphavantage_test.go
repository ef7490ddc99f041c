package quotes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "GLOBAL_QUOTE", r.URL.Query().Get("function"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAlphaVantage_Price(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{
		"Global Quote": {
			"01. symbol": "AAPL",
			"05. price": "150.2500",
			"07. latest trading day": "2024-03-15"
		}
	}`)
	c := NewAlphaVantage("test-key", WithBaseURL(srv.URL))

	price, err := c.Price(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 150.25, price)
}

func TestAlphaVantage_PriceErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"empty global quote", http.StatusOK, `{"Global Quote": {}}`, ErrNoData},
		{"missing global quote", http.StatusOK, `{}`, ErrNoData},
		{"invalid symbol", http.StatusOK, `{"Error Message": "Invalid API call."}`, ErrNoData},
		{"rate limit note", http.StatusOK, `{"Note": "Thank you for using Alpha Vantage!"}`, ErrRateLimited},
		{"information", http.StatusOK, `{"Information": "premium endpoint"}`, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.status, tt.body)
			c := NewAlphaVantage("test-key", WithBaseURL(srv.URL))

			_, err := c.Price(context.Background(), "NOPE")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAlphaVantage_HTTPStatus(t *testing.T) {
	srv := newTestServer(t, http.StatusInternalServerError, `oops`)
	c := NewAlphaVantage("test-key", WithBaseURL(srv.URL))

	_, err := c.Price(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 500")
	assert.NotErrorIs(t, err, ErrNoData)
}

func TestAlphaVantage_BadPayload(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"Global Quote": {"05. price": "abc"}}`)
	c := NewAlphaVantage("test-key", WithBaseURL(srv.URL))

	_, err := c.Price(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse price")
}

func TestAlphaVantage_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)

	c := NewAlphaVantage("test-key", WithBaseURL(srv.URL), WithTimeout(50*time.Millisecond))

	_, err := c.Price(context.Background(), "AAPL")
	assert.Error(t, err)
}

func TestAlphaVantage_CancelledContext(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"Global Quote": {"05. price": "1"}}`)
	c := NewAlphaVantage("test-key", WithBaseURL(srv.URL), WithRateLimit(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Price(ctx, "AAPL")
	assert.ErrorIs(t, err, context.Canceled)
}
