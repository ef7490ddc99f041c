package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://www.alphavantage.co"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 5 // requests per second
)

type alphaVantageResponse struct {
	GlobalQuote struct {
		Symbol           string `json:"01. symbol"`
		Price            string `json:"05. price"`
		LatestTradingDay string `json:"07. latest trading day"`
	} `json:"Global Quote"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

// AlphaVantage is a Provider backed by the GLOBAL_QUOTE endpoint.
// It never caches or retries.
type AlphaVantage struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// Option configures the client
type Option func(*AlphaVantage)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) Option {
	return func(c *AlphaVantage) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *AlphaVantage) {
		c.httpClient.Timeout = timeout
	}
}

// WithRateLimit sets the request rate
func WithRateLimit(requestsPerSecond int) Option {
	return func(c *AlphaVantage) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *AlphaVantage) {
		c.logger = logger
	}
}

func NewAlphaVantage(apiKey string, opts ...Option) *AlphaVantage {
	c := &AlphaVantage{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *AlphaVantage) Price(ctx context.Context, symbol string) (float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", symbol)
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/query?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("build quote request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch quote for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetch quote for %s: alpha vantage http %d", symbol, resp.StatusCode)
	}

	var result alphaVantageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("parse quote for %s: %w", symbol, err)
	}

	if result.Note != "" || result.Information != "" {
		return 0, fmt.Errorf("%w: %s", ErrRateLimited, symbol)
	}
	if result.GlobalQuote.Price == "" {
		c.logger.Error().Str("symbol", symbol).Msg("No data found for symbol")
		return 0, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	price, err := strconv.ParseFloat(result.GlobalQuote.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q for %s: %w", result.GlobalQuote.Price, symbol, err)
	}

	c.logger.Debug().
		Str("symbol", symbol).
		Float64("price", price).
		Dur("elapsed", time.Since(start)).
		Msg("fetched quote")
	return price, nil
}
