package kline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultBinanceBaseURL = "https://api.binance.com/api/v3/klines"
	binancePageLimit      = 1000
	defaultHTTPTimeout    = 10 * time.Second
)

// BinanceClient fetches spot klines from a Binance-compatible REST endpoint.
// The payload is the exchange's array-of-arrays shape with string-encoded
// prices; pagination is handled transparently up to the requested end time.
type BinanceClient struct {
	baseURL    string
	httpClient *http.Client
	cache      Cache
	cacheTTL   time.Duration
}

// BinanceOption configures a BinanceClient.
type BinanceOption func(*BinanceClient)

// WithBinanceBaseURL overrides the kline endpoint URL.
func WithBinanceBaseURL(baseURL string) BinanceOption {
	return func(c *BinanceClient) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithBinanceHTTPClient injects a custom http.Client.
func WithBinanceHTTPClient(hc *http.Client) BinanceOption {
	return func(c *BinanceClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBinanceCache memoizes fetched series in cache for ttl.
func WithBinanceCache(cache Cache, ttl time.Duration) BinanceOption {
	return func(c *BinanceClient) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

func init() {
	RegisterSource("binance", func(_ string, cfg *SourceConfig, deps Deps) (Fetcher, error) {
		opts := make([]BinanceOption, 0, 3)
		if cfg.BaseURL != "" {
			opts = append(opts, WithBinanceBaseURL(cfg.BaseURL))
		}
		if cfg.HTTPTimeout > 0 {
			opts = append(opts, WithBinanceHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
		}
		if deps.Cache != nil {
			opts = append(opts, WithBinanceCache(deps.Cache, deps.TTL))
		}
		return NewBinanceClient(opts...), nil
	})
}

// NewBinanceClient constructs a client with default endpoint and timeout.
func NewBinanceClient(opts ...BinanceOption) *BinanceClient {
	client := &BinanceClient{
		baseURL:    defaultBinanceBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// FetchKlines retrieves the candle series for symbol covering [startMs, endMs].
func (c *BinanceClient) FetchKlines(ctx context.Context, symbol, interval string, startMs, endMs int64) ([]Candle, error) {
	cacheKey := fmt.Sprintf("klines:binance:%s:%s:%d:%d", symbol, interval, startMs, endMs)
	if c.cache != nil {
		if cached, ok := c.cache.Get(cacheKey); ok {
			if klines, ok := cached.([]Candle); ok {
				return klines, nil
			}
		}
	}

	var klines []Candle
	currentStart := startMs
	for currentStart < endMs {
		rows, err := c.fetchPage(ctx, symbol, interval, currentStart, endMs)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			break
		}
		for _, row := range rows {
			candle, err := parseBinanceRow(row)
			if err != nil {
				return nil, fmt.Errorf("binance: %w", err)
			}
			klines = append(klines, candle)
		}
		lastTime := klines[len(klines)-1].OpenTime
		if lastTime >= endMs || len(rows) < binancePageLimit {
			break
		}
		currentStart = lastTime + 1
	}

	if len(klines) == 0 {
		return nil, fmt.Errorf("binance %s %s: %w", symbol, interval, ErrEmptyResult)
	}
	if c.cache != nil {
		c.cache.Set(cacheKey, klines, c.cacheTTL)
	}
	return klines, nil
}

func (c *BinanceClient) fetchPage(ctx context.Context, symbol, interval string, startMs, endMs int64) ([][]any, error) {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("binance: parse base url: %w", err)
	}
	query := endpoint.Query()
	query.Set("symbol", symbol)
	query.Set("interval", interval)
	query.Set("startTime", strconv.FormatInt(startMs, 10))
	query.Set("endTime", strconv.FormatInt(endMs, 10))
	query.Set("limit", strconv.Itoa(binancePageLimit))
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("binance: build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("binance: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("binance: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("binance: http status %d: %s", resp.StatusCode, string(body))
	}

	var rows [][]any
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("binance: decode response: %w", err)
	}
	return rows, nil
}

// parseBinanceRow maps one raw kline row. The exchange encodes open time as a
// number and OHLCV as strings; both shapes are tolerated per field.
func parseBinanceRow(row []any) (Candle, error) {
	if len(row) < 6 {
		return Candle{}, fmt.Errorf("kline row has %d fields, want at least 6", len(row))
	}
	openTime, err := int64Field(row[0])
	if err != nil {
		return Candle{}, fmt.Errorf("open time: %w", err)
	}
	values := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		v, err := floatField(row[i])
		if err != nil {
			return Candle{}, fmt.Errorf("field %d: %w", i, err)
		}
		values[i-1] = v
	}
	return Candle{
		OpenTime: openTime,
		Open:     values[0],
		High:     values[1],
		Low:      values[2],
		Close:    values[3],
		Volume:   values[4],
	}, nil
}

func int64Field(value any) (int64, error) {
	switch v := value.(type) {
	case float64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	case json.Number:
		return v.Int64()
	default:
		return 0, fmt.Errorf("unexpected type %T", value)
	}
}

func floatField(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case string:
		return strconv.ParseFloat(v, 64)
	case json.Number:
		return v.Float64()
	default:
		return 0, fmt.Errorf("unexpected type %T", value)
	}
}
