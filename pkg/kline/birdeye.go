package kline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBirdeyeBaseURL = "https://public-api.birdeye.so/defi/v3/ohlcv"

// ErrNoAPIKey indicates the secondary provider has no credential configured.
var ErrNoAPIKey = errors.New("birdeye: api key is not configured")

// birdeyeIntervals maps lowercase intervals to the provider's type parameter.
var birdeyeIntervals = map[string]string{
	"1m": "1m", "3m": "3m", "5m": "5m", "15m": "15m", "30m": "30m",
	"1h": "1H", "2h": "2H", "4h": "4H", "6h": "6H", "8h": "8H", "12h": "12H",
	"1d": "1D", "3d": "3D", "1w": "1W", "1M": "1M",
}

// BirdeyeClient fetches OHLCV bars from a Birdeye-compatible endpoint, keyed
// directly by the on-chain asset address rather than an exchange symbol.
type BirdeyeClient struct {
	baseURL    string
	apiKey     string
	chain      string
	httpClient *http.Client
	cache      Cache
	cacheTTL   time.Duration
}

// BirdeyeOption configures a BirdeyeClient.
type BirdeyeOption func(*BirdeyeClient)

// WithBirdeyeBaseURL overrides the OHLCV endpoint URL.
func WithBirdeyeBaseURL(baseURL string) BirdeyeOption {
	return func(c *BirdeyeClient) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithBirdeyeChain sets the x-chain header value.
func WithBirdeyeChain(chain string) BirdeyeOption {
	return func(c *BirdeyeClient) {
		if chain != "" {
			c.chain = chain
		}
	}
}

// WithBirdeyeHTTPClient injects a custom http.Client.
func WithBirdeyeHTTPClient(hc *http.Client) BirdeyeOption {
	return func(c *BirdeyeClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBirdeyeCache memoizes fetched series in cache for ttl.
func WithBirdeyeCache(cache Cache, ttl time.Duration) BirdeyeOption {
	return func(c *BirdeyeClient) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

func init() {
	RegisterSource("birdeye", func(_ string, cfg *SourceConfig, deps Deps) (Fetcher, error) {
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, ErrNoAPIKey
		}
		opts := make([]BirdeyeOption, 0, 4)
		if cfg.BaseURL != "" {
			opts = append(opts, WithBirdeyeBaseURL(cfg.BaseURL))
		}
		if cfg.Chain != "" {
			opts = append(opts, WithBirdeyeChain(cfg.Chain))
		}
		if cfg.HTTPTimeout > 0 {
			opts = append(opts, WithBirdeyeHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
		}
		if deps.Cache != nil {
			opts = append(opts, WithBirdeyeCache(deps.Cache, deps.TTL))
		}
		return NewBirdeyeClient(cfg.APIKey, opts...), nil
	})
}

// NewBirdeyeClient constructs a client for the given API key.
func NewBirdeyeClient(apiKey string, opts ...BirdeyeOption) *BirdeyeClient {
	client := &BirdeyeClient{
		baseURL:    defaultBirdeyeBaseURL,
		apiKey:     strings.TrimSpace(apiKey),
		chain:      "sui",
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// FetchKlines retrieves the candle series for the asset address covering
// [startMs, endMs]. The provider works in unix seconds; times are converted
// on the way in and out.
func (c *BirdeyeClient) FetchKlines(ctx context.Context, address, interval string, startMs, endMs int64) ([]Candle, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	cacheKey := fmt.Sprintf("klines:birdeye:%s:%s:%d:%d", address, interval, startMs, endMs)
	if c.cache != nil {
		if cached, ok := c.cache.Get(cacheKey); ok {
			if klines, ok := cached.([]Candle); ok {
				return klines, nil
			}
		}
	}

	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("birdeye: parse base url: %w", err)
	}
	query := endpoint.Query()
	query.Set("address", address)
	query.Set("type", birdeyeInterval(interval))
	query.Set("time_from", strconv.FormatInt(startMs/1000, 10))
	query.Set("time_to", strconv.FormatInt(endMs/1000, 10))
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("birdeye: build request: %w", err)
	}
	req.Header.Set("x-chain", c.chain)
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("birdeye: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("birdeye: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("birdeye: http status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Data struct {
			Items []struct {
				UnixTime int64   `json:"unixTime"`
				Open     float64 `json:"o"`
				High     float64 `json:"h"`
				Low      float64 `json:"l"`
				Close    float64 `json:"c"`
				Volume   float64 `json:"v"`
			} `json:"items"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("birdeye: decode response: %w", err)
	}
	if len(payload.Data.Items) == 0 {
		return nil, fmt.Errorf("birdeye %s %s: %w", address, interval, ErrEmptyResult)
	}

	klines := make([]Candle, 0, len(payload.Data.Items))
	for _, item := range payload.Data.Items {
		klines = append(klines, Candle{
			OpenTime: item.UnixTime * 1000,
			Open:     item.Open,
			High:     item.High,
			Low:      item.Low,
			Close:    item.Close,
			Volume:   item.Volume,
		})
	}

	if c.cache != nil {
		c.cache.Set(cacheKey, klines, c.cacheTTL)
	}
	return klines, nil
}

func birdeyeInterval(interval string) string {
	if mapped, ok := birdeyeIntervals[interval]; ok {
		return mapped
	}
	return strings.ToUpper(interval)
}
