package kline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// PoolKlineClient fetches candles from a DEX-native kline endpoint keyed by
// pool id. The endpoint URL is configurable and may carry {poolId},
// {interval}, {start} and {end} placeholders; without placeholders the
// parameters are appended as a query string.
//
// Payload shape varies across deployments, so both the list location and the
// per-candle fields are extracted by trying an explicit ordered list of
// candidate names.
type PoolKlineClient struct {
	baseURL    string
	httpClient *http.Client
	cache      Cache
	cacheTTL   time.Duration
}

// PoolKlineOption configures a PoolKlineClient.
type PoolKlineOption func(*PoolKlineClient)

// WithPoolKlineHTTPClient injects a custom http.Client.
func WithPoolKlineHTTPClient(hc *http.Client) PoolKlineOption {
	return func(c *PoolKlineClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithPoolKlineCache memoizes fetched series in cache for ttl.
func WithPoolKlineCache(cache Cache, ttl time.Duration) PoolKlineOption {
	return func(c *PoolKlineClient) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

func init() {
	RegisterSource("poolapi", func(_ string, cfg *SourceConfig, deps Deps) (Fetcher, error) {
		opts := make([]PoolKlineOption, 0, 2)
		if cfg.HTTPTimeout > 0 {
			opts = append(opts, WithPoolKlineHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
		}
		if deps.Cache != nil {
			opts = append(opts, WithPoolKlineCache(deps.Cache, deps.TTL))
		}
		return NewPoolKlineClient(cfg.BaseURL, opts...)
	})
}

// NewPoolKlineClient constructs a client for the given endpoint URL.
func NewPoolKlineClient(baseURL string, opts ...PoolKlineOption) (*PoolKlineClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("poolkline: endpoint url is required")
	}
	client := &PoolKlineClient{
		baseURL:    strings.TrimSpace(baseURL),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FetchKlines retrieves the candle series for poolID covering [startMs, endMs].
func (c *PoolKlineClient) FetchKlines(ctx context.Context, poolID, interval string, startMs, endMs int64) ([]Candle, error) {
	cacheKey := fmt.Sprintf("klines:pool:%s:%s:%d:%d", poolID, interval, startMs, endMs)
	if c.cache != nil {
		if cached, ok := c.cache.Get(cacheKey); ok {
			if klines, ok := cached.([]Candle); ok {
				return klines, nil
			}
		}
	}

	endpoint, err := c.resolveURL(poolID, interval, startMs, endMs)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("poolkline: build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poolkline: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("poolkline: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("poolkline: http status %d: %s", resp.StatusCode, string(body))
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("poolkline: decode response: %w", err)
	}

	var klines []Candle
	for _, raw := range extractCandleList(payload) {
		if candle, ok := normalizeCandle(raw); ok {
			klines = append(klines, candle)
		}
	}
	if len(klines) == 0 {
		return nil, fmt.Errorf("poolkline %s %s: %w", poolID, interval, ErrEmptyResult)
	}

	if c.cache != nil {
		c.cache.Set(cacheKey, klines, c.cacheTTL)
	}
	return klines, nil
}

func (c *PoolKlineClient) resolveURL(poolID, interval string, startMs, endMs int64) (string, error) {
	base := c.baseURL
	if strings.ContainsAny(base, "{") {
		replacer := strings.NewReplacer(
			"{poolId}", url.QueryEscape(poolID),
			"{interval}", url.QueryEscape(interval),
			"{start}", strconv.FormatInt(startMs, 10),
			"{end}", strconv.FormatInt(endMs, 10),
		)
		return replacer.Replace(base), nil
	}
	endpoint, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("poolkline: parse base url: %w", err)
	}
	query := endpoint.Query()
	query.Set("pool_id", poolID)
	query.Set("interval", interval)
	query.Set("start", strconv.FormatInt(startMs, 10))
	query.Set("end", strconv.FormatInt(endMs, 10))
	endpoint.RawQuery = query.Encode()
	return endpoint.String(), nil
}

// candleListKeys is the ordered set of payload locations a deployment may
// put its candle list under, tried top-level and below "data".
var candleListKeys = []string{"list", "kline", "klines", "items", "rows"}

func extractCandleList(payload any) []any {
	root, ok := payload.(map[string]any)
	if !ok {
		if list, ok := payload.([]any); ok {
			return list
		}
		return nil
	}
	if data, ok := root["data"]; ok {
		if list, ok := data.([]any); ok {
			return list
		}
		if nested, ok := data.(map[string]any); ok {
			for _, key := range candleListKeys {
				if list, ok := nested[key].([]any); ok {
					return list
				}
			}
		}
	}
	for _, key := range candleListKeys {
		if list, ok := root[key].([]any); ok {
			return list
		}
	}
	return nil
}

// Candidate field names per candle record, in lookup order.
var (
	candleTimeKeys   = []string{"open_time", "openTime", "timestamp", "time"}
	candleVolumeKeys = []string{"volume", "vol"}
)

// normalizeCandle maps a raw record into a Candle. Records are either
// positional arrays [time, o, h, l, c, v] or keyed objects.
func normalizeCandle(raw any) (Candle, bool) {
	switch entry := raw.(type) {
	case []any:
		if len(entry) < 5 {
			return Candle{}, false
		}
		openTime, err := int64Field(entry[0])
		if err != nil {
			return Candle{}, false
		}
		values := make([]float64, 4)
		for i := 1; i <= 4; i++ {
			v, err := floatField(entry[i])
			if err != nil {
				return Candle{}, false
			}
			values[i-1] = v
		}
		var volume float64
		if len(entry) > 5 {
			volume, _ = floatField(entry[5])
		}
		return Candle{
			OpenTime: toMillis(openTime),
			Open:     values[0],
			High:     values[1],
			Low:      values[2],
			Close:    values[3],
			Volume:   volume,
		}, true
	case map[string]any:
		openTime, ok := lookupInt64(entry, candleTimeKeys)
		if !ok {
			return Candle{}, false
		}
		open, okO := lookupFloat(entry, []string{"open"})
		high, okH := lookupFloat(entry, []string{"high"})
		low, okL := lookupFloat(entry, []string{"low"})
		closePx, okC := lookupFloat(entry, []string{"close"})
		if !okO || !okH || !okL || !okC {
			return Candle{}, false
		}
		volume, _ := lookupFloat(entry, candleVolumeKeys)
		return Candle{
			OpenTime: toMillis(openTime),
			Open:     open,
			High:     high,
			Low:      low,
			Close:    closePx,
			Volume:   volume,
		}, true
	default:
		return Candle{}, false
	}
}

func lookupFloat(record map[string]any, keys []string) (float64, bool) {
	for _, key := range keys {
		if raw, ok := record[key]; ok {
			if v, err := floatField(raw); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

func lookupInt64(record map[string]any, keys []string) (int64, bool) {
	for _, key := range keys {
		if raw, ok := record[key]; ok {
			if v, err := int64Field(raw); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

// toMillis normalizes second-resolution timestamps to milliseconds.
func toMillis(ts int64) int64 {
	if ts < 1_000_000_000_000 {
		return ts * 1000
	}
	return ts
}
