package pool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"suilp-api/pkg/token"
)

// defaultListingURLs are tried in order until one responds.
var defaultListingURLs = []string{
	"https://api-sui.cetus.zone/v2/sui/pools_info",
	"https://api.cetus.zone/v2/sui/pools_info",
}

const listingCacheKey = "pools:listing"

// ListingClient fetches the DEX pool listing with its volume, fee, APR and
// TVL metrics.
type ListingClient struct {
	urls       []string
	httpClient *http.Client
	tokens     *token.Registry
	cache      Cache
	cacheTTL   time.Duration
}

// ListingOption configures a ListingClient.
type ListingOption func(*ListingClient)

// WithListingURLs replaces the endpoint fallback list. The built-in fallbacks
// are kept after any custom URLs.
func WithListingURLs(urls []string) ListingOption {
	return func(c *ListingClient) {
		merged := make([]string, 0, len(urls)+len(defaultListingURLs))
		seen := make(map[string]struct{})
		for _, url := range append(append([]string{}, urls...), defaultListingURLs...) {
			url = strings.TrimSpace(url)
			if url == "" {
				continue
			}
			if _, ok := seen[url]; ok {
				continue
			}
			seen[url] = struct{}{}
			merged = append(merged, url)
		}
		if len(merged) > 0 {
			c.urls = merged
		}
	}
}

// WithListingHTTPClient injects a custom http.Client.
func WithListingHTTPClient(hc *http.Client) ListingOption {
	return func(c *ListingClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithListingCache memoizes the raw listing in cache for ttl.
func WithListingCache(cache Cache, ttl time.Duration) ListingOption {
	return func(c *ListingClient) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// NewListingClient constructs a listing client over the given registry.
func NewListingClient(tokens *token.Registry, opts ...ListingOption) *ListingClient {
	client := &ListingClient{
		urls:       defaultListingURLs,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		tokens:     tokens,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Summaries returns up to limit pools sorted descending by the given metric
// (volume_24h, fees_24h, apr or tvl). Unverified pools are excluded.
func (c *ListingClient) Summaries(ctx context.Context, limit int, sortBy string) ([]Summary, error) {
	pools, err := c.fetchSummaries(ctx)
	if err != nil {
		return nil, err
	}
	if sortBy == "" {
		sortBy = "volume_24h"
	}
	sorted := make([]Summary, len(pools))
	copy(sorted, pools)
	sort.SliceStable(sorted, func(i, j int) bool {
		return metricValue(sorted[i], sortBy) > metricValue(sorted[j], sortBy)
	})
	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

// PoolByID returns the listing row for one pool, or nil when the pool is not
// listed.
func (c *ListingClient) PoolByID(ctx context.Context, poolID string) (*Summary, error) {
	pools, err := c.fetchSummaries(ctx)
	if err != nil {
		return nil, err
	}
	for i := range pools {
		if pools[i].PoolID == poolID {
			return &pools[i], nil
		}
	}
	return nil, nil
}

func metricValue(s Summary, sortBy string) float64 {
	var metric *float64
	switch sortBy {
	case "fees_24h":
		metric = s.Fees24h
	case "apr":
		metric = s.APR
	case "tvl":
		metric = s.TVL
	default:
		metric = s.Volume24h
	}
	if metric == nil {
		return -1
	}
	return *metric
}

func (c *ListingClient) fetchSummaries(ctx context.Context) ([]Summary, error) {
	if c.cache != nil {
		if cached, ok := c.cache.Get(listingCacheKey); ok {
			if pools, ok := cached.([]Summary); ok {
				return pools, nil
			}
		}
	}

	entries, err := c.fetchEntries(ctx)
	if err != nil {
		return nil, err
	}
	pools := make([]Summary, 0, len(entries))
	for _, entry := range entries {
		if summary := c.buildSummary(entry); summary != nil {
			pools = append(pools, *summary)
		}
	}

	if c.cache != nil {
		c.cache.Set(listingCacheKey, pools, c.cacheTTL)
	}
	return pools, nil
}

// fetchEntries tries each listing URL in order and accepts the first payload
// that yields a pool list under any of the known envelope shapes.
func (c *ListingClient) fetchEntries(ctx context.Context) ([]map[string]any, error) {
	var lastErr error
	for _, url := range c.urls {
		entries, err := c.fetchEntriesFrom(ctx, url)
		if err != nil {
			lastErr = err
			continue
		}
		return entries, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("pools listing: no endpoints configured")
	}
	return nil, lastErr
}

func (c *ListingClient) fetchEntriesFrom(ctx context.Context, url string) ([]map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("pools listing: build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pools listing: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("pools listing: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("pools listing: http status %d for %s", resp.StatusCode, url)
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("pools listing: decode response: %w", err)
	}
	return extractPoolEntries(payload), nil
}

func extractPoolEntries(payload map[string]any) []map[string]any {
	var raw []any
	if data, ok := payload["data"].(map[string]any); ok {
		if list, ok := data["lp_list"].([]any); ok {
			raw = list
		} else if list, ok := data["pools"].([]any); ok {
			raw = list
		}
	}
	if raw == nil {
		if list, ok := payload["data"].([]any); ok {
			raw = list
		} else if list, ok := payload["pools"].([]any); ok {
			raw = list
		}
	}
	entries := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if entry, ok := item.(map[string]any); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

// buildSummary maps one listing entry into a Summary, or nil when the entry
// is unverified or has no pool id.
func (c *ListingClient) buildSummary(entry map[string]any) *Summary {
	poolObj := entry
	if nested, ok := entry["pool"].(map[string]any); ok {
		poolObj = nested
	}
	coinA, _ := entry["coin_a"].(map[string]any)
	if coinA == nil {
		coinA, _ = entry["coinA"].(map[string]any)
	}
	coinB, _ := entry["coin_b"].(map[string]any)
	if coinB == nil {
		coinB, _ = entry["coinB"].(map[string]any)
	}

	if flag, ok := getField(poolObj, "is_verified", "isVerified", "is_whitelisted", "isWhitelist", "is_whitelist", "is_white_list"); ok {
		if flag == false || flag == float64(0) {
			return nil
		}
	}

	poolID := stringField(poolObj, "address", "pool_id", "poolId", "id")
	if poolID == "" {
		poolID = stringField(entry, "pool_id", "poolId", "id")
	}
	if poolID == "" {
		return nil
	}

	coinTypeA := stringField(coinA, "address", "type", "coin_type", "coinType")
	coinTypeB := stringField(coinB, "address", "type", "coin_type", "coinType")

	symbolA := token.NormalizeSymbol(stringField(coinA, "symbol", "coin_symbol", "name"))
	if symbolA == "" {
		symbolA = c.tokens.Symbol(coinTypeA)
	}
	symbolB := token.NormalizeSymbol(stringField(coinB, "symbol", "coin_symbol", "name"))
	if symbolB == "" {
		symbolB = c.tokens.Symbol(coinTypeB)
	}
	symbol := poolID
	if len(symbol) > 10 {
		symbol = symbol[:10]
	}
	if symbolA != "" && symbolB != "" {
		symbol = symbolA + "/" + symbolB
	}

	feeRaw, _ := firstFloat([]map[string]any{poolObj}, "fee_rate", "fee", "feeRate")
	objs := []map[string]any{poolObj, entry}

	summary := &Summary{
		PoolID:    poolID,
		Symbol:    symbol,
		FeeRate:   normalizeFeeRate(feeRaw),
		Volume24h: metricPtr(objs, "volume_24h", "volume24h", "vol_24h", "vol24h"),
		Fees24h:   metricPtr(objs, "fees_24h", "fee_24h", "fees24h", "fee24h"),
		APR:       metricPtr(objs, "apr", "apr_24h", "apr24h"),
		TVL:       metricPtr(objs, "tvl", "tvl_usd", "liquidity"),
		CoinTypeA: coinTypeA,
		CoinTypeB: coinTypeB,
	}
	if decimals, ok := firstFloat([]map[string]any{coinA}, "decimals", "decimal"); ok {
		summary.DecimalsA = int(decimals)
	}
	if decimals, ok := firstFloat([]map[string]any{coinB}, "decimals", "decimal"); ok {
		summary.DecimalsB = int(decimals)
	}
	if symbolA != "" && symbolB != "" {
		summary.PairSymbol = derivePairSymbol(symbolA, symbolB)
	}
	return summary
}

// derivePairSymbol maps a pool's symbols onto an exchange pair: the stable
// side denominates, and a pair without a stable side is quoted in USDT.
func derivePairSymbol(symbolA, symbolB string) string {
	if token.IsStableSymbol(symbolB) {
		return symbolA + symbolB
	}
	if token.IsStableSymbol(symbolA) {
		return symbolB + symbolA
	}
	return symbolA + "USDT"
}

func stringField(obj map[string]any, keys ...string) string {
	raw, ok := getField(obj, keys...)
	if !ok {
		return ""
	}
	s, _ := raw.(string)
	return strings.TrimSpace(s)
}

func metricPtr(objs []map[string]any, keys ...string) *float64 {
	if value, ok := firstFloat(objs, keys...); ok {
		return &value
	}
	return nil
}
