package pool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suilp-api/pkg/token"
)

const listingPayload = `{"data":{"lp_list":[
	{
		"pool": {"address":"0xpool1","fee_rate":"2500","volume_24h":"900000","tvl":"5000000","is_verified":true},
		"coin_a": {"symbol":"SUI","decimals":9,"address":"0x2::sui::SUI"},
		"coin_b": {"symbol":"USDC","decimals":6,"address":"0xusdc::usdc::USDC"}
	},
	{
		"pool": {"address":"0xpool2","fee_rate":0.003,"volume_24h":"1200000","apr":"42.5","is_verified":true},
		"coin_a": {"symbol":"WETH","decimals":8,"address":"0xeth::coin::COIN"},
		"coin_b": {"symbol":"SUI","decimals":9,"address":"0x2::sui::SUI"}
	},
	{
		"pool": {"address":"0xscam","volume_24h":"99999999","is_verified":false},
		"coin_a": {"symbol":"SCAM","decimals":6},
		"coin_b": {"symbol":"SUI","decimals":9}
	},
	{
		"pool": {"fee_rate":"100"},
		"coin_a": {"symbol":"X"},
		"coin_b": {"symbol":"Y"}
	}
]}}`

func newListingServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(listingPayload))
	}))
}

func TestListingSummaries(t *testing.T) {
	server := newListingServer(t)
	defer server.Close()

	client := NewListingClient(token.NewRegistry(), WithListingURLs([]string{server.URL}))
	pools, err := client.Summaries(context.Background(), 10, "volume_24h")
	require.NoError(t, err)

	// Unverified and id-less entries drop out; the rest sort by volume desc.
	require.Len(t, pools, 2)
	assert.Equal(t, "0xpool2", pools[0].PoolID)
	assert.Equal(t, "0xpool1", pools[1].PoolID)

	sui := pools[1]
	assert.Equal(t, "SUI/USDC", sui.Symbol)
	assert.InDelta(t, 0.0025, sui.FeeRate, 1e-12, "micro-unit fee converts to fraction")
	assert.Equal(t, 9, sui.DecimalsA)
	assert.Equal(t, 6, sui.DecimalsB)
	assert.Equal(t, "SUIUSDC", sui.PairSymbol)
	require.NotNil(t, sui.TVL)
	assert.InDelta(t, 5_000_000, *sui.TVL, 1e-9)
	assert.Nil(t, sui.APR, "unreported metric stays nil")

	eth := pools[0]
	assert.Equal(t, "ETH/SUI", eth.Symbol, "WETH folds to ETH")
	assert.InDelta(t, 0.003, eth.FeeRate, 1e-12, "fractional fee passes through")
	assert.Equal(t, "ETHUSDT", eth.PairSymbol, "no stable side quotes in USDT")
}

func TestListingSummariesLimitAndSort(t *testing.T) {
	server := newListingServer(t)
	defer server.Close()

	client := NewListingClient(token.NewRegistry(), WithListingURLs([]string{server.URL}))
	pools, err := client.Summaries(context.Background(), 1, "apr")
	require.NoError(t, err)

	require.Len(t, pools, 1)
	assert.Equal(t, "0xpool2", pools[0].PoolID, "only pool2 reports apr")
}

func TestListingFallsBackAcrossURLs(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer broken.Close()
	healthy := newListingServer(t)
	defer healthy.Close()

	client := NewListingClient(token.NewRegistry(),
		WithListingURLs([]string{broken.URL, healthy.URL}))
	pools, err := client.Summaries(context.Background(), 10, "")
	require.NoError(t, err)
	assert.NotEmpty(t, pools)
}

func TestListingPoolByID(t *testing.T) {
	server := newListingServer(t)
	defer server.Close()

	client := NewListingClient(token.NewRegistry(), WithListingURLs([]string{server.URL}))

	summary, err := client.PoolByID(context.Background(), "0xpool1")
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, "0x2::sui::SUI", summary.CoinTypeA)

	missing, err := client.PoolByID(context.Background(), "0xunknown")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

type countingCache struct {
	mu      sync.Mutex
	entries map[string]any
	sets    int
}

func newCountingCache() *countingCache {
	return &countingCache{entries: make(map[string]any)}
}

func (c *countingCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.entries[key]
	return value, ok
}

func (c *countingCache) Set(key string, value any, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.sets++
}

func TestListingCachesFetches(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(listingPayload))
	}))
	defer server.Close()

	client := NewListingClient(token.NewRegistry(),
		WithListingURLs([]string{server.URL}),
		WithListingCache(newCountingCache(), time.Minute))

	for i := 0; i < 3; i++ {
		_, err := client.Summaries(context.Background(), 10, "")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, calls)
}
