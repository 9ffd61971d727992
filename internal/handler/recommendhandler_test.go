package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suilp-api/internal/svc"
	klinepkg "suilp-api/pkg/kline"
	poolpkg "suilp-api/pkg/pool"
	"suilp-api/pkg/quant"
	"suilp-api/pkg/token"
)

const handlerPoolType = "0x1eabed72c53feb3805120a081dc15963c204dc8d091542592abaf7a35689b2fb::pool::Pool<" +
	handlerSuiType + ", " + handlerUsdcType + ">"

// newChainServer answers sui_getObject with a pool at sqrt price 1.0.
func newChainServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "sui_getObject", req.Method)
		err := json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"result": map[string]any{
				"data": map[string]any{
					"objectId": handlerPoolID,
					"type":     handlerPoolType,
					"content": map[string]any{
						"dataType": "moveObject",
						"fields": map[string]any{
							"current_sqrt_price": "18446744073709551616",
							"tick_spacing":       60,
							"fee_rate":           2500,
						},
					},
				},
			},
		})
		require.NoError(t, err)
	}))
}

func TestRecommendHandler(t *testing.T) {
	listing := newListingServer(t)
	defer listing.Close()
	chain := newChainServer(t)
	defer chain.Close()

	var quantReq quant.Request
	engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/recommend", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&quantReq))
		_, err := w.Write([]byte(`{"candidates":{"balanced":{"pa":900,"pb":1100}}}`))
		require.NoError(t, err)
	}))
	defer engine.Close()

	tokens := token.NewRegistry()
	primary := fetcherFunc(func(_ context.Context, key, _ string, _, _ int64) ([]klinepkg.Candle, error) {
		assert.Equal(t, "SUIUSDC", key)
		return []klinepkg.Candle{
			{OpenTime: 1000, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
			{OpenTime: 2000, Open: 1.5, High: 3, Low: 1, Close: 2.5, Volume: 20},
		}, nil
	})
	listingClient := poolpkg.NewListingClient(tokens, poolpkg.WithListingURLs([]string{listing.URL}))
	svcCtx := &svc.ServiceContext{
		Tokens:  tokens,
		Klines:  klinepkg.NewResolver(tokens, primary),
		Listing: listingClient,
		Pools: poolpkg.NewResolver(
			poolpkg.NewChainClient(poolpkg.WithChainRPCURL(chain.URL)),
			poolpkg.WithResolverListing(listingClient),
		),
		Quant: quant.NewClient(engine.URL),
	}

	body := strings.NewReader(`{"pool_id":"` + handlerPoolID + `","days":7,"interval":"1h"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/recommend", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	RecommendHandler(svcCtx)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp RecommendResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "primary", resp.KlineSource)
	assert.Equal(t, "SUI", resp.BaseSymbol)
	assert.Equal(t, "USDC", resp.QuoteSymbol)
	assert.Nil(t, resp.QuoteUsdEntry)
	assert.Contains(t, string(resp.Recommendation), "balanced")

	// Engine received the resolved pool state and the flattened candles.
	assert.InDelta(t, 1000.0, quantReq.CurrentPrice, 1e-6)
	assert.Equal(t, 60, quantReq.TickSpacing)
	assert.InDelta(t, 0.0025, quantReq.FeeRate, 1e-9)
	assert.Equal(t, "balanced", quantReq.Profile)
	assert.Equal(t, defaultStrategies, quantReq.Strategies)
	require.Len(t, quantReq.Klines, 2)
	assert.Equal(t, []float64{1000, 1, 2, 0.5, 1.5, 10}, quantReq.Klines[0])
}

func TestResolveSeriesReportsPoolKeyedFailure(t *testing.T) {
	tokens := token.NewRegistry()
	primary := fetcherFunc(func(_ context.Context, _, _ string, _, _ int64) ([]klinepkg.Candle, error) {
		return nil, klinepkg.ErrEmptyResult
	})
	svcCtx := &svc.ServiceContext{
		Tokens: tokens,
		Klines: klinepkg.NewResolver(tokens, primary),
		PoolKlines: fetcherFunc(func(_ context.Context, _, _ string, _, _ int64) ([]klinepkg.Candle, error) {
			return nil, errors.New("upstream timeout")
		}),
	}

	summary := &poolpkg.Summary{CoinTypeA: handlerSuiType, CoinTypeB: handlerUsdcType}
	_, err := resolveSeries(context.Background(), svcCtx, summary, handlerPoolID, "1h", 0, 2000)
	require.Error(t, err)

	// Both the symbol chain and the pool-keyed attempt show up in the trail.
	assert.ErrorIs(t, err, klinepkg.ErrAllSourcesExhausted)
	assert.Contains(t, err.Error(), "pool source: upstream timeout")
}

func TestRecommendHandlerRequiresPoolID(t *testing.T) {
	svcCtx := &svc.ServiceContext{}

	req := httptest.NewRequest(http.MethodPost, "/api/recommend", strings.NewReader(`{"days":7}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	RecommendHandler(svcCtx)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
