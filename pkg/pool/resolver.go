package pool

import (
	"context"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"suilp-api/pkg/tickmath"
)

// sqrtPriceKeys, tickSpacingKeys and feeRateKeys are the on-chain field
// aliases seen across pool object versions, in lookup order.
var (
	sqrtPriceKeys   = []string{"current_sqrt_price", "current_sqrt_price_x64", "currentSqrtPrice", "currentSqrtPriceX64"}
	tickSpacingKeys = []string{"tick_spacing", "tickSpacing", "tick_spacing_value"}
	feeRateKeys     = []string{"fee_rate", "feeRate", "fee"}
)

// Resolver assembles pool trading configuration from the chain object, the
// listing metadata and, optionally, an aggregator quote.
type Resolver struct {
	chain      *ChainClient
	listing    *ListingClient
	aggregator *AggregatorClient
	cache      Cache
	configTTL  time.Duration
	metaTTL    time.Duration
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverListing attaches the listing client used for decimals and
// symbol metadata.
func WithResolverListing(listing *ListingClient) ResolverOption {
	return func(r *Resolver) {
		r.listing = listing
	}
}

// WithResolverAggregator attaches the aggregator used as an alternative
// price source.
func WithResolverAggregator(aggregator *AggregatorClient) ResolverOption {
	return func(r *Resolver) {
		r.aggregator = aggregator
	}
}

// WithResolverCache memoizes resolved configs for configTTL and coin
// metadata for metaTTL.
func WithResolverCache(cache Cache, configTTL, metaTTL time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.cache = cache
		r.configTTL = configTTL
		r.metaTTL = metaTTL
	}
}

// NewResolver constructs a Resolver over the given chain client.
func NewResolver(chain *ChainClient, opts ...ResolverOption) *Resolver {
	r := &Resolver{chain: chain}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetConfig resolves the trading configuration of one pool. The result is
// cached per pool and price source.
func (r *Resolver) GetConfig(ctx context.Context, poolID string, priceSource PriceSource) (*Config, error) {
	if priceSource == "" {
		priceSource = PriceSourcePool
	}
	cacheKey := fmt.Sprintf("pool:%s:%s", poolID, priceSource)
	if r.cache != nil {
		if cached, ok := r.cache.Get(cacheKey); ok {
			if cfg, ok := cached.(*Config); ok {
				return cfg, nil
			}
		}
	}

	obj, err := r.chain.GetPoolObject(ctx, poolID)
	if err != nil {
		return nil, err
	}

	coinTypeA, coinTypeB, _ := obj.CoinTypes()

	var summary *Summary
	if r.listing != nil {
		summary, err = r.listing.PoolByID(ctx, poolID)
		if err != nil {
			logx.WithContext(ctx).Infof("pool listing unavailable for %s: %v", poolID, err)
			summary = nil
		}
	}
	if summary != nil {
		if coinTypeA == "" {
			coinTypeA = summary.CoinTypeA
		}
		if coinTypeB == "" {
			coinTypeB = summary.CoinTypeB
		}
	}

	decimalsA, decimalsB, err := r.resolveDecimals(ctx, summary, coinTypeA, coinTypeB)
	if err != nil {
		return nil, err
	}

	sqrtPriceRaw, ok := getField(obj.Fields, sqrtPriceKeys...)
	if !ok {
		return nil, fmt.Errorf("%w: %s sqrt price", ErrMissingField, poolID)
	}
	sqrtPrice, ok := toBigInt(sqrtPriceRaw)
	if !ok {
		return nil, fmt.Errorf("%w: %s sqrt price is not numeric", ErrMissingField, poolID)
	}

	tickSpacing, ok := firstFloat([]map[string]any{obj.Fields}, tickSpacingKeys...)
	if !ok || tickSpacing <= 0 {
		return nil, fmt.Errorf("%w: %s tick spacing", ErrMissingField, poolID)
	}

	feeRaw, _ := firstFloat([]map[string]any{obj.Fields}, feeRateKeys...)

	priceDecimal, err := tickmath.SqrtPriceX64ToPrice(sqrtPrice, decimalsA, decimalsB)
	if err != nil {
		return nil, fmt.Errorf("pool %s: %w", poolID, err)
	}
	priceFromPool, _ := priceDecimal.Float64()

	currentPrice := priceFromPool
	if priceSource == PriceSourceAggregator && r.aggregator != nil && coinTypeA != "" && coinTypeB != "" {
		aggPrice, err := r.aggregator.Price(ctx, coinTypeA, coinTypeB, decimalsA, decimalsB)
		if err != nil {
			logx.WithContext(ctx).Infof("aggregator quote failed for %s, keeping pool price: %v", poolID, err)
		} else if aggPrice > 0 {
			currentPrice = aggPrice
		}
	}

	cfg := &Config{
		PoolID:        poolID,
		TickSpacing:   int(tickSpacing + 0.5),
		CurrentPrice:  currentPrice,
		FeeRate:       normalizeFeeRate(feeRaw),
		CoinTypeA:     coinTypeA,
		CoinTypeB:     coinTypeB,
		DecimalsA:     decimalsA,
		DecimalsB:     decimalsB,
		PriceSource:   priceSource,
		PriceFromPool: priceFromPool,
	}
	if r.cache != nil {
		r.cache.Set(cacheKey, cfg, r.configTTL)
	}
	return cfg, nil
}

// resolveDecimals takes decimals from the listing when present, otherwise
// from on-chain coin metadata.
func (r *Resolver) resolveDecimals(ctx context.Context, summary *Summary, coinTypeA, coinTypeB string) (int, int, error) {
	var decimalsA, decimalsB int
	if summary != nil {
		decimalsA = summary.DecimalsA
		decimalsB = summary.DecimalsB
	}
	if decimalsA == 0 && coinTypeA != "" {
		d, err := r.coinDecimals(ctx, coinTypeA)
		if err != nil {
			return 0, 0, err
		}
		decimalsA = d
	}
	if decimalsB == 0 && coinTypeB != "" {
		d, err := r.coinDecimals(ctx, coinTypeB)
		if err != nil {
			return 0, 0, err
		}
		decimalsB = d
	}
	return decimalsA, decimalsB, nil
}

func (r *Resolver) coinDecimals(ctx context.Context, coinType string) (int, error) {
	cacheKey := "coin:meta:" + coinType
	if r.cache != nil {
		if cached, ok := r.cache.Get(cacheKey); ok {
			if decimals, ok := cached.(int); ok {
				return decimals, nil
			}
		}
	}
	decimals, err := r.chain.GetCoinDecimals(ctx, coinType)
	if err != nil {
		return 0, err
	}
	if r.cache != nil {
		r.cache.Set(cacheKey, decimals, r.metaTTL)
	}
	return decimals, nil
}
