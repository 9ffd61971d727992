package svc

import (
	"log"
	"net/http"
	"time"

	"suilp-api/internal/cache"
	"suilp-api/internal/config"
	"suilp-api/pkg/insight"
	klinepkg "suilp-api/pkg/kline"
	poolpkg "suilp-api/pkg/pool"
	"suilp-api/pkg/quant"
	"suilp-api/pkg/token"
)

type ServiceContext struct {
	Config config.Config

	Cache  *cache.Store
	TTL    cache.TTLSet
	Tokens *token.Registry

	// Klines resolves candle series for pool pairs; Primary is the direct
	// exchange-symbol source behind it; PoolKlines is the optional
	// pool-keyed source used when symbol derivation has nothing to offer.
	Klines     *klinepkg.Resolver
	Primary    klinepkg.Fetcher
	PoolKlines klinepkg.Fetcher

	Listing *poolpkg.ListingClient
	Pools   *poolpkg.Resolver
	Quant   *quant.Client

	// Insight is nil when no model credential is configured.
	Insight *insight.Client
}

func NewServiceContext(c config.Config) *ServiceContext {
	store := cache.NewStore()
	ttl := cache.NewTTLSet(c.TTL)

	tokenOpts := []token.Option{}
	if len(c.QuoteRanking) > 0 {
		tokenOpts = append(tokenOpts, token.WithQuoteRanking(c.QuoteRanking))
	}
	tokens := token.NewRegistry(tokenOpts...)

	svc := &ServiceContext{
		Config: c,
		Cache:  store,
		TTL:    ttl,
		Tokens: tokens,
	}

	svc.Listing = poolpkg.NewListingClient(tokens,
		poolpkg.WithListingURLs(c.Chain.PoolsAPIURLs),
		poolpkg.WithListingCache(store, cache.PoolsListingTTL(ttl)),
	)

	chain := poolpkg.NewChainClient(
		poolpkg.WithChainRPCURL(c.Chain.RPCURL),
		poolpkg.WithChainMaxRetries(c.Chain.MaxRetries),
	)
	poolOpts := []poolpkg.ResolverOption{
		poolpkg.WithResolverListing(svc.Listing),
		poolpkg.WithResolverCache(store, cache.PoolConfigTTL(ttl), cache.CoinMetaTTL(ttl)),
	}
	if c.Chain.AggregatorURL != "" {
		poolOpts = append(poolOpts, poolpkg.WithResolverAggregator(
			poolpkg.NewAggregatorClient(c.Chain.AggregatorURL)))
	}
	svc.Pools = poolpkg.NewResolver(chain, poolOpts...)

	deps := klinepkg.Deps{Cache: store, TTL: cache.KlineTTL(ttl)}
	if c.Sources.Value != nil {
		resolver, err := c.Sources.Value.BuildResolver(tokens, deps)
		if err != nil {
			log.Fatalf("failed to build kline sources: %v", err)
		}
		svc.Klines = resolver
		svc.Primary = resolver.Primary()

		poolKeyed, err := c.Sources.Value.BuildPoolKeyed(deps)
		if err != nil {
			log.Fatalf("failed to build pool-keyed kline source: %v", err)
		}
		svc.PoolKlines = poolKeyed
	} else {
		primary := klinepkg.NewBinanceClient(
			klinepkg.WithBinanceCache(deps.Cache, deps.TTL))
		svc.Klines = klinepkg.NewResolver(tokens, primary)
		svc.Primary = primary
	}

	svc.Quant = quant.NewClient(c.Quant.URL,
		quant.WithHTTPClient(&http.Client{Timeout: 90 * time.Second}))

	if c.Insight.Enabled() {
		client, err := insight.NewClient(c.Insight)
		if err != nil {
			log.Fatalf("failed to init insight client: %v", err)
		}
		svc.Insight = client
	}

	return svc
}

// PriceSource maps the request value onto a pool price source, falling back
// to the configured default.
func (s *ServiceContext) PriceSource(raw string) poolpkg.PriceSource {
	if raw == string(poolpkg.PriceSourceAggregator) {
		return poolpkg.PriceSourceAggregator
	}
	if raw == string(poolpkg.PriceSourcePool) {
		return poolpkg.PriceSourcePool
	}
	if s.Config.PriceSourceDefault == string(poolpkg.PriceSourceAggregator) {
		return poolpkg.PriceSourceAggregator
	}
	return poolpkg.PriceSourcePool
}
