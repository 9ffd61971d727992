package kline

import (
	"context"
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/sync/errgroup"

	"suilp-api/pkg/token"
)

// Fetcher is the provider-side contract: given a provider-specific key
// (exchange symbol, asset address, or pool id) and an interval, return the
// candle series covering [startMs, endMs].
type Fetcher interface {
	FetchKlines(ctx context.Context, key, interval string, startMs, endMs int64) ([]Candle, error)
}

// Resolver turns a pool pair into a candle series by trying the primary
// source's symbol derivations, synthesizing a cross-rate when the quote is
// not a stable, and finally falling back to the secondary source keyed by
// coin type.
type Resolver struct {
	tokens    *token.Registry
	primary   Fetcher
	secondary Fetcher
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithSecondary installs the fallback source consulted when every primary
// strategy fails.
func WithSecondary(fetcher Fetcher) ResolverOption {
	return func(r *Resolver) {
		r.secondary = fetcher
	}
}

// NewResolver constructs a Resolver over the given registry and primary
// source.
func NewResolver(tokens *token.Registry, primary Fetcher, opts ...ResolverOption) *Resolver {
	r := &Resolver{tokens: tokens, primary: primary}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Primary exposes the exchange-symbol source for callers that already hold
// a symbol and need no pair resolution.
func (r *Resolver) Primary() Fetcher {
	return r.primary
}

// FetchKlinesForPool resolves the candle series for a pool pair. Orientation
// is fixed first; the resulting base/quote legs travel with the series so
// callers know what the prices mean.
func (r *Resolver) FetchKlinesForPool(ctx context.Context, pool Pool, interval string, startMs, endMs int64) (*Result, error) {
	sel := r.tokens.SelectBaseQuote(pool.CoinTypeA, pool.CoinTypeB)
	base := Leg{CoinType: sel.BaseCoinType, Symbol: sel.BaseSymbol, Side: sel.BaseSide}
	quote := Leg{CoinType: sel.QuoteCoinType, Symbol: sel.QuoteSymbol, Side: sel.QuoteSide}

	var attempts []string

	if r.primary != nil {
		result, err := r.fromPrimary(ctx, pool, sel, interval, startMs, endMs)
		if err == nil {
			result.Base = base
			result.Quote = quote
			return result, nil
		}
		attempts = append(attempts, fmt.Sprintf("primary: %v", err))
		logx.WithContext(ctx).Infof("primary kline source failed for %s/%s, falling back: %v",
			sel.BaseSymbol, sel.QuoteSymbol, err)
	}

	if r.secondary != nil {
		result, err := r.fromSecondary(ctx, sel, interval, startMs, endMs)
		if err == nil {
			result.Base = base
			result.Quote = quote
			return result, nil
		}
		attempts = append(attempts, fmt.Sprintf("secondary: %v", err))
	}

	if len(attempts) == 0 {
		attempts = append(attempts, "no sources configured")
	}
	return nil, fmt.Errorf("%w for %s/%s: %s",
		ErrAllSourcesExhausted, sel.BaseSymbol, sel.QuoteSymbol, strings.Join(attempts, "; "))
}

// fromPrimary fetches through the exchange-symbol source. A stable quote can
// be served by a direct listing; a non-stable quote needs the cross-rate of
// the two USD legs.
func (r *Resolver) fromPrimary(ctx context.Context, pool Pool, sel token.Selection, interval string, startMs, endMs int64) (*Result, error) {
	if token.IsStableSymbol(sel.QuoteSymbol) {
		return r.fetchDirect(ctx, pool, sel, interval, startMs, endMs)
	}
	baseSymbol := r.tokens.UsdPairSymbol(sel.BaseCoinType)
	quoteSymbol := r.tokens.UsdPairSymbol(sel.QuoteCoinType)
	if baseSymbol == "" || quoteSymbol == "" {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnsupportedPair, sel.BaseSymbol, sel.QuoteSymbol)
	}
	return r.fetchCrossRate(ctx, r.primary, baseSymbol, quoteSymbol, SourcePrimary, interval, startMs, endMs)
}

// fetchDirect tries each plausible exchange symbol for the pair in order and
// returns the first series that resolves.
func (r *Resolver) fetchDirect(ctx context.Context, pool Pool, sel token.Selection, interval string, startMs, endMs int64) (*Result, error) {
	candidates := make([]string, 0, 3)
	appendCandidate := func(symbol string) {
		if symbol == "" {
			return
		}
		for _, existing := range candidates {
			if existing == symbol {
				return
			}
		}
		candidates = append(candidates, symbol)
	}

	appendCandidate(r.tokens.DirectPairSymbol(sel.BaseCoinType, sel.QuoteCoinType))
	if sel.QuoteSymbol != "USDT" {
		appendCandidate(sel.BaseSymbol + "USDT")
	}
	appendCandidate(r.tokens.PoolPairSymbol(pool.CoinTypeA, pool.CoinTypeB))

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnsupportedPair, sel.BaseSymbol, sel.QuoteSymbol)
	}

	var lastErr error
	for _, symbol := range candidates {
		klines, err := r.primary.FetchKlines(ctx, symbol, interval, startMs, endMs)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", symbol, err)
			continue
		}
		return &Result{Klines: klines, Source: SourcePrimary}, nil
	}
	return nil, lastErr
}

// fetchCrossRate synthesizes base/quote from two USD-quoted legs of the given
// source. The legs are fetched concurrently; candles merge on exact open time
// and unmatched bars drop out.
func (r *Resolver) fetchCrossRate(ctx context.Context, source Fetcher, baseKey, quoteKey string, origin Source, interval string, startMs, endMs int64) (*Result, error) {
	var baseKlines, quoteKlines []Candle
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		klines, err := source.FetchKlines(groupCtx, baseKey, interval, startMs, endMs)
		if err != nil {
			return fmt.Errorf("%s: %w", baseKey, err)
		}
		baseKlines = klines
		return nil
	})
	group.Go(func() error {
		klines, err := source.FetchKlines(groupCtx, quoteKey, interval, startMs, endMs)
		if err != nil {
			return fmt.Errorf("%s: %w", quoteKey, err)
		}
		quoteKlines = klines
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	merged, quoteEntry := mergeRatio(baseKlines, quoteKlines)
	if len(merged) == 0 {
		return nil, fmt.Errorf("cross-rate %s over %s: %w", baseKey, quoteKey, ErrEmptyResult)
	}

	result := &Result{Klines: merged, Source: origin}
	if quoteEntry > 0 {
		result.QuoteUsdEntry = &quoteEntry
	}
	return result, nil
}

// fromSecondary mirrors the primary logic on the address-keyed fallback
// source: the provider quotes in USD, so a stable quote is served by the base
// coin's series directly and a non-stable quote by the cross-rate of the two
// coin-type legs.
func (r *Resolver) fromSecondary(ctx context.Context, sel token.Selection, interval string, startMs, endMs int64) (*Result, error) {
	if token.IsStableSymbol(sel.QuoteSymbol) {
		klines, err := r.secondary.FetchKlines(ctx, sel.BaseCoinType, interval, startMs, endMs)
		if err != nil {
			return nil, err
		}
		return &Result{Klines: klines, Source: SourceSecondary}, nil
	}
	return r.fetchCrossRate(ctx, r.secondary, sel.BaseCoinType, sel.QuoteCoinType, SourceSecondary, interval, startMs, endMs)
}

// mergeRatio joins two USD-quoted series on open time and divides base by
// quote per field. A quote bar with a non-positive open/high/low falls back
// to its close so a single bad field doesn't zero the ratio; a non-positive
// close drops the bar. Volume carries over from the base leg. The second
// return value is the quote close of the first merged bar, zero when nothing
// merges.
func mergeRatio(base, quote []Candle) ([]Candle, float64) {
	quoteByTime := make(map[int64]Candle, len(quote))
	for _, candle := range quote {
		quoteByTime[candle.OpenTime] = candle
	}

	var quoteEntry float64
	merged := make([]Candle, 0, len(base))
	for _, b := range base {
		q, ok := quoteByTime[b.OpenTime]
		if !ok || q.Close <= 0 {
			continue
		}
		if len(merged) == 0 {
			quoteEntry = q.Close
		}
		merged = append(merged, Candle{
			OpenTime: b.OpenTime,
			Open:     b.Open / positiveOr(q.Open, q.Close),
			High:     b.High / positiveOr(q.High, q.Close),
			Low:      b.Low / positiveOr(q.Low, q.Close),
			Close:    b.Close / q.Close,
			Volume:   b.Volume,
		})
	}
	return merged, quoteEntry
}

func positiveOr(value, fallback float64) float64 {
	if value > 0 {
		return value
	}
	return fallback
}
