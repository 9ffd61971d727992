// Package kline resolves historical OHLCV series for DEX pool pairs by
// trying candle providers in priority order, synthesizing cross-rates when
// no direct market exists.
package kline

import (
	"time"

	"suilp-api/pkg/token"
)

// Candle is one OHLCV bar normalized from a provider payload. OpenTime is
// unix milliseconds; candles in a series are ascending and unique by OpenTime.
type Candle struct {
	OpenTime int64   `json:"openTime"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   float64 `json:"volume"`
}

// Source identifies which provider slot satisfied a request.
type Source string

const (
	SourcePrimary   Source = "primary"
	SourceSecondary Source = "secondary"
	// SourcePoolKeyed marks series served by a pool-id-keyed endpoint,
	// outside the symbol-derivation chain.
	SourcePoolKeyed Source = "pool"
)

// Pool carries the two coin types of the pool a series is requested for.
type Pool struct {
	CoinTypeA string
	CoinTypeB string
}

// Leg describes one side of the resolved base/quote orientation.
type Leg struct {
	CoinType string     `json:"coinType"`
	Symbol   string     `json:"symbol"`
	Side     token.Side `json:"side"`
}

// Result is a resolved candle series together with its provenance.
// QuoteUsdEntry is set only when cross-rate synthesis occurred and holds the
// quote asset's USD close at the first merged bar, for downstream capital
// sizing.
type Result struct {
	Klines        []Candle `json:"klines"`
	Source        Source   `json:"source"`
	Base          Leg      `json:"base"`
	Quote         Leg      `json:"quote"`
	QuoteUsdEntry *float64 `json:"quoteUsdEntry,omitempty"`
}

// Cache is the minimal TTL store provider clients memoize through. A nil
// cache disables memoization.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
}
