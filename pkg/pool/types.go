// Package pool resolves on-chain CLMM pool state into normalized trading
// parameters: current price, tick spacing, fee rate and per-side decimals.
package pool

import (
	"errors"
	"time"
)

// PriceSource selects where the current price of a pool comes from.
type PriceSource string

const (
	// PriceSourcePool decodes the price from the pool's own sqrt price.
	PriceSourcePool PriceSource = "pool"
	// PriceSourceAggregator quotes a unit swap through the DEX aggregator,
	// falling back to the pool price when the quote is unusable.
	PriceSourceAggregator PriceSource = "aggregator"
)

var (
	// ErrPoolNotFound indicates the pool object does not exist on chain.
	ErrPoolNotFound = errors.New("pool: not found")

	// ErrMissingField indicates the pool object lacks a required field.
	ErrMissingField = errors.New("pool: object missing required field")
)

// Config is the resolved trading configuration of one pool.
type Config struct {
	PoolID        string      `json:"poolId"`
	TickSpacing   int         `json:"tickSpacing"`
	CurrentPrice  float64     `json:"currentPrice"`
	FeeRate       float64     `json:"feeRate"`
	CoinTypeA     string      `json:"coinTypeA"`
	CoinTypeB     string      `json:"coinTypeB"`
	DecimalsA     int         `json:"decimalsA"`
	DecimalsB     int         `json:"decimalsB"`
	PriceSource   PriceSource `json:"priceSource"`
	PriceFromPool float64     `json:"priceFromPool"`
}

// Summary is one row of the pool listing. Metric pointers are nil when the
// listing endpoint does not report that metric for the pool.
type Summary struct {
	PoolID     string   `json:"pool_id"`
	Symbol     string   `json:"symbol"`
	FeeRate    float64  `json:"fee_rate"`
	Volume24h  *float64 `json:"volume_24h"`
	Fees24h    *float64 `json:"fees_24h"`
	APR        *float64 `json:"apr"`
	TVL        *float64 `json:"tvl"`
	CoinTypeA  string   `json:"coin_type_a"`
	CoinTypeB  string   `json:"coin_type_b"`
	DecimalsA  int      `json:"decimals_a"`
	DecimalsB  int      `json:"decimals_b"`
	PairSymbol string   `json:"pair_symbol,omitempty"`
}

// Cache is the minimal TTL store the resolver memoizes through. A nil cache
// disables memoization.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
}
