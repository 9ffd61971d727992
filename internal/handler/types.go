package handler

import "encoding/json"

// KlinesReq fetches a candle series either by explicit exchange symbol or by
// pool id (which goes through base/quote resolution and source fallback).
type KlinesReq struct {
	Symbol   string `form:"symbol,optional"`
	PoolID   string `form:"pool_id,optional"`
	Interval string `form:"interval,default=1h"`
	Days     int    `form:"days,default=30"`
}

// PoolReq resolves one pool's trading configuration.
type PoolReq struct {
	PoolID      string `form:"pool_id"`
	PriceSource string `form:"price_source,optional"`
}

// PoolsReq lists ranked pools.
type PoolsReq struct {
	Limit  int    `form:"limit,default=20"`
	SortBy string `form:"sortBy,default=volume_24h"`
}

// PoolsResp wraps the listing with its ordering and freshness.
type PoolsResp struct {
	Pools     any    `json:"pools"`
	UpdatedAt int64  `json:"updated_at"`
	SortBy    string `json:"sort_by"`
}

// RecommendReq drives a full range recommendation: candles, pool config and
// the quant engine call.
type RecommendReq struct {
	PoolID      string   `json:"pool_id"`
	Days        int      `json:"days,default=30"`
	Interval    string   `json:"interval,default=1h"`
	Profile     string   `json:"profile,default=balanced"`
	Capital     float64  `json:"capital,default=10000"`
	Strategies  []string `json:"strategies,optional"`
	PriceSource string   `json:"price_source,optional"`
}

// RecommendResp carries the engine response verbatim plus resolution
// provenance.
type RecommendResp struct {
	Recommendation json.RawMessage `json:"recommendation"`
	KlineSource    string          `json:"kline_source"`
	BaseSymbol     string          `json:"base_symbol"`
	QuoteSymbol    string          `json:"quote_symbol"`
	QuoteUsdEntry  *float64        `json:"quote_usd_entry,omitempty"`
}

// InsightReq turns a recommendation payload into analyst commentary. The
// recommendation is decoded as a generic object because the engine's schema
// is opaque to this service.
type InsightReq struct {
	PoolID         string         `json:"pool_id"`
	Days           int            `json:"days,optional"`
	Interval       string         `json:"interval,optional"`
	Capital        float64        `json:"capital,optional"`
	KlineSource    string         `json:"kline_source,optional"`
	SelectedKey    string         `json:"selected_key,default=balanced"`
	Recommendation map[string]any `json:"recommendation,optional"`
}

// InsightResp is the generated commentary.
type InsightResp struct {
	Text string `json:"text"`
}

// ErrorResp is the uniform error body.
type ErrorResp struct {
	Error string `json:"error"`
}
