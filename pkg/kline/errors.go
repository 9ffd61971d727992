package kline

import "errors"

var (
	// ErrEmptyResult indicates a provider responded but returned no usable candles.
	ErrEmptyResult = errors.New("kline: provider returned no data")

	// ErrUnsupportedPair indicates no symbol derivation strategy applies to the pair.
	ErrUnsupportedPair = errors.New("kline: no symbol derivation applies")

	// ErrAllSourcesExhausted aggregates the failure of every source and
	// synthesis path. The wrapping message carries each attempt's error.
	ErrAllSourcesExhausted = errors.New("kline: all sources exhausted")
)
