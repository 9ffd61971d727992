package cache

import (
	"time"

	"suilp-api/internal/config"
)

// TTLClass represents a config-driven TTL bucket.
type TTLClass string

const (
	TTLShort  TTLClass = "short"
	TTLMedium TTLClass = "medium"
	TTLLong   TTLClass = "long"
)

// TTLSet normalises cache TTLs from config into time.Duration values.
type TTLSet struct {
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// NewTTLSet converts config TTLs (in seconds) into durations.
func NewTTLSet(cfg config.CacheTTL) TTLSet {
	return TTLSet{
		Short:  durationOrDefault(cfg.Short, 10*time.Second),
		Medium: durationOrDefault(cfg.Medium, time.Minute),
		Long:   durationOrDefault(cfg.Long, 5*time.Minute),
	}
}

func durationOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds < 0 {
		return 0
	}
	if seconds == 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// Duration returns the configured duration for the given TTL class.
func (t TTLSet) Duration(class TTLClass) time.Duration {
	switch class {
	case TTLShort:
		return t.Short
	case TTLMedium:
		return t.Medium
	case TTLLong:
		return t.Long
	default:
		return 0
	}
}

// Scaled applies a multiplier to a TTL class, useful for half/double TTL variants.
func (t TTLSet) Scaled(class TTLClass, factor float64) time.Duration {
	base := t.Duration(class)
	if base <= 0 || factor <= 0 {
		return base
	}
	return time.Duration(float64(base) * factor)
}

// PoolConfigTTL bounds how long a resolved pool snapshot stays authoritative.
func PoolConfigTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLMedium) // target ~60s
}

// CoinMetaTTL covers coin decimal metadata, which never changes on chain.
func CoinMetaTTL(ttl TTLSet) time.Duration {
	return ttl.Scaled(TTLLong, 12) // target ~1h when long=300s
}

// KlineTTL covers fetched candle series.
func KlineTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLLong) // target ~5m
}

// PoolsListingTTL covers the pools listing payload.
func PoolsListingTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLMedium)
}
