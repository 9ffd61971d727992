package pool

import (
	"encoding/json"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// getField returns the first present key from a decoded JSON object.
func getField(obj map[string]any, keys ...string) (any, bool) {
	if obj == nil {
		return nil, false
	}
	for _, key := range keys {
		if value, ok := obj[key]; ok && value != nil {
			return value, true
		}
	}
	return nil, false
}

// toFloat coerces a decoded JSON value into a finite float64.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// firstFloat coerces the first numeric candidate field, searching the nested
// object before the outer entry.
func firstFloat(objs []map[string]any, keys ...string) (float64, bool) {
	for _, obj := range objs {
		if raw, ok := getField(obj, keys...); ok {
			if f, ok := toFloat(raw); ok {
				return f, true
			}
		}
	}
	return 0, false
}

// toBigInt coerces a decoded JSON value into a non-negative big integer.
// Fractional inputs truncate toward zero.
func toBigInt(value any) (*big.Int, bool) {
	switch v := value.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, false
		}
		if n, ok := new(big.Int).SetString(s, 10); ok {
			return n, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		return big.NewInt(int64(f)), true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		bf := new(big.Float).SetFloat64(math.Trunc(v))
		n, _ := bf.Int(nil)
		return n, true
	case json.Number:
		if n, ok := new(big.Int).SetString(v.String(), 10); ok {
			return n, true
		}
		f, err := v.Float64()
		if err != nil {
			return nil, false
		}
		return big.NewInt(int64(f)), true
	default:
		return nil, false
	}
}

// normalizeFeeRate folds the two on-chain fee conventions into a fraction:
// values above one are micro-units (4500 means 0.45%), values at or below
// one are already fractional.
func normalizeFeeRate(raw float64) float64 {
	if raw > 1 {
		return raw / 1_000_000
	}
	if raw < 0 {
		return 0
	}
	return raw
}
