package tickmath

import (
	"fmt"
	"math"
)

// tickBase is the CLMM price step: each tick multiplies price by 1.0001.
const tickBase = 1.0001

// PriceToTick converts a price to its tick index using the Uniswap v3 / Cetus
// convention tick = floor(log(price) / log(1.0001)).
func PriceToTick(price float64) (int, error) {
	if price <= 0 {
		return 0, fmt.Errorf("tickmath: price must be positive, got %v", price)
	}
	return int(math.Floor(math.Log(price) / math.Log(tickBase))), nil
}

// TickToPrice converts a tick index back to a price.
func TickToPrice(tick int) float64 {
	return math.Pow(tickBase, float64(tick))
}

// AlignTickDown rounds a tick toward negative infinity onto a spacing multiple.
func AlignTickDown(tick, spacing int) (int, error) {
	if spacing <= 0 {
		return 0, fmt.Errorf("tickmath: spacing must be positive, got %d", spacing)
	}
	return floorDiv(tick, spacing) * spacing, nil
}

// AlignTickUp rounds a tick toward positive infinity onto a spacing multiple.
func AlignTickUp(tick, spacing int) (int, error) {
	if spacing <= 0 {
		return 0, fmt.Errorf("tickmath: spacing must be positive, got %d", spacing)
	}
	if tick%spacing == 0 {
		return tick, nil
	}
	return (floorDiv(tick, spacing) + 1) * spacing, nil
}

// floorDiv divides rounding toward negative infinity, unlike Go's built-in
// truncating division.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
