// Package tickmath converts between the CLMM on-chain price encodings and
// human-readable decimal prices without floating-point precision loss.
package tickmath

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
)

// ErrInvalidPriceState indicates the pool's stored sqrt price is absent or zero.
var ErrInvalidPriceState = errors.New("tickmath: pool sqrt price is missing or zero")

// priceDigits is the number of fractional decimal digits carried through the
// big-integer division. Must stay comfortably above 12 so decoded prices are
// deterministic regardless of input magnitude.
const priceDigits = 18

var two128 = new(big.Int).Lsh(big.NewInt(1), 128)

// SqrtPriceX64ToPrice decodes a Q64.64 sqrt price into the pool's spot price
// adjusted for the two coins' decimal places:
//
//	price = sqrtPriceX64^2 / 2^128 * 10^(decimalsA-decimalsB)
//
// The whole computation runs on big integers; the decimal exponent is folded
// into the numerator or denominator before a single scaled division, so the
// result never passes through a lossy float square.
func SqrtPriceX64ToPrice(sqrtPriceX64 *big.Int, decimalsA, decimalsB int) (decimal.Decimal, error) {
	if sqrtPriceX64 == nil || sqrtPriceX64.Sign() == 0 {
		return decimal.Decimal{}, ErrInvalidPriceState
	}

	numerator := new(big.Int).Mul(sqrtPriceX64, sqrtPriceX64)
	denominator := new(big.Int).Set(two128)
	if shift := decimalsA - decimalsB; shift >= 0 {
		numerator.Mul(numerator, pow10(shift))
	} else {
		denominator.Mul(denominator, pow10(-shift))
	}

	price := decimal.NewFromBigInt(numerator, 0).DivRound(decimal.NewFromBigInt(denominator, 0), priceDigits)
	return price, nil
}

// PriceToSqrtPriceX64 encodes a decimal price back into the Q64.64 sqrt
// representation. It is the inverse of SqrtPriceX64ToPrice up to the decoder's
// stated precision and exists mainly for verification.
func PriceToSqrtPriceX64(price decimal.Decimal, decimalsA, decimalsB int) *big.Int {
	// ratio = price * 10^(decimalsB-decimalsA); sqrtPriceX64 = sqrt(ratio * 2^128)
	ratio := price.Shift(int32(decimalsB - decimalsA))
	scaled := ratio.Mul(decimal.NewFromBigInt(two128, 0))
	return new(big.Int).Sqrt(scaled.BigInt())
}

func pow10(exp int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)
}
