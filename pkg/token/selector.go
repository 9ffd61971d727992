package token

import "math"

// Side names which of a pool's two coin slots an asset occupies.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// Selection fixes the base/quote orientation for a pool pair. Exactly one of
// the two inputs becomes base and the other quote.
type Selection struct {
	BaseCoinType  string
	QuoteCoinType string
	BaseSymbol    string
	QuoteSymbol   string
	BaseSide      Side
	QuoteSide     Side
	QuoteRank     float64
}

// quoteRank scores how strongly an asset should claim the quote slot.
// Stables always win; configured majors follow in list order; anything else
// never outranks them.
func (r *Registry) quoteRank(info Info) float64 {
	if info.IsStable {
		return 0
	}
	if rank, ok := r.ranking[info.CanonicalSymbol]; ok {
		return float64(rank)
	}
	return math.Inf(1)
}

// SelectBaseQuote decides which of the two coin types is priced (base) and
// which denominates (quote). The asset with the lower quote rank becomes
// quote; on a tie coin type A is base. SelectBaseQuote(a, b) and
// SelectBaseQuote(b, a) are mirror images.
func (r *Registry) SelectBaseQuote(coinTypeA, coinTypeB string) Selection {
	tokenA := r.Resolve(coinTypeA)
	tokenB := r.Resolve(coinTypeB)
	rankA := r.quoteRank(tokenA)
	rankB := r.quoteRank(tokenB)

	baseA := Selection{
		BaseCoinType:  coinTypeA,
		QuoteCoinType: coinTypeB,
		BaseSymbol:    tokenA.CanonicalSymbol,
		QuoteSymbol:   tokenB.CanonicalSymbol,
		BaseSide:      SideA,
		QuoteSide:     SideB,
		QuoteRank:     rankB,
	}
	if rankA == rankB {
		return baseA
	}
	if rankA < rankB {
		return Selection{
			BaseCoinType:  coinTypeB,
			QuoteCoinType: coinTypeA,
			BaseSymbol:    tokenB.CanonicalSymbol,
			QuoteSymbol:   tokenA.CanonicalSymbol,
			BaseSide:      SideB,
			QuoteSide:     SideA,
			QuoteRank:     rankA,
		}
	}
	return baseA
}

// DirectPairSymbol concatenates the canonical base and quote symbols into an
// exchange pair symbol, or "" when either side cannot be resolved.
func (r *Registry) DirectPairSymbol(baseCoinType, quoteCoinType string) string {
	base := r.Symbol(baseCoinType)
	quote := r.Symbol(quoteCoinType)
	if base == "" || quote == "" {
		return ""
	}
	return base + quote
}

// UsdPairSymbol derives the USDT-quoted symbol for a single asset, used for
// the two legs of cross-rate synthesis.
func (r *Registry) UsdPairSymbol(coinType string) string {
	symbol := r.Symbol(coinType)
	if symbol == "" {
		return ""
	}
	return symbol + "USDT"
}

// PoolPairSymbol is the legacy derivation that works from raw pool order
// rather than the base/quote selection: the stable side denominates, and a
// pair with no stable side is quoted in USDT.
func (r *Registry) PoolPairSymbol(coinTypeA, coinTypeB string) string {
	symbolA := r.Symbol(coinTypeA)
	symbolB := r.Symbol(coinTypeB)
	if symbolA == "" || symbolB == "" {
		return ""
	}
	if IsStableSymbol(symbolB) {
		return symbolA + symbolB
	}
	if IsStableSymbol(symbolA) {
		return symbolB + symbolA
	}
	return symbolA + "USDT"
}
