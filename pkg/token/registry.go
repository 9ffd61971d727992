package token

import "strings"

// Info describes the canonical identity of an on-chain coin type.
type Info struct {
	CanonicalSymbol string
	IsStable        bool
}

// stableSymbols lists quote currencies treated as USD-pegged.
var stableSymbols = map[string]struct{}{
	"USDC":  {},
	"USDT":  {},
	"FDUSD": {},
	"BUSD":  {},
}

// knownCoinTypes maps fully-qualified Sui coin types to token info. Wrapped
// and bridged variants resolve to their canonical unwrapped symbol.
var knownCoinTypes = map[string]Info{
	// Native SUI
	"0x2::sui::SUI": {CanonicalSymbol: "SUI"},
	// Native Circle USDC
	"0xdba34672e30cb065b1f93e3ab55318768fd6fef66c15942c9f7cb846e2f900e7::usdc::USDC": {CanonicalSymbol: "USDC", IsStable: true},
	// Wormhole wUSDC
	"0x5d4b302506645c37ff133b98c4b50a5ae14841659738d6d733d59d0d217a93bf::coin::COIN": {CanonicalSymbol: "USDC", IsStable: true},
	// Wormhole USDT
	"0xc060006111016b8a020ad5b33834984a437aaa7d3c74c18e09a95d48aceab08c::coin::COIN": {CanonicalSymbol: "USDT", IsStable: true},
	// LayerZero WBTC
	"0x0041f2209cff387c2d4ef9316e38f1275e0db04ef39a3df55576d10ba3a10140::wbtc::WBTC": {CanonicalSymbol: "BTC"},
	// Wormhole wETH
	"0xaf8cd5edc19c4512f4259f0bee101a40d41ebed738ade5874359610ef8eeced5::coin::COIN": {CanonicalSymbol: "ETH"},
	// Wormhole SOL
	"0xb7844e289a8410e50fb3ca730d5c1f5e0c8c0a0b47e28e90d99e48f4e05e6a6::coin::COIN": {CanonicalSymbol: "SOL"},
}

// defaultQuoteRanking orders the preferred non-stable quote assets. Lower
// index wins the quote slot; anything not listed never outranks these.
var defaultQuoteRanking = []string{"SUI", "BTC", "ETH", "SOL"}

// Registry resolves chain coin types into canonical token metadata and
// decides base/quote orientation for a pair.
type Registry struct {
	known   map[string]Info
	ranking map[string]int
}

// Option customises a Registry.
type Option func(*Registry)

// WithQuoteRanking replaces the preferred quote-asset priority list.
// Symbols earlier in the list outrank later ones.
func WithQuoteRanking(symbols []string) Option {
	return func(r *Registry) {
		if len(symbols) == 0 {
			return
		}
		ranking := make(map[string]int, len(symbols))
		for i, sym := range symbols {
			sym = NormalizeSymbol(sym)
			if sym == "" {
				continue
			}
			if _, ok := ranking[sym]; !ok {
				ranking[sym] = i + 1
			}
		}
		r.ranking = ranking
	}
}

// WithCoinType registers an additional coin type mapping.
func WithCoinType(coinType string, info Info) Option {
	return func(r *Registry) {
		if strings.TrimSpace(coinType) == "" {
			return
		}
		r.known[coinType] = info
	}
}

// NewRegistry constructs a Registry with the built-in coin type table and
// the default quote ranking.
func NewRegistry(opts ...Option) *Registry {
	known := make(map[string]Info, len(knownCoinTypes))
	for coinType, info := range knownCoinTypes {
		known[coinType] = info
	}
	r := &Registry{known: known}
	WithQuoteRanking(defaultQuoteRanking)(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve maps a coin type to token info. It never fails: unknown coin types
// fall back to the last path segment of the type, normalized and classified
// against the stable symbol set.
func (r *Registry) Resolve(coinType string) Info {
	if info, ok := r.known[coinType]; ok {
		return info
	}
	symbol := shortType(coinType)
	return Info{
		CanonicalSymbol: symbol,
		IsStable:        IsStableSymbol(symbol),
	}
}

// IsStable reports whether the coin type resolves to a USD-pegged asset.
func (r *Registry) IsStable(coinType string) bool {
	return r.Resolve(coinType).IsStable
}

// Symbol returns the canonical display symbol for a coin type.
func (r *Registry) Symbol(coinType string) string {
	return r.Resolve(coinType).CanonicalSymbol
}

// IsStableSymbol reports whether a canonical symbol is USD-pegged.
func IsStableSymbol(symbol string) bool {
	_, ok := stableSymbols[symbol]
	return ok
}

// NormalizeSymbol upper-cases a raw symbol, strips whitespace, and folds the
// common wrapped aliases onto their unwrapped form.
func NormalizeSymbol(raw string) string {
	if raw == "" {
		return ""
	}
	symbol := strings.ToUpper(raw)
	symbol = strings.Join(strings.Fields(symbol), "")
	switch symbol {
	case "WETH":
		return "ETH"
	case "WBTC":
		return "BTC"
	}
	return symbol
}

// shortType derives a symbol from the trailing path segment of a coin type,
// e.g. "0x2::sui::SUI" yields "SUI".
func shortType(coinType string) string {
	if coinType == "" {
		return ""
	}
	parts := strings.Split(coinType, "::")
	return NormalizeSymbol(parts[len(parts)-1])
}
