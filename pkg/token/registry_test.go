package token

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	suiType   = "0x2::sui::SUI"
	usdcType  = "0xdba34672e30cb065b1f93e3ab55318768fd6fef66c15942c9f7cb846e2f900e7::usdc::USDC"
	wusdcType = "0x5d4b302506645c37ff133b98c4b50a5ae14841659738d6d733d59d0d217a93bf::coin::COIN"
	wbtcType  = "0x0041f2209cff387c2d4ef9316e38f1275e0db04ef39a3df55576d10ba3a10140::wbtc::WBTC"
)

func TestResolveKnownCoinTypes(t *testing.T) {
	registry := NewRegistry()

	tests := []struct {
		name       string
		coinType   string
		wantSymbol string
		wantStable bool
	}{
		{"native sui", suiType, "SUI", false},
		{"native usdc", usdcType, "USDC", true},
		{"wormhole usdc resolves to canonical symbol", wusdcType, "USDC", true},
		{"layerzero wbtc unwraps to btc", wbtcType, "BTC", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := registry.Resolve(tt.coinType)
			assert.Equal(t, tt.wantSymbol, info.CanonicalSymbol)
			assert.Equal(t, tt.wantStable, info.IsStable)
		})
	}
}

func TestResolveFallsBackToTypeSuffix(t *testing.T) {
	registry := NewRegistry()

	tests := []struct {
		name       string
		coinType   string
		wantSymbol string
		wantStable bool
	}{
		{"unknown meme coin", "0xabc::meme::HIPPO", "HIPPO", false},
		{"unknown stable by suffix", "0xdef::fdusd::FDUSD", "FDUSD", true},
		{"wrapped eth alias", "0x123::weth::WETH", "ETH", false},
		{"lowercase suffix uppercased", "0x456::cetus::cetus", "CETUS", false},
		{"empty coin type", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := registry.Resolve(tt.coinType)
			assert.Equal(t, tt.wantSymbol, info.CanonicalSymbol)
			assert.Equal(t, tt.wantStable, info.IsStable)
		})
	}
}

func TestSelectBaseQuoteStableWinsQuoteSlot(t *testing.T) {
	registry := NewRegistry()

	selection := registry.SelectBaseQuote(suiType, usdcType)
	require.Equal(t, suiType, selection.BaseCoinType)
	require.Equal(t, usdcType, selection.QuoteCoinType)
	assert.Equal(t, "SUI", selection.BaseSymbol)
	assert.Equal(t, "USDC", selection.QuoteSymbol)
	assert.Equal(t, SideA, selection.BaseSide)
	assert.Equal(t, SideB, selection.QuoteSide)
	assert.Zero(t, selection.QuoteRank)

	// Reversed pool order still prices SUI in USDC.
	flipped := registry.SelectBaseQuote(usdcType, suiType)
	assert.Equal(t, suiType, flipped.BaseCoinType)
	assert.Equal(t, SideB, flipped.BaseSide)
	assert.Equal(t, SideA, flipped.QuoteSide)
}

func TestSelectBaseQuoteMirrorProperty(t *testing.T) {
	registry := NewRegistry()

	// Pairs with distinct ranks orient the same way regardless of pool order.
	pairs := [][2]string{
		{suiType, usdcType},
		{wbtcType, suiType},
		{"0xabc::meme::HIPPO", suiType},
	}

	for _, pair := range pairs {
		forward := registry.SelectBaseQuote(pair[0], pair[1])
		backward := registry.SelectBaseQuote(pair[1], pair[0])
		assert.Equal(t, forward.BaseCoinType, backward.BaseCoinType, "pair %v", pair)
		assert.Equal(t, forward.QuoteCoinType, backward.QuoteCoinType, "pair %v", pair)
	}

	// Tied ranks fall back to pool order, so each direction keeps its own base.
	forward := registry.SelectBaseQuote("0xabc::meme::HIPPO", "0xdef::meme::DOGE")
	backward := registry.SelectBaseQuote("0xdef::meme::DOGE", "0xabc::meme::HIPPO")
	assert.Equal(t, "HIPPO", forward.BaseSymbol)
	assert.Equal(t, "DOGE", backward.BaseSymbol)
}

func TestSelectBaseQuoteRankingOrder(t *testing.T) {
	registry := NewRegistry()

	// SUI outranks BTC as the preferred quote, so BTC is priced in SUI.
	selection := registry.SelectBaseQuote(wbtcType, suiType)
	assert.Equal(t, "BTC", selection.BaseSymbol)
	assert.Equal(t, "SUI", selection.QuoteSymbol)

	// Unknown token against SUI: SUI denominates.
	selection = registry.SelectBaseQuote("0xabc::meme::HIPPO", suiType)
	assert.Equal(t, "HIPPO", selection.BaseSymbol)
	assert.Equal(t, "SUI", selection.QuoteSymbol)

	// Two unknowns tie at +Inf and keep pool order.
	selection = registry.SelectBaseQuote("0xabc::meme::HIPPO", "0xdef::meme::DOGE")
	assert.Equal(t, "HIPPO", selection.BaseSymbol)
	assert.Equal(t, "DOGE", selection.QuoteSymbol)
	assert.True(t, math.IsInf(selection.QuoteRank, 1))
}

func TestSelectBaseQuoteCustomRanking(t *testing.T) {
	registry := NewRegistry(WithQuoteRanking([]string{"CETUS", "SUI"}))

	selection := registry.SelectBaseQuote(suiType, "0x456::cetus::CETUS")
	assert.Equal(t, "SUI", selection.BaseSymbol)
	assert.Equal(t, "CETUS", selection.QuoteSymbol)
}

func TestPairSymbolDerivations(t *testing.T) {
	registry := NewRegistry()

	assert.Equal(t, "SUIUSDC", registry.DirectPairSymbol(suiType, usdcType))
	assert.Equal(t, "SUIUSDT", registry.UsdPairSymbol(suiType))
	assert.Equal(t, "USDTUSDT", registry.UsdPairSymbol("0x1::usdt::USDT"))
	assert.Equal(t, "", registry.DirectPairSymbol("", usdcType))

	tests := []struct {
		name string
		a, b string
		want string
	}{
		{"stable on side b", suiType, usdcType, "SUIUSDC"},
		{"stable on side a", usdcType, suiType, "SUIUSDC"},
		{"no stable side quotes in usdt", suiType, wbtcType, "SUIUSDT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, registry.PoolPairSymbol(tt.a, tt.b))
		})
	}
}
