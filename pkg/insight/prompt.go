// Package insight turns a range recommendation into a natural-language
// assessment through an OpenAI-compatible chat model.
package insight

import (
	"encoding/json"
	"strings"
)

// PromptContext carries the request parameters that framed the
// recommendation, echoed into the prompt so the model can reason about them.
type PromptContext struct {
	PoolID      string  `json:"pool_id"`
	Days        int     `json:"days,omitempty"`
	Interval    string  `json:"interval,omitempty"`
	CapitalUSD  float64 `json:"capital_usd,omitempty"`
	KlineSource string  `json:"kline_source,omitempty"`
}

// promptHeader frames the task for the model. The recommendation payload is
// appended verbatim so new engine fields reach the model without code
// changes.
var promptHeader = []string{
	"You are an expert CLMM liquidity provider strategist for Cetus on Sui.",
	"The system generated range recommendations based on volatility forecasting: Balanced (long-term stable), Narrow (short-term efficient), Best Backtest (historical best).",
	"Use the data below to give a concise recommendation for the selected range.",
	"Answer in English. Do not invent missing values.",
	"",
	"Output format:",
	"1. Summary (1-2 sentences)",
	"2. Volatility analysis (current regime + sigma implications for LP)",
	"3. Recommended range (Pa/Pb/width/stay probability) and reasoning",
	"4. Risk notes + rebalancing suggestion",
	"5. If another candidate is clearly better, say which and why",
	"",
	"DATA:",
}

// BuildPrompt assembles the analyst prompt from the request context, the
// engine's recommendation payload and the candidate the user selected.
func BuildPrompt(pctx PromptContext, recommendation json.RawMessage, selectedKey string) (string, error) {
	payload := map[string]any{
		"context":        pctx,
		"recommendation": recommendation,
		"selected_key":   selectedKey,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	lines := append(append([]string{}, promptHeader...), string(data))
	return strings.Join(lines, "\n"), nil
}
