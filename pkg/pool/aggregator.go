package pool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shopspring/decimal"
)

// AggregatorClient quotes a unit swap through the DEX aggregator to obtain a
// routed spot price.
type AggregatorClient struct {
	url        string
	httpClient *http.Client
}

// AggregatorOption configures an AggregatorClient.
type AggregatorOption func(*AggregatorClient)

// WithAggregatorHTTPClient injects a custom http.Client.
func WithAggregatorHTTPClient(hc *http.Client) AggregatorOption {
	return func(c *AggregatorClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewAggregatorClient constructs a client for the given quote endpoint.
func NewAggregatorClient(url string, opts ...AggregatorOption) *AggregatorClient {
	client := &AggregatorClient{
		url:        url,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type aggregatorRequest struct {
	From       string `json:"from"`
	Target     string `json:"target"`
	Amount     string `json:"amount"`
	ByAmountIn bool   `json:"byAmountIn"`
}

// amountOutKeys are the route fields a deployment may report the output
// amount under, in lookup order.
var amountOutKeys = []string{
	"amount_out", "amountOut", "amount_out_with_fee", "amountOutWithFee", "output_amount", "amount",
}

// Price quotes one whole unit of the from coin and returns the resulting
// price of from in units of to. Returns 0 with no error when the aggregator
// responds but yields no usable route.
func (c *AggregatorClient) Price(ctx context.Context, from, to string, decimalsA, decimalsB int) (float64, error) {
	if decimalsA < 0 {
		decimalsA = 0
	}
	if decimalsB < 0 {
		decimalsB = 0
	}
	amountIn := decimal.New(1, int32(decimalsA))

	payload, err := json.Marshal(aggregatorRequest{
		From:       from,
		Target:     to,
		Amount:     amountIn.String(),
		ByAmountIn: true,
	})
	if err != nil {
		return 0, fmt.Errorf("aggregator: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("aggregator: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("aggregator: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("aggregator: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("aggregator: http status %d: %s", resp.StatusCode, string(body))
	}

	var envelope map[string]any
	if err := json.Unmarshal(body, &envelope); err != nil {
		return 0, fmt.Errorf("aggregator: decode response: %w", err)
	}

	route := bestRoute(envelope)
	if route == nil {
		return 0, nil
	}
	amountOutRaw, ok := getField(route, amountOutKeys...)
	if !ok {
		return 0, nil
	}
	amountOut, ok := toBigInt(amountOutRaw)
	if !ok || amountOut.Sign() <= 0 {
		return 0, nil
	}

	// price = (amountOut / 10^decimalsB) / (amountIn / 10^decimalsA)
	price := decimal.NewFromBigInt(amountOut, -int32(decimalsB)).
		Div(amountIn.Shift(-int32(decimalsA)))
	value, _ := price.Float64()
	if value <= 0 {
		return 0, nil
	}
	return value, nil
}

// bestRoute picks the first route under any of the known envelope shapes.
func bestRoute(envelope map[string]any) map[string]any {
	var routes []any
	if data, ok := envelope["data"].(map[string]any); ok {
		routes, _ = data["routes"].([]any)
	}
	if routes == nil {
		routes, _ = envelope["data"].([]any)
	}
	if routes == nil {
		routes, _ = envelope["routes"].([]any)
	}
	if len(routes) == 0 {
		return nil
	}
	route, _ := routes[0].(map[string]any)
	return route
}
