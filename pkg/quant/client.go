// Package quant calls the range-recommendation engine. The engine's response
// schema evolves independently, so it passes through opaquely.
package quant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	recommendPath      = "/api/v1/recommend"
	defaultHTTPTimeout = 60 * time.Second
)

// Request is the engine's recommendation input. Klines rows are positional:
// open time (ms), open, high, low, close, volume.
type Request struct {
	Klines       [][]float64 `json:"klines"`
	CurrentPrice float64     `json:"current_price"`
	TickSpacing  int         `json:"tick_spacing"`
	FeeRate      float64     `json:"fee_rate"`
	Profile      string      `json:"profile"`
	CapitalUSD   float64     `json:"capital_usd"`
	Strategies   []string    `json:"strategies"`
}

// Client posts recommendation requests to the engine.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient constructs a client for the engine at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Recommend posts the request and returns the engine's response verbatim.
func (c *Client) Recommend(ctx context.Context, req *Request) (json.RawMessage, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("quant: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+recommendPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("quant: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("quant: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("quant: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("quant engine error (%d): %s", resp.StatusCode, string(body))
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("quant: engine returned invalid json")
	}
	return json.RawMessage(body), nil
}
