package pool

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
	defaultSuiRPCURL        = "https://fullnode.mainnet.sui.io:443"
	defaultHTTPTimeout      = 10 * time.Second
	defaultMaxRetries       = 3
	defaultRetryBackoffBase = 150 * time.Millisecond
)

// ChainClient reads pool objects and coin metadata over Sui JSON-RPC.
type ChainClient struct {
	rpcURL     string
	httpClient *http.Client
	maxRetries int
}

// ChainOption configures a ChainClient.
type ChainOption func(*ChainClient)

// WithChainRPCURL overrides the full-node RPC endpoint.
func WithChainRPCURL(url string) ChainOption {
	return func(c *ChainClient) {
		if url != "" {
			c.rpcURL = url
		}
	}
}

// WithChainHTTPClient injects a custom http.Client.
func WithChainHTTPClient(hc *http.Client) ChainOption {
	return func(c *ChainClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithChainMaxRetries adjusts how many times a failed call is retried.
func WithChainMaxRetries(max int) ChainOption {
	return func(c *ChainClient) {
		if max >= 0 {
			c.maxRetries = max
		}
	}
}

// NewChainClient constructs a Sui RPC client.
func NewChainClient(opts ...ChainOption) *ChainClient {
	client := &ChainClient{
		rpcURL:     defaultSuiRPCURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		maxRetries: defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// PoolObject is the on-chain pool state needed for config resolution: the
// fully-qualified Move type and the raw content fields.
type PoolObject struct {
	ObjectID string
	Type     string
	Fields   map[string]any
}

// CoinTypes extracts the two generic type arguments of the pool's Move type,
// e.g. "...::pool::Pool<0x2::sui::SUI, 0x...::usdc::USDC>".
func (p *PoolObject) CoinTypes() (string, string, bool) {
	open := strings.Index(p.Type, "<")
	end := strings.LastIndex(p.Type, ">")
	if open < 0 || end <= open {
		return "", "", false
	}
	args := splitTypeArgs(p.Type[open+1 : end])
	if len(args) != 2 {
		return "", "", false
	}
	return args[0], args[1], true
}

// splitTypeArgs splits a Move generic argument list at top-level commas,
// leaving nested generics intact.
func splitTypeArgs(args string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range args {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(args[start:i]))
				start = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(args[start:]))
	return parts
}

// GetPoolObject fetches a pool object with its content fields.
func (c *ChainClient) GetPoolObject(ctx context.Context, poolID string) (*PoolObject, error) {
	var result struct {
		Data *struct {
			ObjectID string `json:"objectId"`
			Type     string `json:"type"`
			Content  *struct {
				DataType string         `json:"dataType"`
				Type     string         `json:"type"`
				Fields   map[string]any `json:"fields"`
			} `json:"content"`
		} `json:"data"`
		Error *struct {
			Code     string `json:"code"`
			ObjectID string `json:"object_id"`
		} `json:"error"`
	}
	params := []any{poolID, map[string]any{"showContent": true, "showType": true}}
	if err := c.call(ctx, "sui_getObject", params, &result); err != nil {
		return nil, err
	}
	if result.Error != nil || result.Data == nil {
		return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, poolID)
	}
	obj := &PoolObject{ObjectID: result.Data.ObjectID}
	obj.Type = result.Data.Type
	if result.Data.Content != nil {
		obj.Fields = result.Data.Content.Fields
		if obj.Type == "" {
			obj.Type = result.Data.Content.Type
		}
	}
	if len(obj.Fields) == 0 {
		return nil, fmt.Errorf("%w: %s has no content fields", ErrMissingField, poolID)
	}
	return obj, nil
}

// GetCoinDecimals fetches the decimal precision of a coin type from its
// on-chain metadata.
func (c *ChainClient) GetCoinDecimals(ctx context.Context, coinType string) (int, error) {
	var result *struct {
		Decimals int    `json:"decimals"`
		Symbol   string `json:"symbol"`
	}
	if err := c.call(ctx, "suix_getCoinMetadata", []any{coinType}, &result); err != nil {
		return 0, err
	}
	if result == nil {
		return 0, fmt.Errorf("sui: no metadata for coin type %s", coinType)
	}
	return result.Decimals, nil
}

// call posts one JSON-RPC request, retrying transient failures with a
// linearly growing backoff.
func (c *ChainClient) call(ctx context.Context, method string, params []any, result any) error {
	payload, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("sui: encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(defaultRetryBackoffBase * time.Duration(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("sui: build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("sui: read response: %w", err)
			continue
		}
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("sui: http status %d: %s", resp.StatusCode, string(body))
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("sui: http status %d: %s", resp.StatusCode, string(body))
		}

		var envelope struct {
			Result json.RawMessage `json:"result"`
			Error  *rpcError       `json:"error"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			lastErr = fmt.Errorf("sui: decode response: %w", err)
			continue
		}
		if envelope.Error != nil {
			return fmt.Errorf("sui %s: %w", method, envelope.Error)
		}
		if result != nil && len(envelope.Result) > 0 {
			if err := json.Unmarshal(envelope.Result, result); err != nil {
				return fmt.Errorf("sui %s: decode result: %w", method, err)
			}
		}
		return nil
	}
	return fmt.Errorf("sui %s: retries exhausted: %w", method, lastErr)
}
