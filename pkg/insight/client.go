package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultModel     = "gpt-4o-mini"
	defaultMaxTokens = 800
	defaultTimeout   = 60 * time.Second
)

// Config describes the chat model endpoint. An empty APIKey disables the
// feature entirely.
type Config struct {
	APIKey      string  `json:",optional"`
	BaseURL     string  `json:",optional"`
	Model       string  `json:",optional"`
	Temperature float64 `json:",default=0.2"`
	MaxTokens   int     `json:",optional"`
}

// Enabled reports whether a credential is configured.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// Client generates insight text through an OpenAI-compatible API.
type Client struct {
	config       Config
	openaiClient *openai.Client
}

// ClientOption configures optional client behaviour.
type ClientOption func(*Client)

// WithOpenAIClient injects a pre-configured OpenAI client (primarily for testing).
func WithOpenAIClient(client *openai.Client) ClientOption {
	return func(c *Client) {
		c.openaiClient = client
	}
}

// NewClient constructs an insight client from config.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	if !cfg.Enabled() {
		return nil, errors.New("insight: api key is not configured")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}

	c := &Client{config: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.openaiClient == nil {
		oaOpts := []option.RequestOption{
			option.WithAPIKey(cfg.APIKey),
			option.WithRequestTimeout(defaultTimeout),
		}
		if cfg.BaseURL != "" {
			oaOpts = append(oaOpts, option.WithBaseURL(cfg.BaseURL))
		}
		clientVal := openai.NewClient(oaOpts...)
		c.openaiClient = &clientVal
	}
	return c, nil
}

// Generate sends the prompt and returns the model's text response.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("insight: prompt cannot be empty")
	}

	completion, err := c.openaiClient.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(c.config.Model),
		Messages:            []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		Temperature:         openai.Float(c.config.Temperature),
		MaxCompletionTokens: openai.Int(int64(c.config.MaxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("insight: chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("insight: empty response from model")
	}
	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("insight: empty response from model")
	}
	return text, nil
}
