package kline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"gopkg.in/yaml.v3"

	"suilp-api/pkg/confkit"
	"suilp-api/pkg/token"
)

// Config describes the candle sources available to the resolver: a primary
// exchange-symbol source, an optional address-keyed secondary, and an
// optional pool-keyed source served to callers that bypass symbol
// derivation entirely.
type Config struct {
	Primary   *SourceConfig `yaml:"primary"`
	Secondary *SourceConfig `yaml:"secondary"`
	PoolKeyed *SourceConfig `yaml:"pool_keyed"`
}

// SourceConfig represents configuration for a single candle source.
type SourceConfig struct {
	Type string `yaml:"type"`

	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Chain   string `yaml:"chain"`

	HTTPTimeoutRaw string        `yaml:"http_timeout"`
	HTTPTimeout    time.Duration `yaml:"-"`
}

// Deps carries cross-cutting dependencies handed to every source builder.
type Deps struct {
	Cache Cache
	TTL   time.Duration
}

// SourceBuilder constructs a Fetcher from configuration. Returning an error
// wrapping ErrNoAPIKey marks the source as intentionally absent rather than
// misconfigured.
type SourceBuilder func(name string, cfg *SourceConfig, deps Deps) (Fetcher, error)

var (
	sourceRegistry   = make(map[string]SourceBuilder)
	sourceRegistryMu sync.RWMutex
)

// RegisterSource registers a candle source constructor.
func RegisterSource(typeName string, builder SourceBuilder) {
	sourceRegistryMu.Lock()
	defer sourceRegistryMu.Unlock()
	sourceRegistry[strings.ToLower(strings.TrimSpace(typeName))] = builder
}

func lookupSourceBuilder(typeName string) (SourceBuilder, bool) {
	sourceRegistryMu.RLock()
	defer sourceRegistryMu.RUnlock()
	builder, ok := sourceRegistry[strings.ToLower(strings.TrimSpace(typeName))]
	return builder, ok
}

// LoadConfig reads source configuration from disk.
func LoadConfig(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open kline config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader constructs a Config from an io.Reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	confkit.LoadDotenvOnce()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read kline config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal kline config: %w", err)
	}
	if err := cfg.normalise(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalise() error {
	for name, source := range c.sources() {
		if source == nil {
			continue
		}
		source.expandEnv()
		if err := source.parseDurations(name); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) sources() map[string]*SourceConfig {
	return map[string]*SourceConfig{
		"primary":    c.Primary,
		"secondary":  c.Secondary,
		"pool_keyed": c.PoolKeyed,
	}
}

func (s *SourceConfig) expandEnv() {
	s.Type = strings.TrimSpace(os.ExpandEnv(s.Type))
	s.BaseURL = strings.TrimSpace(os.ExpandEnv(s.BaseURL))
	s.APIKey = strings.TrimSpace(os.ExpandEnv(s.APIKey))
	s.Chain = strings.TrimSpace(os.ExpandEnv(s.Chain))
	s.HTTPTimeoutRaw = strings.TrimSpace(os.ExpandEnv(s.HTTPTimeoutRaw))
}

func (s *SourceConfig) parseDurations(name string) error {
	if s.HTTPTimeoutRaw == "" {
		return nil
	}
	d, err := time.ParseDuration(s.HTTPTimeoutRaw)
	if err != nil {
		return fmt.Errorf("kline source %s: invalid http_timeout %q: %w", name, s.HTTPTimeoutRaw, err)
	}
	if d <= 0 {
		return fmt.Errorf("kline source %s: http_timeout must be positive, got %s", name, d)
	}
	s.HTTPTimeout = d
	return nil
}

// Validate ensures the configuration is structurally sound.
func (c *Config) Validate() error {
	if c.Primary == nil {
		return fmt.Errorf("kline config: primary source is required")
	}
	for name, source := range c.sources() {
		if source == nil {
			continue
		}
		if strings.TrimSpace(source.Type) == "" {
			return fmt.Errorf("kline config: source %s must specify type", name)
		}
		if _, ok := lookupSourceBuilder(source.Type); !ok {
			return fmt.Errorf("kline config: source %s has unsupported type %q", name, source.Type)
		}
	}
	return nil
}

// BuildResolver instantiates the configured sources and wires them into a
// Resolver. A secondary source without a credential is omitted rather than
// treated as an error.
func (c *Config) BuildResolver(tokens *token.Registry, deps Deps) (*Resolver, error) {
	primary, err := buildSource("primary", c.Primary, deps)
	if err != nil {
		return nil, err
	}

	opts := make([]ResolverOption, 0, 1)
	if c.Secondary != nil {
		secondary, err := buildSource("secondary", c.Secondary, deps)
		if err != nil {
			if errors.Is(err, ErrNoAPIKey) {
				logx.Infof("kline secondary source disabled: %v", err)
			} else {
				return nil, err
			}
		} else {
			opts = append(opts, WithSecondary(secondary))
		}
	}

	return NewResolver(tokens, primary, opts...), nil
}

// BuildPoolKeyed instantiates the pool-keyed source, or returns nil when none
// is configured.
func (c *Config) BuildPoolKeyed(deps Deps) (Fetcher, error) {
	if c.PoolKeyed == nil {
		return nil, nil
	}
	return buildSource("pool_keyed", c.PoolKeyed, deps)
}

func buildSource(name string, cfg *SourceConfig, deps Deps) (Fetcher, error) {
	builder, ok := lookupSourceBuilder(cfg.Type)
	if !ok {
		return nil, fmt.Errorf("kline source %s: unsupported type %q", name, cfg.Type)
	}
	fetcher, err := builder(name, cfg, deps)
	if err != nil {
		return nil, fmt.Errorf("kline source %s: %w", name, err)
	}
	return fetcher, nil
}
