package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/rest"

	"suilp-api/pkg/confkit"
	"suilp-api/pkg/insight"
	klinepkg "suilp-api/pkg/kline"
)

type CacheTTL struct {
	Short  int `json:",default=10"` // seconds
	Medium int `json:",default=60"`
	Long   int `json:",default=300"`
}

// ChainConf points at the Sui full node and the DEX HTTP endpoints.
type ChainConf struct {
	RPCURL        string   `json:",default=https://fullnode.mainnet.sui.io:443"`
	PoolsAPIURLs  []string `json:",optional"`
	AggregatorURL string   `json:",default=https://api-sui.cetus.zone/router_v3/find_routes"`
	MaxRetries    int      `json:",default=3"`
}

// QuantConf points at the range-recommendation engine.
type QuantConf struct {
	URL string `json:",default=http://localhost:8000"`
}

type Config struct {
	rest.RestConf
	// Env indicates the running environment: test | dev | prod
	Env string   `json:",default=test"`
	TTL CacheTTL `json:",optional"`

	// QuoteRanking overrides the preferred quote-asset priority list.
	QuoteRanking []string `json:",optional"`
	// PriceSourceDefault selects pool or aggregator pricing when a request
	// does not say.
	PriceSourceDefault string `json:",default=pool"`

	Chain   ChainConf      `json:",optional"`
	Quant   QuantConf      `json:",optional"`
	Insight insight.Config `json:",optional"`

	Sources confkit.Section[klinepkg.Config] `json:",optional"`

	mainPath string
	baseDir  string
}

func (c *Config) IsTestEnv() bool {
	return c.Env == "test" || c.Env == ""
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func Load(path string) (*Config, error) {
	confkit.LoadDotenvOnce()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path %s: %w", path, err)
	}

	var cfg Config
	if err := conf.Load(absPath, &cfg, conf.UseEnv()); err != nil {
		return nil, fmt.Errorf("load config %s: %w", absPath, err)
	}

	cfg.mainPath = absPath
	cfg.baseDir = filepath.Dir(absPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.hydrateSections(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "", "test", "dev", "prod":
		if strings.TrimSpace(c.Env) == "" {
			c.Env = "test"
		}
	default:
		return errors.New("config: env must be one of test|dev|prod")
	}
	switch strings.ToLower(strings.TrimSpace(c.PriceSourceDefault)) {
	case "", "pool":
		c.PriceSourceDefault = "pool"
	case "aggregator":
		c.PriceSourceDefault = "aggregator"
	default:
		return errors.New("config: priceSourceDefault must be pool or aggregator")
	}
	c.applyDefaults()
	return c.validateTTL()
}

// applyDefaults fills the nested blocks' zero values. Field tags only take
// effect when the enclosing block appears in the yaml, so an omitted block
// arrives fully zeroed and is defaulted here.
func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Chain.RPCURL) == "" {
		c.Chain.RPCURL = "https://fullnode.mainnet.sui.io:443"
	}
	if strings.TrimSpace(c.Chain.AggregatorURL) == "" {
		c.Chain.AggregatorURL = "https://api-sui.cetus.zone/router_v3/find_routes"
	}
	if c.Chain.MaxRetries <= 0 {
		c.Chain.MaxRetries = 3
	}
	if strings.TrimSpace(c.Quant.URL) == "" {
		c.Quant.URL = "http://localhost:8000"
	}
	if c.TTL.Short == 0 {
		c.TTL.Short = 10
	}
	if c.TTL.Medium == 0 {
		c.TTL.Medium = 60
	}
	if c.TTL.Long == 0 {
		c.TTL.Long = 300
	}
}

func (c *Config) validateTTL() error {
	if c.TTL.Short <= 0 {
		return errors.New("config: ttl.short must be positive")
	}
	if c.TTL.Medium <= 0 {
		return errors.New("config: ttl.medium must be positive")
	}
	if c.TTL.Long <= 0 {
		return errors.New("config: ttl.long must be positive")
	}
	return nil
}

func (c *Config) hydrateSections() error {
	if err := c.Sources.Hydrate(c.baseDir, klinepkg.LoadConfig); err != nil {
		return fmt.Errorf("load kline sources config: %w", err)
	}
	return nil
}

func (c *Config) MainPath() string {
	return c.mainPath
}

func (c *Config) BaseDir() string {
	return c.baseDir
}
