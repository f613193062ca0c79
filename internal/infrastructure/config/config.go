// Package config loads service configuration from YAML, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/domain/entity"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/logger"
)

const (
	// DefaultPriceFeedURL is the CoinGecko simple-price endpoint
	DefaultPriceFeedURL = "https://api.coingecko.com/api/v3/simple/price"
	// DefaultPollInterval is how often the price feed refreshes
	DefaultPollInterval = 60 * time.Second

	envPrefix = "PRICEFEED_"
)

// Config holds every tunable of the service
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	PriceFeed struct {
		URL            string        `yaml:"url"`
		Asset          string        `yaml:"asset"`
		Currency       string        `yaml:"currency"`
		PollInterval   time.Duration `yaml:"poll_interval"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
		MaxRetries     int           `yaml:"max_retries"`
	} `yaml:"price_feed"`

	Payment struct {
		WalletAddress string `yaml:"wallet_address"`
		Network       string `yaml:"network"`
		Asset         string `yaml:"asset"`
	} `yaml:"payment"`

	RateLimit struct {
		RefreshPerSecond float64 `yaml:"refresh_per_second"`
		Burst            int     `yaml:"burst"`
	} `yaml:"rate_limit"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Default returns a configuration with every optional value filled in
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":8080"
	cfg.Storage.Path = "data"
	cfg.PriceFeed.URL = DefaultPriceFeedURL
	cfg.PriceFeed.Asset = "bitcoin"
	cfg.PriceFeed.Currency = "usd"
	cfg.PriceFeed.PollInterval = DefaultPollInterval
	cfg.PriceFeed.RequestTimeout = 10 * time.Second
	cfg.PriceFeed.MaxRetries = 3
	cfg.Payment.Network = "bitcoin"
	cfg.Payment.Asset = "BTC"
	cfg.RateLimit.RefreshPerSecond = 0.2
	cfg.RateLimit.Burst = 1
	cfg.Logging.Level = "info"
	return cfg
}

// Load reads an optional .env file and an optional YAML file, applies
// environment overrides and validates the result. Empty paths are skipped.
func Load(yamlPath, envPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	cfg := Default()

	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := overrideWithEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server address is required")
	}

	if c.Storage.Path == "" {
		return errors.New("storage path is required")
	}

	u, err := url.Parse(c.PriceFeed.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid price feed URL: %s", c.PriceFeed.URL)
	}

	if c.PriceFeed.Asset == "" || c.PriceFeed.Currency == "" {
		return errors.New("price feed asset and currency are required")
	}

	if c.PriceFeed.PollInterval <= 0 {
		return errors.New("poll interval must be positive")
	}

	if c.PriceFeed.MaxRetries < 1 {
		return errors.New("max retries must be at least 1")
	}

	if c.Payment.WalletAddress == "" {
		return errors.New("payment wallet address is required")
	}

	if c.RateLimit.RefreshPerSecond <= 0 || c.RateLimit.Burst < 1 {
		return errors.New("refresh rate limit must be positive")
	}

	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return err
	}

	return nil
}

// PaymentDetails builds the injected payment configuration value
func (c *Config) PaymentDetails() entity.PaymentDetails {
	return entity.PaymentDetails{
		WalletAddress: c.Payment.WalletAddress,
		Network:       c.Payment.Network,
		Asset:         c.Payment.Asset,
	}
}

// LogLevel returns the configured log level, falling back to info
func (c *Config) LogLevel() logger.Level {
	level, _ := logger.ParseLevel(c.Logging.Level)
	return level
}

// overrideWithEnv applies PRICEFEED_* variables on top of file values.
func overrideWithEnv(cfg *Config) error {
	strs := map[string]*string{
		"ADDR":           &cfg.Server.Addr,
		"STORAGE_PATH":   &cfg.Storage.Path,
		"URL":            &cfg.PriceFeed.URL,
		"ASSET":          &cfg.PriceFeed.Asset,
		"CURRENCY":       &cfg.PriceFeed.Currency,
		"WALLET_ADDRESS": &cfg.Payment.WalletAddress,
		"NETWORK":        &cfg.Payment.Network,
		"PAYMENT_ASSET":  &cfg.Payment.Asset,
		"LOG_LEVEL":      &cfg.Logging.Level,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"POLL_INTERVAL":   &cfg.PriceFeed.PollInterval,
		"REQUEST_TIMEOUT": &cfg.PriceFeed.RequestTimeout,
	}
	for key, dst := range durations {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", envPrefix, key, err)
			}
			*dst = d
		}
	}

	ints := map[string]*int{
		"MAX_RETRIES":   &cfg.PriceFeed.MaxRetries,
		"REFRESH_BURST": &cfg.RateLimit.Burst,
	}
	for key, dst := range ints {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", envPrefix, key, err)
			}
			*dst = n
		}
	}

	if v, ok := lookup("REFRESH_PER_SECOND"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %sREFRESH_PER_SECOND: %w", envPrefix, err)
		}
		cfg.RateLimit.RefreshPerSecond = f
	}

	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
