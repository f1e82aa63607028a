package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the overall configuration for the application.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Etherscan    EtherscanConfig    `yaml:"etherscan"`
	CoinGecko    CoinGeckoConfig    `yaml:"coinGecko"`
	OneInch      OneInchConfig      `yaml:"oneInch"`
	Honeypot     HoneypotConfig     `yaml:"honeypot"`
	PriceService PriceServiceConfig `yaml:"priceService"`
	RiskService  RiskServiceConfig  `yaml:"riskService"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// EtherscanConfig holds the configuration for the Etherscan V2 client.
// ApiKey is overridden by the ETHERSCAN_API_KEY environment variable when set.
type EtherscanConfig struct {
	BaseURL              string `yaml:"baseURL"`
	ApiKey               string `yaml:"apiKey"`
	ChainID              string `yaml:"chainID"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// CoinGeckoConfig holds the configuration for the CoinGecko client.
type CoinGeckoConfig struct {
	BaseURL              string `yaml:"baseURL"`
	NativeCoinID         string `yaml:"nativeCoinID"`
	AssetPlatform        string `yaml:"assetPlatform"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// OneInchConfig holds the configuration for the 1inch spot price fallback.
type OneInchConfig struct {
	BaseURL              string `yaml:"baseURL"`
	ChainID              string `yaml:"chainID"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// HoneypotConfig holds the configuration for the honeypot.is client.
type HoneypotConfig struct {
	BaseURL              string `yaml:"baseURL"`
	ChainID              string `yaml:"chainID"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// PriceServiceConfig holds configuration for the price resolver.
type PriceServiceConfig struct {
	NativeCacheTTLSeconds int     `yaml:"nativeCacheTTLSeconds"`
	QuoteCacheTTLSeconds  int     `yaml:"quoteCacheTTLSeconds"`
	MaxLiveQuotesPerBatch int     `yaml:"maxLiveQuotesPerBatch"`
	RequestsPerSecond     float64 `yaml:"requestsPerSecond"`
	FallbackNativePrice   float64 `yaml:"fallbackNativePrice"`
}

// RiskServiceConfig holds configuration for the wallet risk analyzer.
type RiskServiceConfig struct {
	MaxTokensAnalyzed int     `yaml:"maxTokensAnalyzed"`
	ChecksPerSecond   float64 `yaml:"checksPerSecond"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g., "debug", "info", "warn", "error"
}

// Default returns the built-in configuration used when no config file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         ":5000",
			ReadTimeout:  15,
			WriteTimeout: 60,
			IdleTimeout:  120,
		},
		Etherscan: EtherscanConfig{
			BaseURL:              "https://api.etherscan.io/v2/api",
			ChainID:              "1",
			RequestTimeoutMillis: 10000,
		},
		CoinGecko: CoinGeckoConfig{
			BaseURL:              "https://api.coingecko.com/api/v3",
			NativeCoinID:         "ethereum",
			AssetPlatform:        "ethereum",
			RequestTimeoutMillis: 5000,
		},
		OneInch: OneInchConfig{
			BaseURL:              "https://api.1inch.dev/price/v1.1",
			ChainID:              "1",
			RequestTimeoutMillis: 3000,
		},
		Honeypot: HoneypotConfig{
			BaseURL:              "https://api.honeypot.is",
			ChainID:              "1",
			RequestTimeoutMillis: 5000,
		},
		PriceService: PriceServiceConfig{
			NativeCacheTTLSeconds: 60,
			QuoteCacheTTLSeconds:  60,
			MaxLiveQuotesPerBatch: 15,
			RequestsPerSecond:     2,
			FallbackNativePrice:   3500,
		},
		RiskService: RiskServiceConfig{
			MaxTokensAnalyzed: 10,
			ChecksPerSecond:   3.3,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadConfig loads configuration from a YAML file, falling back to defaults
// for any section the file omits. The Etherscan API key is always taken from
// the environment when ETHERSCAN_API_KEY is set.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		logrus.Infof("Loading configuration from path: %s", path)
		data, err := os.ReadFile(path)
		if err != nil {
			logrus.Errorf("Failed to read config file %s: %v", path, err)
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			logrus.Errorf("Failed to parse config file %s: %v", path, err)
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else {
		logrus.Info("No config path provided, using built-in defaults")
	}

	if key := os.Getenv("ETHERSCAN_API_KEY"); key != "" {
		cfg.Etherscan.ApiKey = key
	}

	return cfg, nil
}
