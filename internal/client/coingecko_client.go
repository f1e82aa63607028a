package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"walletguard/internal/config"
)

// CoinGeckoClient is the primary spot-price collaborator, keyed by coin id for
// the native currency and by contract address for tokens.
type CoinGeckoClient interface {
	GetNativePrice(ctx context.Context) (float64, error)
	GetTokenPrice(ctx context.Context, contract string) (float64, error)
}

// coinGeckoClientImpl is the implementation of CoinGeckoClient.
type coinGeckoClientImpl struct {
	client        *fasthttp.Client
	baseURL       string
	nativeCoinID  string
	assetPlatform string
	timeout       time.Duration
	logger        *zap.Logger
}

// NewCoinGeckoClient creates a new instance of coinGeckoClientImpl.
func NewCoinGeckoClient(cfg config.CoinGeckoConfig, logger *zap.Logger) CoinGeckoClient {
	return &coinGeckoClientImpl{
		client:        &fasthttp.Client{},
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		nativeCoinID:  cfg.NativeCoinID,
		assetPlatform: cfg.AssetPlatform,
		timeout:       time.Duration(cfg.RequestTimeoutMillis) * time.Millisecond,
		logger:        logger.Named("CoinGeckoClient"),
	}
}

// GetNativePrice implements the CoinGeckoClient interface.
func (c *coinGeckoClientImpl) GetNativePrice(ctx context.Context) (float64, error) {
	requestURL := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", c.baseURL, c.nativeCoinID)

	var response map[string]map[string]float64
	if err := getJSON(ctx, c.client, requestURL, c.timeout, &response); err != nil {
		c.logger.Error("CoinGecko native price request failed", zap.Error(err))
		return 0, err
	}

	quote, ok := response[c.nativeCoinID]
	if !ok {
		return 0, fmt.Errorf("coin id %q missing from CoinGecko response", c.nativeCoinID)
	}
	price, ok := quote["usd"]
	if !ok {
		return 0, fmt.Errorf("usd quote missing from CoinGecko response for %q", c.nativeCoinID)
	}
	return price, nil
}

// GetTokenPrice implements the CoinGeckoClient interface. A contract unknown
// to CoinGecko resolves to an error so the caller can try the next source.
func (c *coinGeckoClientImpl) GetTokenPrice(ctx context.Context, contract string) (float64, error) {
	contractLower := strings.ToLower(contract)
	requestURL := fmt.Sprintf("%s/simple/token_price/%s?contract_addresses=%s&vs_currencies=usd",
		c.baseURL, c.assetPlatform, contractLower)

	var response map[string]map[string]float64
	if err := getJSON(ctx, c.client, requestURL, c.timeout, &response); err != nil {
		c.logger.Warn("CoinGecko token price request failed",
			zap.String("contract", contractLower), zap.Error(err))
		return 0, err
	}

	quote, ok := response[contractLower]
	if !ok {
		return 0, fmt.Errorf("contract %s not priced by CoinGecko", contractLower)
	}
	price, ok := quote["usd"]
	if !ok {
		return 0, fmt.Errorf("usd quote missing from CoinGecko response for %s", contractLower)
	}
	return price, nil
}
