package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"walletguard/internal/config"
)

// OneInchClient is the secondary spot-price collaborator, consulted only when
// the primary aggregator cannot price a contract.
type OneInchClient interface {
	GetTokenPrice(ctx context.Context, contract string) (float64, error)
}

// oneInchClientImpl is the implementation of OneInchClient.
type oneInchClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	chainID string
	timeout time.Duration
	logger  *zap.Logger
}

// NewOneInchClient creates a new instance of oneInchClientImpl.
func NewOneInchClient(cfg config.OneInchConfig, logger *zap.Logger) OneInchClient {
	return &oneInchClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		chainID: cfg.ChainID,
		timeout: time.Duration(cfg.RequestTimeoutMillis) * time.Millisecond,
		logger:  logger.Named("OneInchClient"),
	}
}

// GetTokenPrice implements the OneInchClient interface. The API maps contract
// addresses to USD prices, serialized either as numbers or strings.
func (c *oneInchClientImpl) GetTokenPrice(ctx context.Context, contract string) (float64, error) {
	contractLower := strings.ToLower(contract)
	requestURL := fmt.Sprintf("%s/%s/%s", c.baseURL, c.chainID, contractLower)

	var response map[string]any
	if err := getJSON(ctx, c.client, requestURL, c.timeout, &response); err != nil {
		c.logger.Warn("1inch price request failed",
			zap.String("contract", contractLower), zap.Error(err))
		return 0, err
	}

	raw, ok := response[contractLower]
	if !ok {
		return 0, fmt.Errorf("contract %s not priced by 1inch", contractLower)
	}

	switch v := raw.(type) {
	case float64:
		return v, nil
	case string:
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("unparseable 1inch price %q for %s: %w", v, contractLower, err)
		}
		return price, nil
	default:
		return 0, fmt.Errorf("unexpected 1inch price type %T for %s", raw, contractLower)
	}
}
