package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"walletguard/internal/config"
	"walletguard/internal/entity"
)

// HoneypotClient is the honeypot/liquidity simulation collaborator, keyed by
// token contract and chain id.
type HoneypotClient interface {
	CheckToken(ctx context.Context, contract string) (*entity.HoneypotReport, error)
}

// honeypotClientImpl is the implementation of HoneypotClient over honeypot.is.
type honeypotClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	chainID string
	timeout time.Duration
	logger  *zap.Logger
}

type honeypotResponse struct {
	HoneypotResult struct {
		IsHoneypot     bool   `json:"isHoneypot"`
		HoneypotReason string `json:"honeypotReason"`
	} `json:"honeypotResult"`
	SimulationResult struct {
		BuyTax  float64 `json:"buyTax"`
		SellTax float64 `json:"sellTax"`
	} `json:"simulationResult"`
}

// NewHoneypotClient creates a new instance of honeypotClientImpl.
func NewHoneypotClient(cfg config.HoneypotConfig, logger *zap.Logger) HoneypotClient {
	return &honeypotClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		chainID: cfg.ChainID,
		timeout: time.Duration(cfg.RequestTimeoutMillis) * time.Millisecond,
		logger:  logger.Named("HoneypotClient"),
	}
}

// CheckToken implements the HoneypotClient interface. Trading is considered
// disabled when the simulation reports "No liquidity" as the honeypot reason.
func (c *honeypotClientImpl) CheckToken(ctx context.Context, contract string) (*entity.HoneypotReport, error) {
	requestURL := fmt.Sprintf("%s/v2/IsHoneypot?address=%s&chainID=%s", c.baseURL, strings.ToLower(contract), c.chainID)

	var response honeypotResponse
	if err := getJSON(ctx, c.client, requestURL, c.timeout, &response); err != nil {
		c.logger.Warn("Honeypot simulation request failed",
			zap.String("contract", contract), zap.Error(err))
		return nil, err
	}

	return &entity.HoneypotReport{
		IsHoneypot:     response.HoneypotResult.IsHoneypot,
		BuyTaxPercent:  response.SimulationResult.BuyTax,
		SellTaxPercent: response.SimulationResult.SellTax,
		TradingEnabled: response.HoneypotResult.HoneypotReason != "No liquidity",
	}, nil
}
