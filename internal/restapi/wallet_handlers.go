package restapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"walletguard/internal/client"
	"walletguard/internal/entity"
	"walletguard/internal/service"
)

// Known-good address used by the connectivity probe endpoint.
const probeAddress = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"

// WalletHandler handles all wallet-centric HTTP requests. It owns input
// validation only; every domain decision lives in the services.
type WalletHandler struct {
	portfolioSvc service.PortfolioService
	priceSvc     service.PriceService
	txSvc        service.TransactionService
	riskSvc      service.RiskService
	statsSvc     service.StatsService
	etherscan    client.EtherscanClient
	logger       *zap.Logger
}

// NewWalletHandler creates a new instance of WalletHandler.
func NewWalletHandler(
	portfolioSvc service.PortfolioService,
	priceSvc service.PriceService,
	txSvc service.TransactionService,
	riskSvc service.RiskService,
	statsSvc service.StatsService,
	etherscan client.EtherscanClient,
	logger *zap.Logger,
) *WalletHandler {
	return &WalletHandler{
		portfolioSvc: portfolioSvc,
		priceSvc:     priceSvc,
		txSvc:        txSvc,
		riskSvc:      riskSvc,
		statsSvc:     statsSvc,
		etherscan:    etherscan,
		logger:       logger.Named("WalletHandler"),
	}
}

// isValidAddress reports whether addr is a 0x-prefixed, 40-hex-digit address.
// This is the one hard validation gate; nothing upstream is called for a
// malformed address.
func isValidAddress(addr string) bool {
	return strings.HasPrefix(addr, "0x") && len(addr) == 42 && common.IsHexAddress(addr)
}

// GetWalletHandler serves the portfolio summary for an address.
func (h *WalletHandler) GetWalletHandler(c *gin.Context) {
	address := c.Param("address")
	if !isValidAddress(address) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Ethereum address"})
		return
	}

	summary := h.portfolioSvc.GetPortfolio(c.Request.Context(), address)
	c.JSON(http.StatusOK, summary)
}

// GetTokenPriceHandler serves the resolved USD price for a single contract,
// zero when no source can price it.
func (h *WalletHandler) GetTokenPriceHandler(c *gin.Context) {
	contract := c.Param("contract")
	price := h.priceSvc.TokenPrice(c.Request.Context(), contract)
	c.JSON(http.StatusOK, gin.H{
		"contract":  contract,
		"price_usd": price,
	})
}

// GetTransactionsHandler serves the merged transaction feed for an address.
func (h *WalletHandler) GetTransactionsHandler(c *gin.Context) {
	address := c.Param("address")
	if !isValidAddress(address) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Ethereum address"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
		return
	}
	filter := c.DefaultQuery("type", entity.TxFilterAll)

	feed := h.txSvc.GetTransactions(c.Request.Context(), address, limit, filter)
	c.JSON(http.StatusOK, feed)
}

// GetRiskAnalysisHandler serves the wallet risk report. Per-signal failures
// degrade inside the services and still produce a 200; only an unexpected
// aggregate failure becomes a 500, with the address preserved in the body.
func (h *WalletHandler) GetRiskAnalysisHandler(c *gin.Context) {
	address := c.Param("address")
	if !isValidAddress(address) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Ethereum address"})
		return
	}

	report, err := h.riskSvc.AnalyzeWallet(c.Request.Context(), address)
	if err != nil {
		h.logger.Error("Risk analysis failed", zap.String("address", address), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"address": address,
			"error":   "Risk analysis failed",
			"message": "internal error during risk analysis",
		})
		return
	}

	honeypots := lo.CountBy(report.RiskyTokens, func(t entity.TokenRiskProfile) bool {
		return lo.SomeBy(t.RiskFlags, func(flag string) bool {
			return strings.Contains(flag, "HONEYPOT")
		})
	})
	h.statsSvc.RecordAnalysis(address, honeypots)

	c.JSON(http.StatusOK, report)
}

// GetStatsHandler serves the aggregate usage counters.
func (h *WalletHandler) GetStatsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.statsSvc.Snapshot())
}

// GetHealthHandler is the liveness probe.
func (h *WalletHandler) GetHealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "walletguard API is running",
	})
}

// GetTestEtherscanHandler probes indexer connectivity with a fixed known
// address, for deploy-time debugging.
func (h *WalletHandler) GetTestEtherscanHandler(c *gin.Context) {
	balance, err := h.etherscan.GetNativeBalance(c.Request.Context(), probeAddress)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"api_version": "V2",
			"reachable":   false,
			"error":       err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"api_version":  "V2",
		"reachable":    true,
		"test_address": probeAddress,
		"balance_wei":  balance.String(),
	})
}
