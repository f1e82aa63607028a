package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"

	"walletguard/internal/client"
	"walletguard/internal/config"
	"walletguard/internal/metrics"
	"walletguard/internal/restapi"
	"walletguard/internal/service"
)

func main() {
	// .env is optional; it only carries ETHERSCAN_API_KEY in local setups.
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zapLogger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize zap logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	// Bridge slog callers onto the same zap core.
	slog.SetDefault(slog.New(zapslog.NewHandler(zapLogger.Core())))

	if cfg.Etherscan.ApiKey == "" {
		zapLogger.Warn("No Etherscan API key configured; indexer requests will be heavily rate limited")
	}
	zapLogger.Info("Configuration loaded", zap.String("path", cfgPath))

	metrics.MustRegisterMetrics()

	etherscanClient := client.NewEtherscanClient(cfg.Etherscan, zapLogger)
	coingeckoClient := client.NewCoinGeckoClient(cfg.CoinGecko, zapLogger)
	oneinchClient := client.NewOneInchClient(cfg.OneInch, zapLogger)
	honeypotClient := client.NewHoneypotClient(cfg.Honeypot, zapLogger)
	zapLogger.Info("Upstream clients initialized")

	nativeCache := service.NewNativePriceCache(time.Duration(cfg.PriceService.NativeCacheTTLSeconds) * time.Second)
	priceSvc := service.NewPriceService(coingeckoClient, oneinchClient, nativeCache, cfg.PriceService, zapLogger)
	balanceSvc := service.NewBalanceService(etherscanClient, zapLogger)
	portfolioSvc := service.NewPortfolioService(balanceSvc, priceSvc, zapLogger)
	txSvc := service.NewTransactionService(etherscanClient, zapLogger)
	riskSvc := service.NewRiskService(portfolioSvc, etherscanClient, honeypotClient, cfg.RiskService, zapLogger)
	statsSvc := service.NewStatsService()
	zapLogger.Info("Services initialized")

	handler := restapi.NewWalletHandler(portfolioSvc, priceSvc, txSvc, riskSvc, statsSvc, etherscanClient, zapLogger)
	router := restapi.SetupRouter(handler, zapLogger)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info(fmt.Sprintf("Server starting on %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting")
}

// newLogger builds a production zap logger at the configured level; an
// unrecognized level string falls back to info.
func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if parsed, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(parsed)
	}
	return cfg.Build()
}
