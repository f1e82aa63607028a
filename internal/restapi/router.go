package restapi

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRouter wires the gin engine: CORS, request logging, recovery, the API
// routes and the Prometheus endpoint.
func SetupRouter(handler *WalletHandler, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	router.Use(ZapLoggerMiddleware(logger))
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		api.GET("/wallet/:address", handler.GetWalletHandler)
		api.GET("/wallet/:address/transactions", handler.GetTransactionsHandler)
		api.GET("/wallet/:address/risk-analysis", handler.GetRiskAnalysisHandler)
		api.GET("/token-price/:contract", handler.GetTokenPriceHandler)
		api.GET("/stats", handler.GetStatsHandler)
		api.GET("/health", handler.GetHealthHandler)
		api.GET("/test-etherscan", handler.GetTestEtherscanHandler)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
