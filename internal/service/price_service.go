package service

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"walletguard/internal/client"
	"walletguard/internal/config"
	"walletguard/internal/entity"
	"walletguard/internal/metrics"
)

const stablecoinPriceUSD = 1.00

// stablecoinOverrides maps well-known stable-value token contracts to a fixed
// unit price, bypassing live sources entirely.
var stablecoinOverrides = map[string]float64{
	"0xdac17f958d2ee523a2206206994597c13d831ec7": stablecoinPriceUSD, // USDT
	"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48": stablecoinPriceUSD, // USDC
	"0x6b175474e89094c44da98b954eedeac495271d0f": stablecoinPriceUSD, // DAI
	"0x4fabb145d64652a948d72533023f6e7a623c7c53": stablecoinPriceUSD, // BUSD
	"0x0000000000085d4780b73119b644ae5ecd22b376": stablecoinPriceUSD, // TUSD
}

// PriceService resolves USD unit prices for the native currency and for token
// contracts. Unresolvable prices come back as 0, never as an error.
type PriceService interface {
	NativePrice(ctx context.Context) float64
	TokenPrice(ctx context.Context, contract string) float64
	TokenPrices(ctx context.Context, contracts []string) map[string]float64
}

// priceResolver is one strategy in the ordered resolution chain. ok reports
// whether the resolver could answer for the contract at all; a resolved price
// may still legitimately be zero.
type priceResolver interface {
	Name() string
	Resolve(ctx context.Context, contract string) (price float64, ok bool)
}

// priceServiceImpl is the implementation of PriceService.
type priceServiceImpl struct {
	coingecko   client.CoinGeckoClient
	nativeCache *NativePriceCache
	quoteCache  *gocache.Cache
	resolvers   []priceResolver
	sfGroup     singleflight.Group
	maxLive     int
	fallback    float64
	logger      *zap.Logger
}

// NewPriceService creates a new instance of priceServiceImpl. The live-source
// resolvers share one token-bucket limiter so concurrent requests respect the
// same upstream quota.
func NewPriceService(
	coingecko client.CoinGeckoClient,
	oneinch client.OneInchClient,
	nativeCache *NativePriceCache,
	cfg config.PriceServiceConfig,
	logger *zap.Logger,
) PriceService {
	log := logger.Named("PriceService")
	quoteTTL := time.Duration(cfg.QuoteCacheTTLSeconds) * time.Second
	limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)

	return &priceServiceImpl{
		coingecko:   coingecko,
		nativeCache: nativeCache,
		quoteCache:  gocache.New(quoteTTL, 2*quoteTTL),
		resolvers: []priceResolver{
			stablecoinResolver{},
			&coingeckoResolver{client: coingecko, limiter: limiter, logger: log},
			&oneinchResolver{client: oneinch, limiter: limiter, logger: log},
		},
		maxLive:  cfg.MaxLiveQuotesPerBatch,
		fallback: cfg.FallbackNativePrice,
		logger:   log,
	}
}

// NativePrice implements the PriceService interface. The shared single-slot
// cache is consulted first; on miss or expiry one worker refreshes it while
// concurrent callers wait on the same flight. A failed refresh caches the
// constant fallback estimate for the full TTL window.
func (s *priceServiceImpl) NativePrice(ctx context.Context) float64 {
	if quote, ok := s.nativeCache.Get(); ok {
		return quote.PriceUSD
	}

	value, _, _ := s.sfGroup.Do("native", func() (any, error) {
		if quote, ok := s.nativeCache.Get(); ok {
			return quote.PriceUSD, nil
		}

		price, err := s.coingecko.GetNativePrice(ctx)
		if err != nil || price <= 0 {
			s.logger.Warn("Native price unavailable from primary source, caching fallback estimate",
				zap.Float64("fallback", s.fallback), zap.Error(err))
			metrics.UpstreamErrorsTotal.WithLabelValues("coingecko").Inc()
			s.nativeCache.Set(s.fallback, entity.PriceSourceFallback)
			return s.fallback, nil
		}

		s.logger.Debug("Native price refreshed", zap.Float64("price", price))
		s.nativeCache.Set(price, entity.PriceSourceCoinGecko)
		return price, nil
	})

	return value.(float64)
}

// TokenPrice implements the PriceService interface for a single contract.
func (s *priceServiceImpl) TokenPrice(ctx context.Context, contract string) float64 {
	return s.resolveContract(ctx, strings.ToLower(contract))
}

// TokenPrices implements the PriceService interface. Only the first
// maxLive contracts are resolved against live sources; the remainder is
// assigned 0 without querying, trading coverage for bounded latency on large
// wallets.
func (s *priceServiceImpl) TokenPrices(ctx context.Context, contracts []string) map[string]float64 {
	prices := make(map[string]float64, len(contracts))
	for i, contract := range contracts {
		contractLower := strings.ToLower(contract)
		if i >= s.maxLive {
			prices[contractLower] = 0
			continue
		}
		prices[contractLower] = s.resolveContract(ctx, contractLower)
	}

	if len(contracts) > s.maxLive {
		s.logger.Info("Price batch truncated to respect upstream rate limits",
			zap.Int("requested", len(contracts)), zap.Int("resolved", s.maxLive))
	}
	return prices
}

// resolveContract walks the resolver chain for one contract. The outcome,
// including a zero "unknown" quote, is cached so repeated lookups within the
// TTL do not touch live sources again.
func (s *priceServiceImpl) resolveContract(ctx context.Context, contractLower string) float64 {
	if cached, found := s.quoteCache.Get(contractLower); found {
		return cached.(entity.PriceQuote).PriceUSD
	}

	for _, resolver := range s.resolvers {
		price, ok := resolver.Resolve(ctx, contractLower)
		if !ok {
			continue
		}
		s.quoteCache.Set(contractLower, entity.PriceQuote{
			Contract:  contractLower,
			PriceUSD:  price,
			Source:    resolver.Name(),
			FetchedAt: time.Now(),
		}, gocache.DefaultExpiration)
		s.logger.Debug("Resolved token price",
			zap.String("contract", contractLower),
			zap.String("source", resolver.Name()),
			zap.Float64("price", price))
		return price
	}

	s.quoteCache.Set(contractLower, entity.PriceQuote{
		Contract:  contractLower,
		FetchedAt: time.Now(),
	}, gocache.DefaultExpiration)
	s.logger.Debug("No source could price contract", zap.String("contract", contractLower))
	return 0
}

// stablecoinResolver answers from the static override table.
type stablecoinResolver struct{}

func (stablecoinResolver) Name() string { return entity.PriceSourceStablecoin }

func (stablecoinResolver) Resolve(_ context.Context, contract string) (float64, bool) {
	price, ok := stablecoinOverrides[contract]
	return price, ok
}

// coingeckoResolver queries the primary aggregator, paced by the shared
// limiter.
type coingeckoResolver struct {
	client  client.CoinGeckoClient
	limiter *rate.Limiter
	logger  *zap.Logger
}

func (r *coingeckoResolver) Name() string { return entity.PriceSourceCoinGecko }

func (r *coingeckoResolver) Resolve(ctx context.Context, contract string) (float64, bool) {
	if err := r.limiter.Wait(ctx); err != nil {
		return 0, false
	}
	price, err := r.client.GetTokenPrice(ctx, contract)
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues("coingecko").Inc()
		return 0, false
	}
	return price, true
}

// oneinchResolver queries the secondary aggregator. It only claims a result
// for a strictly positive price; a zero answer falls through to "unresolved".
type oneinchResolver struct {
	client  client.OneInchClient
	limiter *rate.Limiter
	logger  *zap.Logger
}

func (r *oneinchResolver) Name() string { return entity.PriceSourceOneInch }

func (r *oneinchResolver) Resolve(ctx context.Context, contract string) (float64, bool) {
	if err := r.limiter.Wait(ctx); err != nil {
		return 0, false
	}
	price, err := r.client.GetTokenPrice(ctx, contract)
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues("1inch").Inc()
		return 0, false
	}
	if price <= 0 {
		return 0, false
	}
	return price, true
}
