package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"walletguard/internal/entity"
	"walletguard/internal/pkg/utils"
)

// PortfolioService composes reconstructed balances with resolved prices into
// a valued, sorted holdings list and aggregate totals.
type PortfolioService interface {
	GetPortfolio(ctx context.Context, address string) *entity.PortfolioSummary
	ValuedHoldings(ctx context.Context, address string) []entity.ValuedHolding
}

// portfolioServiceImpl is the implementation of PortfolioService.
type portfolioServiceImpl struct {
	balanceSvc BalanceService
	priceSvc   PriceService
	logger     *zap.Logger
}

// NewPortfolioService creates a new instance of portfolioServiceImpl.
func NewPortfolioService(balanceSvc BalanceService, priceSvc PriceService, logger *zap.Logger) PortfolioService {
	return &portfolioServiceImpl{
		balanceSvc: balanceSvc,
		priceSvc:   priceSvc,
		logger:     logger.Named("PortfolioService"),
	}
}

// ValuedHoldings implements the PortfolioService interface. It returns the
// wallet's holdings with unrounded balances and values, sorted descending by
// USD value (stable, so equal-value holdings keep their relative order).
func (s *portfolioServiceImpl) ValuedHoldings(ctx context.Context, address string) []entity.ValuedHolding {
	holdings := s.balanceSvc.ReconstructHoldings(ctx, address)
	if len(holdings) == 0 {
		return []entity.ValuedHolding{}
	}

	contracts := make([]string, len(holdings))
	for i, holding := range holdings {
		contracts[i] = holding.Contract
	}
	prices := s.priceSvc.TokenPrices(ctx, contracts)

	valued := make([]entity.ValuedHolding, len(holdings))
	for i, holding := range holdings {
		price := prices[holding.Contract]
		valued[i] = entity.ValuedHolding{
			TokenHolding: holding,
			PriceUSD:     price,
			ValueUSD:     holding.Balance * price,
		}
	}

	sort.SliceStable(valued, func(i, j int) bool {
		return valued[i].ValueUSD > valued[j].ValueUSD
	})
	return valued
}

// GetPortfolio implements the PortfolioService interface. Totals are
// accumulated from unrounded values; display rounding happens once, here at
// the response boundary.
func (s *portfolioServiceImpl) GetPortfolio(ctx context.Context, address string) *entity.PortfolioSummary {
	ethBalance := s.balanceSvc.GetNativeBalance(ctx, address)
	ethPrice := s.priceSvc.NativePrice(ctx)
	ethValue := ethBalance * ethPrice

	valued := s.ValuedHoldings(ctx, address)

	var totalTokenValue float64
	rounded := make([]entity.ValuedHolding, len(valued))
	for i, holding := range valued {
		totalTokenValue += holding.ValueUSD

		holding.Balance = utils.RoundAmount(holding.Balance)
		holding.PriceUSD = utils.RoundUSD(holding.PriceUSD)
		holding.ValueUSD = utils.RoundUSD(holding.ValueUSD)
		rounded[i] = holding
	}

	s.logger.Info("Portfolio assembled",
		zap.String("address", address),
		zap.Int("holdings", len(rounded)),
		zap.Float64("totalValueUSD", ethValue+totalTokenValue))

	return &entity.PortfolioSummary{
		Address:                address,
		EthBalance:             utils.RoundAmount(ethBalance),
		EthPriceUSD:            utils.RoundUSD(ethPrice),
		EthValueUSD:            utils.RoundUSD(ethValue),
		TokenHoldings:          rounded,
		TotalTokenValueUSD:     utils.RoundUSD(totalTokenValue),
		TotalPortfolioValueUSD: utils.RoundUSD(ethValue + totalTokenValue),
		HoldingsCount:          len(rounded),
	}
}
