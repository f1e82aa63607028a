package service

import (
	"context"
	"math/big"
	"strings"

	"go.uber.org/zap"

	"walletguard/internal/client"
	"walletguard/internal/entity"
	"walletguard/internal/metrics"
	"walletguard/internal/pkg/utils"
)

// BalanceService reconstructs current holdings by replaying transfer-event
// history. It never fails a request: any upstream problem degrades to "no
// holdings".
type BalanceService interface {
	ReconstructHoldings(ctx context.Context, address string) []entity.TokenHolding
	GetNativeBalance(ctx context.Context, address string) float64
}

// balanceServiceImpl is the implementation of BalanceService.
type balanceServiceImpl struct {
	etherscan client.EtherscanClient
	logger    *zap.Logger
}

// tokenAccumulator carries the running raw balance for one contract while the
// event list is replayed.
type tokenAccumulator struct {
	name     string
	symbol   string
	decimals uint8
	balance  *big.Int
}

// NewBalanceService creates a new instance of balanceServiceImpl.
func NewBalanceService(etherscan client.EtherscanClient, logger *zap.Logger) BalanceService {
	return &balanceServiceImpl{
		etherscan: etherscan,
		logger:    logger.Named("BalanceService"),
	}
}

// ReconstructHoldings implements the BalanceService interface. For every
// transfer event involving the address it adds the raw value when the address
// is the receiver and subtracts it when the address is the sender; addition is
// commutative, so the result does not depend on event order. Only holdings
// with a strictly positive derived balance are kept.
func (s *balanceServiceImpl) ReconstructHoldings(ctx context.Context, address string) []entity.TokenHolding {
	events, err := s.etherscan.GetTokenTransfers(ctx, address)
	if err != nil {
		s.logger.Error("Failed to fetch transfer events, degrading to empty holdings",
			zap.String("address", address), zap.Error(err))
		metrics.UpstreamErrorsTotal.WithLabelValues("etherscan").Inc()
		return []entity.TokenHolding{}
	}

	accumulators := make(map[string]*tokenAccumulator)
	for _, event := range events {
		acc, ok := accumulators[event.Contract]
		if !ok {
			acc = &tokenAccumulator{
				name:     event.TokenName,
				symbol:   event.TokenSymbol,
				decimals: event.TokenDecimal,
				balance:  new(big.Int),
			}
			accumulators[event.Contract] = acc
		}
		if strings.EqualFold(event.To, address) {
			acc.balance.Add(acc.balance, event.Value)
		}
		if strings.EqualFold(event.From, address) {
			acc.balance.Sub(acc.balance, event.Value)
		}
	}

	holdings := make([]entity.TokenHolding, 0, len(accumulators))
	for contract, acc := range accumulators {
		if acc.balance.Sign() <= 0 {
			continue
		}
		holdings = append(holdings, entity.TokenHolding{
			Contract:   contract,
			Name:       acc.name,
			Symbol:     acc.symbol,
			RawBalance: acc.balance,
			Decimals:   acc.decimals,
			Balance:    utils.RawToDecimal(acc.balance, acc.decimals),
		})
	}

	s.logger.Debug("Reconstructed holdings",
		zap.String("address", address),
		zap.Int("eventCount", len(events)),
		zap.Int("holdingCount", len(holdings)))
	return holdings
}

// GetNativeBalance implements the BalanceService interface. Errors degrade to
// a zero balance.
func (s *balanceServiceImpl) GetNativeBalance(ctx context.Context, address string) float64 {
	wei, err := s.etherscan.GetNativeBalance(ctx, address)
	if err != nil {
		s.logger.Error("Failed to fetch native balance, degrading to zero",
			zap.String("address", address), zap.Error(err))
		metrics.UpstreamErrorsTotal.WithLabelValues("etherscan").Inc()
		return 0
	}
	return utils.RawToDecimal(wei, 18)
}
