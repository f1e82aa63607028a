package service

import (
	"context"
	"math/big"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/params"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"walletguard/internal/client"
	"walletguard/internal/entity"
	"walletguard/internal/metrics"
	"walletguard/internal/pkg/utils"
)

const (
	defaultTxLimit = 50
	maxTxLimit     = 100
)

// TransactionService assembles the unified, time-ordered transaction feed for
// an address from native and token transfer history.
type TransactionService interface {
	GetTransactions(ctx context.Context, address string, limit int, filter string) *entity.TransactionFeed
}

// transactionServiceImpl is the implementation of TransactionService.
type transactionServiceImpl struct {
	etherscan client.EtherscanClient
	logger    *zap.Logger
}

// NewTransactionService creates a new instance of transactionServiceImpl.
func NewTransactionService(etherscan client.EtherscanClient, logger *zap.Logger) TransactionService {
	return &transactionServiceImpl{
		etherscan: etherscan,
		logger:    logger.Named("TransactionService"),
	}
}

// GetTransactions implements the TransactionService interface. Up to limit
// records are fetched from each selected source, merged, sorted newest first
// and truncated to limit; the send/receive counts cover the truncated set,
// not the pre-truncation union.
func (s *transactionServiceImpl) GetTransactions(ctx context.Context, address string, limit int, filter string) *entity.TransactionFeed {
	if limit <= 0 {
		limit = defaultTxLimit
	}
	if limit > maxTxLimit {
		limit = maxTxLimit
	}
	if filter == "" {
		filter = entity.TxFilterAll
	}

	records := make([]entity.TransactionRecord, 0, 2*limit)
	if filter == entity.TxFilterAll || filter == entity.TxFilterNative {
		records = append(records, s.nativeRecords(ctx, address, limit)...)
	}
	if filter == entity.TxFilterAll || filter == entity.TxFilterTokens {
		records = append(records, s.tokenRecords(ctx, address, limit)...)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})
	if len(records) > limit {
		records = records[:limit]
	}

	sent := lo.CountBy(records, func(r entity.TransactionRecord) bool {
		return r.Type == entity.TxDirectionSend
	})

	return &entity.TransactionFeed{
		Address:       address,
		Transactions:  records,
		TotalCount:    len(records),
		SentCount:     sent,
		ReceivedCount: len(records) - sent,
		Limit:         limit,
	}
}

// nativeRecords converts normal transactions; amounts in ETH, gas price in
// Gwei. Upstream failure degrades to no records.
func (s *transactionServiceImpl) nativeRecords(ctx context.Context, address string, limit int) []entity.TransactionRecord {
	events, err := s.etherscan.GetNativeTransactions(ctx, address, limit)
	if err != nil {
		s.logger.Error("Failed to fetch native transactions, degrading to empty",
			zap.String("address", address), zap.Error(err))
		metrics.UpstreamErrorsTotal.WithLabelValues("etherscan").Inc()
		return nil
	}

	records := make([]entity.TransactionRecord, 0, len(events))
	for _, event := range events {
		var gasPriceGwei float64
		if event.GasPriceWei != nil {
			gasPriceGwei, _ = new(big.Float).Quo(
				new(big.Float).SetInt(event.GasPriceWei),
				big.NewFloat(params.GWei),
			).Float64()
		}
		records = append(records, entity.TransactionRecord{
			Hash:         event.Hash,
			Type:         directionFor(address, event.To),
			From:         event.From,
			To:           event.To,
			Value:        utils.RoundAmount(utils.RawToDecimal(event.Value, 18)),
			Timestamp:    event.Timestamp,
			BlockNumber:  event.BlockNumber,
			Asset:        "ETH",
			TokenSymbol:  "ETH",
			GasUsed:      event.GasUsed,
			GasPriceGwei: gasPriceGwei,
			IsError:      event.IsError,
		})
	}
	return records
}

// tokenRecords converts token transfer events; amounts are adjusted by each
// record's own decimal exponent.
func (s *transactionServiceImpl) tokenRecords(ctx context.Context, address string, limit int) []entity.TransactionRecord {
	events, err := s.etherscan.GetTokenTransfersPage(ctx, address, limit)
	if err != nil {
		s.logger.Error("Failed to fetch token transactions, degrading to empty",
			zap.String("address", address), zap.Error(err))
		metrics.UpstreamErrorsTotal.WithLabelValues("etherscan").Inc()
		return nil
	}

	records := make([]entity.TransactionRecord, 0, len(events))
	for _, event := range events {
		records = append(records, entity.TransactionRecord{
			Hash:        event.Hash,
			Type:        directionFor(address, event.To),
			From:        event.From,
			To:          event.To,
			Value:       utils.RoundAmount(utils.RawToDecimal(event.Value, event.TokenDecimal)),
			Timestamp:   event.Timestamp,
			BlockNumber: event.BlockNumber,
			Asset:       event.TokenSymbol,
			TokenSymbol: event.TokenSymbol,
			TokenName:   event.TokenName,
			Contract:    event.Contract,
		})
	}
	return records
}

func directionFor(queried, to string) string {
	if strings.EqualFold(to, queried) {
		return entity.TxDirectionReceive
	}
	return entity.TxDirectionSend
}
