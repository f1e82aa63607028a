package service

import (
	"context"
	"math/big"
	"testing"

	"go.uber.org/zap"

	"walletguard/internal/entity"
)

func nativeEvent(hash string, timestamp int64, from, to string, valueWei int64) entity.NativeTxEvent {
	return entity.NativeTxEvent{
		Hash:        hash,
		Timestamp:   timestamp,
		From:        from,
		To:          to,
		Value:       big.NewInt(valueWei),
		GasUsed:     21000,
		GasPriceWei: big.NewInt(20_000_000_000), // 20 Gwei
	}
}

func tokenEvent(hash string, timestamp int64, from, to string, value int64) entity.TokenTransferEvent {
	ev := transferEvent(testContract, "ABC", from, to, value, 18)
	ev.Hash = hash
	ev.Timestamp = timestamp
	return ev
}

func TestGetTransactionsMergesAndSortsNewestFirst(t *testing.T) {
	etherscan := newFakeEtherscan()
	etherscan.nativeTxFn = func(string, int) ([]entity.NativeTxEvent, error) {
		return []entity.NativeTxEvent{
			nativeEvent("0xn1", 100, otherWallet, testWallet, 1e18),
			nativeEvent("0xn2", 300, testWallet, otherWallet, 2e18),
		}, nil
	}
	etherscan.tokenTransfersPageFn = func(string, int) ([]entity.TokenTransferEvent, error) {
		return []entity.TokenTransferEvent{
			tokenEvent("0xt1", 200, otherWallet, testWallet, 5e17),
		}, nil
	}

	svc := NewTransactionService(etherscan, zap.NewNop())
	feed := svc.GetTransactions(context.Background(), testWallet, 50, entity.TxFilterAll)

	if feed.TotalCount != 3 {
		t.Fatalf("expected 3 merged records, got %d", feed.TotalCount)
	}
	gotOrder := []string{feed.Transactions[0].Hash, feed.Transactions[1].Hash, feed.Transactions[2].Hash}
	wantOrder := []string{"0xn2", "0xt1", "0xn1"}
	for i := range wantOrder {
		if gotOrder[i] != wantOrder[i] {
			t.Errorf("position %d: expected %s, got %s", i, wantOrder[i], gotOrder[i])
		}
	}

	if feed.SentCount != 1 || feed.ReceivedCount != 2 {
		t.Errorf("expected 1 sent / 2 received, got %d / %d", feed.SentCount, feed.ReceivedCount)
	}

	newest := feed.Transactions[0]
	if newest.Type != entity.TxDirectionSend || newest.Value != 2.0 || newest.Asset != "ETH" {
		t.Errorf("unexpected native record: %+v", newest)
	}
	if newest.GasPriceGwei != 20 {
		t.Errorf("expected gas price 20 Gwei, got %v", newest.GasPriceGwei)
	}

	tokenRec := feed.Transactions[1]
	if tokenRec.Value != 0.5 || tokenRec.TokenSymbol != "ABC" || tokenRec.Contract != testContract {
		t.Errorf("unexpected token record: %+v", tokenRec)
	}
}

func TestGetTransactionsTruncatesToLimit(t *testing.T) {
	etherscan := newFakeEtherscan()
	etherscan.nativeTxFn = func(_ string, limit int) ([]entity.NativeTxEvent, error) {
		events := make([]entity.NativeTxEvent, limit)
		for i := range events {
			// Newer native transactions so sends dominate after truncation.
			events[i] = nativeEvent("0xn", int64(1000+i), testWallet, otherWallet, 1e18)
		}
		return events, nil
	}
	etherscan.tokenTransfersPageFn = func(_ string, limit int) ([]entity.TokenTransferEvent, error) {
		events := make([]entity.TokenTransferEvent, limit)
		for i := range events {
			events[i] = tokenEvent("0xt", int64(i), otherWallet, testWallet, 1e18)
		}
		return events, nil
	}

	svc := NewTransactionService(etherscan, zap.NewNop())
	feed := svc.GetTransactions(context.Background(), testWallet, 10, entity.TxFilterAll)

	if feed.TotalCount != 10 || len(feed.Transactions) != 10 {
		t.Fatalf("expected feed truncated to 10, got %d", feed.TotalCount)
	}
	// All ten survivors are the newer native sends; counts must reflect the
	// truncated set, not the 20-record union.
	if feed.SentCount != 10 || feed.ReceivedCount != 0 {
		t.Errorf("counts must cover the truncated set: sent=%d received=%d",
			feed.SentCount, feed.ReceivedCount)
	}
}

func TestGetTransactionsLimitBounds(t *testing.T) {
	cases := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{"zero becomes default", 0, 50},
		{"negative becomes default", -5, 50},
		{"above cap is clamped", 500, 100},
		{"in range passes through", 25, 25},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewTransactionService(newFakeEtherscan(), zap.NewNop())
			feed := svc.GetTransactions(context.Background(), testWallet, tc.limit, entity.TxFilterAll)
			if feed.Limit != tc.wantLimit {
				t.Errorf("expected effective limit %d, got %d", tc.wantLimit, feed.Limit)
			}
		})
	}
}

func TestGetTransactionsFilterSelectsSources(t *testing.T) {
	etherscan := newFakeEtherscan()
	svc := NewTransactionService(etherscan, zap.NewNop())

	svc.GetTransactions(context.Background(), testWallet, 10, entity.TxFilterNative)
	if etherscan.calls["GetNativeTransactions"] != 1 || etherscan.calls["GetTokenTransfersPage"] != 0 {
		t.Errorf("eth filter must only hit the native source: %v", etherscan.calls)
	}

	etherscan = newFakeEtherscan()
	svc = NewTransactionService(etherscan, zap.NewNop())
	svc.GetTransactions(context.Background(), testWallet, 10, entity.TxFilterTokens)
	if etherscan.calls["GetNativeTransactions"] != 0 || etherscan.calls["GetTokenTransfersPage"] != 1 {
		t.Errorf("tokens filter must only hit the token source: %v", etherscan.calls)
	}
}

func TestGetTransactionsDegradesPerSource(t *testing.T) {
	etherscan := newFakeEtherscan()
	etherscan.nativeTxFn = func(string, int) ([]entity.NativeTxEvent, error) {
		return nil, context.DeadlineExceeded
	}
	etherscan.tokenTransfersPageFn = func(string, int) ([]entity.TokenTransferEvent, error) {
		return []entity.TokenTransferEvent{
			tokenEvent("0xt1", 100, otherWallet, testWallet, 1e18),
		}, nil
	}

	svc := NewTransactionService(etherscan, zap.NewNop())
	feed := svc.GetTransactions(context.Background(), testWallet, 50, entity.TxFilterAll)

	if feed.TotalCount != 1 || feed.Transactions[0].Hash != "0xt1" {
		t.Errorf("expected the surviving token record only, got %+v", feed.Transactions)
	}
}
