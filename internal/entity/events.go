package entity

import "math/big"

// TokenTransferEvent is one ERC-20 transfer from the indexer's event history,
// already parsed out of its string-typed wire form.
type TokenTransferEvent struct {
	Hash         string
	BlockNumber  uint64
	Timestamp    int64
	From         string
	To           string
	Contract     string
	Value        *big.Int
	TokenName    string
	TokenSymbol  string
	TokenDecimal uint8
}

// NativeTxEvent is one normal (native currency) transaction from the indexer.
type NativeTxEvent struct {
	Hash        string
	BlockNumber uint64
	Timestamp   int64
	From        string
	To          string
	Value       *big.Int
	GasUsed     uint64
	GasPriceWei *big.Int
	IsError     bool
}

// HoneypotReport is the outcome of a honeypot/liquidity simulation for a
// token contract.
type HoneypotReport struct {
	IsHoneypot     bool
	BuyTaxPercent  float64
	SellTaxPercent float64
	TradingEnabled bool
}
