package entity

// Transaction direction relative to the queried address.
const (
	TxDirectionSend    = "send"
	TxDirectionReceive = "receive"
)

// Transaction feed type filters.
const (
	TxFilterAll    = "all"
	TxFilterNative = "eth"
	TxFilterTokens = "tokens"
)

// TransactionRecord is one normalized entry of the unified transaction feed.
// Amounts are decimal-adjusted: wei/1e18 for native transfers, raw/10^decimals
// for token transfers. Gas fields and the error flag are only set on native
// records; token metadata only on token records.
type TransactionRecord struct {
	Hash         string  `json:"hash"`
	Type         string  `json:"type"`
	From         string  `json:"from"`
	To           string  `json:"to"`
	Value        float64 `json:"value"`
	Timestamp    int64   `json:"timestamp"`
	BlockNumber  uint64  `json:"block_number"`
	Asset        string  `json:"asset"`
	TokenSymbol  string  `json:"token_symbol"`
	TokenName    string  `json:"token_name,omitempty"`
	Contract     string  `json:"contract_address,omitempty"`
	GasUsed      uint64  `json:"gas_used,omitempty"`
	GasPriceGwei float64 `json:"gas_price,omitempty"`
	IsError      bool    `json:"is_error,omitempty"`
}

// TransactionFeed is the merged, time-ordered transaction history for an
// address. Sent/received counts are computed over the truncated record set.
type TransactionFeed struct {
	Address       string              `json:"address"`
	Transactions  []TransactionRecord `json:"transactions"`
	TotalCount    int                 `json:"total_count"`
	SentCount     int                 `json:"sent_count"`
	ReceivedCount int                 `json:"received_count"`
	Limit         int                 `json:"limit"`
}
