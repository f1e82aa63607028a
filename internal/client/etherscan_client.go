package client

import (
	"context"
	"fmt"
	"math/big"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"walletguard/internal/config"
	"walletguard/internal/entity"
)

// EtherscanClient is the address-indexed event-history collaborator: native
// balances, transfer-event lists and normal transaction lists, paginated and
// time-sortable. Every method returns an error on timeout, non-success status
// or unexpected schema; callers degrade to the empty value.
type EtherscanClient interface {
	GetNativeBalance(ctx context.Context, address string) (*big.Int, error)
	GetTokenTransfers(ctx context.Context, address string) ([]entity.TokenTransferEvent, error)
	GetTokenTransfersPage(ctx context.Context, address string, limit int) ([]entity.TokenTransferEvent, error)
	GetContractTransfers(ctx context.Context, contract string, limit int) ([]entity.TokenTransferEvent, error)
	GetNativeTransactions(ctx context.Context, address string, limit int) ([]entity.NativeTxEvent, error)
	GetFirstTransaction(ctx context.Context, address string) (*entity.NativeTxEvent, error)
}

// etherscanClientImpl is the implementation of EtherscanClient over the
// Etherscan V2 HTTP API.
type etherscanClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	chainID string
	timeout time.Duration
	logger  *zap.Logger
}

// etherscanEnvelope is the common V2 response wrapper. Result is either a list
// or, on API-level errors, a plain string.
type etherscanEnvelope struct {
	Status  string              `json:"status"`
	Message string              `json:"message"`
	Result  jsoniter.RawMessage `json:"result"`
}

// Etherscan serializes every field as a string.
type tokenTxRecord struct {
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	ContractAddress string `json:"contractAddress"`
	Value           string `json:"value"`
	TokenName       string `json:"tokenName"`
	TokenSymbol     string `json:"tokenSymbol"`
	TokenDecimal    string `json:"tokenDecimal"`
}

type normalTxRecord struct {
	BlockNumber string `json:"blockNumber"`
	TimeStamp   string `json:"timeStamp"`
	Hash        string `json:"hash"`
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	GasUsed     string `json:"gasUsed"`
	GasPrice    string `json:"gasPrice"`
	IsError     string `json:"isError"`
}

// NewEtherscanClient creates a new instance of etherscanClientImpl.
func NewEtherscanClient(cfg config.EtherscanConfig, logger *zap.Logger) EtherscanClient {
	return &etherscanClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.ApiKey,
		chainID: cfg.ChainID,
		timeout: time.Duration(cfg.RequestTimeoutMillis) * time.Millisecond,
		logger:  logger.Named("EtherscanClient"),
	}
}

func (c *etherscanClientImpl) buildURL(action string, params url.Values) string {
	params.Set("chainid", c.chainID)
	params.Set("module", "account")
	params.Set("action", action)
	params.Set("apikey", c.apiKey)
	return c.baseURL + "?" + params.Encode()
}

// call performs one Etherscan request and unwraps the envelope. A "No
// transactions found" reply is not an error; it yields an empty result.
func (c *etherscanClientImpl) call(ctx context.Context, action string, params url.Values) (jsoniter.RawMessage, error) {
	requestURL := c.buildURL(action, params)

	var envelope etherscanEnvelope
	if err := getJSON(ctx, c.client, requestURL, c.timeout, &envelope); err != nil {
		c.logger.Error("Etherscan request failed", zap.String("action", action), zap.Error(err))
		return nil, err
	}

	if envelope.Status != "1" {
		if envelope.Message == "No transactions found" {
			return jsoniter.RawMessage("[]"), nil
		}
		var apiError string
		_ = json.Unmarshal(envelope.Result, &apiError)
		c.logger.Warn("Etherscan API returned error status",
			zap.String("action", action),
			zap.String("message", envelope.Message),
			zap.String("result", apiError))
		return nil, fmt.Errorf("etherscan %s failed: %s: %s", action, envelope.Message, apiError)
	}

	return envelope.Result, nil
}

// GetNativeBalance implements the EtherscanClient interface.
func (c *etherscanClientImpl) GetNativeBalance(ctx context.Context, address string) (*big.Int, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("tag", "latest")

	result, err := c.call(ctx, "balance", params)
	if err != nil {
		return nil, err
	}

	var balanceStr string
	if err := json.Unmarshal(result, &balanceStr); err != nil {
		return nil, fmt.Errorf("unexpected balance result schema: %w", err)
	}
	balance, ok := new(big.Int).SetString(balanceStr, 10)
	if !ok {
		return nil, fmt.Errorf("unparseable balance value %q", balanceStr)
	}
	return balance, nil
}

// GetTokenTransfers implements the EtherscanClient interface. It returns the
// full transfer-event history involving the address, newest first, capped only
// by the upstream's own limit.
func (c *etherscanClientImpl) GetTokenTransfers(ctx context.Context, address string) ([]entity.TokenTransferEvent, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("startblock", "0")
	params.Set("endblock", "99999999")
	params.Set("sort", "desc")

	result, err := c.call(ctx, "tokentx", params)
	if err != nil {
		return nil, err
	}
	return c.parseTokenTransfers(result)
}

// GetTokenTransfersPage implements the EtherscanClient interface. It returns
// the most recent transfer events involving the address, capped at limit.
func (c *etherscanClientImpl) GetTokenTransfersPage(ctx context.Context, address string, limit int) ([]entity.TokenTransferEvent, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("startblock", "0")
	params.Set("endblock", "99999999")
	params.Set("page", "1")
	params.Set("offset", strconv.Itoa(limit))
	params.Set("sort", "desc")

	result, err := c.call(ctx, "tokentx", params)
	if err != nil {
		return nil, err
	}
	return c.parseTokenTransfers(result)
}

// GetContractTransfers implements the EtherscanClient interface. It returns the
// most recent transfer events of a specific token contract, any party.
func (c *etherscanClientImpl) GetContractTransfers(ctx context.Context, contract string, limit int) ([]entity.TokenTransferEvent, error) {
	params := url.Values{}
	params.Set("contractaddress", contract)
	params.Set("page", "1")
	params.Set("offset", strconv.Itoa(limit))
	params.Set("sort", "desc")

	result, err := c.call(ctx, "tokentx", params)
	if err != nil {
		return nil, err
	}
	return c.parseTokenTransfers(result)
}

func (c *etherscanClientImpl) parseTokenTransfers(result jsoniter.RawMessage) ([]entity.TokenTransferEvent, error) {
	var records []tokenTxRecord
	if err := json.Unmarshal(result, &records); err != nil {
		return nil, fmt.Errorf("unexpected tokentx result schema: %w", err)
	}

	events := make([]entity.TokenTransferEvent, 0, len(records))
	for _, rec := range records {
		value, ok := new(big.Int).SetString(rec.Value, 10)
		if !ok {
			c.logger.Warn("Skipping transfer event with unparseable value",
				zap.String("hash", rec.Hash), zap.String("value", rec.Value))
			continue
		}
		decimals, err := strconv.ParseUint(rec.TokenDecimal, 10, 8)
		if err != nil {
			decimals = 18
		}
		blockNumber, _ := strconv.ParseUint(rec.BlockNumber, 10, 64)
		timestamp, _ := strconv.ParseInt(rec.TimeStamp, 10, 64)

		events = append(events, entity.TokenTransferEvent{
			Hash:         rec.Hash,
			BlockNumber:  blockNumber,
			Timestamp:    timestamp,
			From:         rec.From,
			To:           rec.To,
			Contract:     strings.ToLower(rec.ContractAddress),
			Value:        value,
			TokenName:    rec.TokenName,
			TokenSymbol:  rec.TokenSymbol,
			TokenDecimal: uint8(decimals),
		})
	}
	return events, nil
}

// GetNativeTransactions implements the EtherscanClient interface.
func (c *etherscanClientImpl) GetNativeTransactions(ctx context.Context, address string, limit int) ([]entity.NativeTxEvent, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("startblock", "0")
	params.Set("endblock", "99999999")
	params.Set("page", "1")
	params.Set("offset", strconv.Itoa(limit))
	params.Set("sort", "desc")

	result, err := c.call(ctx, "txlist", params)
	if err != nil {
		return nil, err
	}
	return c.parseNativeTransactions(result)
}

// GetFirstTransaction implements the EtherscanClient interface. It returns the
// oldest normal transaction involving the address, or nil when the address has
// no history. Used to estimate token contract age.
func (c *etherscanClientImpl) GetFirstTransaction(ctx context.Context, address string) (*entity.NativeTxEvent, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("startblock", "0")
	params.Set("endblock", "99999999")
	params.Set("page", "1")
	params.Set("offset", "1")
	params.Set("sort", "asc")

	result, err := c.call(ctx, "txlist", params)
	if err != nil {
		return nil, err
	}
	events, err := c.parseNativeTransactions(result)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &events[0], nil
}

func (c *etherscanClientImpl) parseNativeTransactions(result jsoniter.RawMessage) ([]entity.NativeTxEvent, error) {
	var records []normalTxRecord
	if err := json.Unmarshal(result, &records); err != nil {
		return nil, fmt.Errorf("unexpected txlist result schema: %w", err)
	}

	events := make([]entity.NativeTxEvent, 0, len(records))
	for _, rec := range records {
		value, ok := new(big.Int).SetString(rec.Value, 10)
		if !ok {
			value = new(big.Int)
		}
		gasPrice, ok := new(big.Int).SetString(rec.GasPrice, 10)
		if !ok {
			gasPrice = new(big.Int)
		}
		blockNumber, _ := strconv.ParseUint(rec.BlockNumber, 10, 64)
		timestamp, _ := strconv.ParseInt(rec.TimeStamp, 10, 64)
		gasUsed, _ := strconv.ParseUint(rec.GasUsed, 10, 64)

		events = append(events, entity.NativeTxEvent{
			Hash:        rec.Hash,
			BlockNumber: blockNumber,
			Timestamp:   timestamp,
			From:        rec.From,
			To:          rec.To,
			Value:       value,
			GasUsed:     gasUsed,
			GasPriceWei: gasPrice,
			IsError:     rec.IsError == "1",
		})
	}
	return events, nil
}
