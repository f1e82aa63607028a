package entity

import "math/big"

// TokenHolding represents a reconstructed fungible token position for a wallet.
// RawBalance is the unscaled on-chain amount; Balance is RawBalance / 10^Decimals,
// kept unrounded so downstream valuation does not compound rounding error.
type TokenHolding struct {
	Contract   string   `json:"contract"`
	Name       string   `json:"name"`
	Symbol     string   `json:"symbol"`
	RawBalance *big.Int `json:"-"`
	Decimals   uint8    `json:"-"`
	Balance    float64  `json:"balance"`
}

// ValuedHolding is a TokenHolding priced in USD. ValueUSD is zero when the
// price could not be resolved, never an error.
type ValuedHolding struct {
	TokenHolding
	PriceUSD float64 `json:"price_usd"`
	ValueUSD float64 `json:"value_usd"`
}
