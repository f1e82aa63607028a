package utils

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Display precision applied at response boundaries only. Internal accumulation
// always works on unrounded values.
const (
	AmountDisplayPlaces = 6
	USDDisplayPlaces    = 2
)

// RawToDecimal converts an unscaled token amount to its decimal form,
// amount / 10^decimals. A nil amount converts to 0.
func RawToDecimal(amount *big.Int, decimals uint8) float64 {
	if amount == nil {
		return 0
	}
	amountFloat := new(big.Float).SetInt(amount)
	divisor := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	value, _ := new(big.Float).Quo(amountFloat, divisor).Float64()
	return value
}

// RoundAmount rounds a token quantity to the display precision using banker's
// rounding (round-half-even).
func RoundAmount(v float64) float64 {
	return roundBank(v, AmountDisplayPlaces)
}

// RoundUSD rounds a USD value to the display precision using banker's rounding.
func RoundUSD(v float64) float64 {
	return roundBank(v, USDDisplayPlaces)
}

func roundBank(v float64, places int32) float64 {
	out, _ := decimal.NewFromFloat(v).RoundBank(places).Float64()
	return out
}
