package entity

import "time"

// Price source tags recorded on quotes.
const (
	PriceSourceStablecoin = "stablecoin"
	PriceSourceCache      = "cache"
	PriceSourceCoinGecko  = "coingecko"
	PriceSourceOneInch    = "1inch"
	PriceSourceFallback   = "fallback"
)

// PriceQuote is a resolved USD unit price for a token contract (or the native
// currency). A zero price is a valid "unknown" quote and is cached as such,
// distinct from a contract that was never queried.
type PriceQuote struct {
	Contract  string    `json:"contract"`
	PriceUSD  float64   `json:"price_usd"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}
