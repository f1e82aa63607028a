package entity

// PortfolioSummary is the aggregated, display-rounded answer to "what does this
// address hold and what is it worth".
type PortfolioSummary struct {
	Address                string          `json:"address"`
	EthBalance             float64         `json:"eth_balance"`
	EthPriceUSD            float64         `json:"eth_price_usd"`
	EthValueUSD            float64         `json:"eth_value_usd"`
	TokenHoldings          []ValuedHolding `json:"token_holdings"`
	TotalTokenValueUSD     float64         `json:"total_token_value_usd"`
	TotalPortfolioValueUSD float64         `json:"total_portfolio_value_usd"`
	HoldingsCount          int             `json:"holdings_count"`
}
