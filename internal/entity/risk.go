package entity

// RiskLevel is the step-function bucket of a normalized wallet risk score.
type RiskLevel string

const (
	RiskLevelSafe     RiskLevel = "SAFE"
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelMedium   RiskLevel = "MEDIUM"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelCritical RiskLevel = "CRITICAL"
)

// RiskLevelForScore maps a normalized 0-100 wallet score onto a RiskLevel.
func RiskLevelForScore(score int) RiskLevel {
	switch {
	case score >= 70:
		return RiskLevelCritical
	case score >= 50:
		return RiskLevelHigh
	case score >= 30:
		return RiskLevelMedium
	case score >= 10:
		return RiskLevelLow
	default:
		return RiskLevelSafe
	}
}

// TokenRiskProfile is the per-token outcome of the heuristic risk checks.
// RiskScore is an unbounded sum of weighted signal points; normalization
// against the per-token allocation happens at the wallet level.
type TokenRiskProfile struct {
	Name      string   `json:"name"`
	Symbol    string   `json:"symbol"`
	Contract  string   `json:"contract"`
	Balance   float64  `json:"balance"`
	RiskFlags []string `json:"risk_flags"`
	RiskScore int      `json:"risk_score"`
}

// WalletRiskReport is the wallet-level aggregation of per-token risk profiles.
// RiskyTokens only contains tokens that raised at least one flag.
type WalletRiskReport struct {
	Address          string             `json:"address"`
	RiskScore        int                `json:"risk_score"`
	RiskLevel        RiskLevel          `json:"risk_level"`
	TokensAnalyzed   int                `json:"tokens_analyzed"`
	RiskyTokensCount int                `json:"risky_tokens_count"`
	RiskyTokens      []TokenRiskProfile `json:"risky_tokens"`
	Recommendations  []string           `json:"recommendations"`
	Message          string             `json:"message,omitempty"`
}
