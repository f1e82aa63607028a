package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"walletguard/internal/client"
	"walletguard/internal/config"
	"walletguard/internal/entity"
	"walletguard/internal/metrics"
	"walletguard/internal/pkg/utils"
)

// Hand-tuned scoring policy. Weights are additive per independent signal; a
// token's score is normalized at the wallet level against the fixed per-token
// allocation, so individual signals are never clamped here.
const (
	veryNewTokenMaxAgeDays = 7
	newTokenMaxAgeDays     = 30
	veryNewTokenPoints     = 30
	newTokenPoints         = 15

	honeypotPoints        = 50
	highSellTaxPoints     = 20
	tradingDisabledPoints = 25
	highSellTaxThreshold  = 10.0

	veryFewHoldersThreshold = 10
	lowHoldersThreshold     = 50
	veryFewHoldersPoints    = 25
	lowHoldersPoints        = 10
	holderSampleSize        = 100

	noMarketPricePoints = 15

	pointsPerAnalyzedToken = 100
)

// Tokens whose missing market price is expected rather than suspicious.
var noPriceAllowList = map[string]struct{}{
	"USDT": {},
	"USDC": {},
	"DAI":  {},
}

// RiskService profiles individual token contracts and aggregates per-token
// scores into a wallet-level risk report.
type RiskService interface {
	AnalyzeWallet(ctx context.Context, address string) (*entity.WalletRiskReport, error)
	ProfileToken(ctx context.Context, holding entity.ValuedHolding) entity.TokenRiskProfile
}

// riskServiceImpl is the implementation of RiskService.
type riskServiceImpl struct {
	portfolioSvc PortfolioService
	etherscan    client.EtherscanClient
	honeypot     client.HoneypotClient
	limiter      *rate.Limiter
	maxTokens    int
	now          func() time.Time
	logger       *zap.Logger
}

// NewRiskService creates a new instance of riskServiceImpl. The limiter paces
// the upstream-backed signal checks; with the default configuration a full
// ten-token analysis takes several seconds, which is the documented latency
// expectation for the risk endpoint.
func NewRiskService(
	portfolioSvc PortfolioService,
	etherscan client.EtherscanClient,
	honeypot client.HoneypotClient,
	cfg config.RiskServiceConfig,
	logger *zap.Logger,
) RiskService {
	return &riskServiceImpl{
		portfolioSvc: portfolioSvc,
		etherscan:    etherscan,
		honeypot:     honeypot,
		limiter:      rate.NewLimiter(rate.Limit(cfg.ChecksPerSecond), 1),
		maxTokens:    cfg.MaxTokensAnalyzed,
		now:          time.Now,
		logger:       logger.Named("RiskService"),
	}
}

// AnalyzeWallet implements the RiskService interface. At most the top
// maxTokens holdings by USD value are profiled; each analyzed token allocates
// a fixed number of possible points regardless of whether any flag fired, and
// the wallet score is the achieved share of that allocation.
func (s *riskServiceImpl) AnalyzeWallet(ctx context.Context, address string) (*entity.WalletRiskReport, error) {
	valued := s.portfolioSvc.ValuedHoldings(ctx, address)
	if len(valued) == 0 {
		return &entity.WalletRiskReport{
			Address:         address,
			RiskScore:       0,
			RiskLevel:       entity.RiskLevelSafe,
			RiskyTokens:     []entity.TokenRiskProfile{},
			Recommendations: []string{},
			Message:         "No token holdings found",
		}, nil
	}

	toAnalyze := valued
	if len(toAnalyze) > s.maxTokens {
		toAnalyze = toAnalyze[:s.maxTokens]
	}

	var achievedPoints, possiblePoints int
	riskyTokens := make([]entity.TokenRiskProfile, 0, len(toAnalyze))
	for _, holding := range toAnalyze {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("risk analysis aborted for %s: %w", address, err)
		}

		profile := s.ProfileToken(ctx, holding)
		possiblePoints += pointsPerAnalyzedToken
		if len(profile.RiskFlags) > 0 {
			achievedPoints += profile.RiskScore
			riskyTokens = append(riskyTokens, profile)
		}
	}

	score := 0
	if possiblePoints > 0 {
		score = int(math.Round(100 * float64(achievedPoints) / float64(possiblePoints)))
	}
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	sort.SliceStable(riskyTokens, func(i, j int) bool {
		return riskyTokens[i].RiskScore > riskyTokens[j].RiskScore
	})

	level := entity.RiskLevelForScore(score)
	metrics.RiskAnalysesTotal.Inc()
	s.logger.Info("Risk analysis complete",
		zap.String("address", address),
		zap.Int("score", score),
		zap.String("level", string(level)),
		zap.Int("tokensAnalyzed", len(toAnalyze)),
		zap.Int("riskyTokens", len(riskyTokens)))

	return &entity.WalletRiskReport{
		Address:          address,
		RiskScore:        score,
		RiskLevel:        level,
		TokensAnalyzed:   len(toAnalyze),
		RiskyTokensCount: len(riskyTokens),
		RiskyTokens:      riskyTokens,
		Recommendations:  buildRecommendations(level, riskyTokens),
	}, nil
}

// ProfileToken implements the RiskService interface. The four signal checks
// are independent and additive; their order does not affect the sum. A check
// whose collaborator is unavailable contributes nothing rather than failing
// the profile.
func (s *riskServiceImpl) ProfileToken(ctx context.Context, holding entity.ValuedHolding) entity.TokenRiskProfile {
	profile := entity.TokenRiskProfile{
		Name:      holding.Name,
		Symbol:    holding.Symbol,
		Contract:  holding.Contract,
		Balance:   utils.RoundAmount(holding.Balance),
		RiskFlags: []string{},
	}

	s.checkTokenAge(ctx, &profile)
	s.checkHoneypot(ctx, &profile)
	s.checkHolderActivity(ctx, &profile)
	s.checkMarketPrice(&profile, holding)

	return profile
}

// checkTokenAge derives the contract's age from its first-ever transaction.
// Unknown age (no history, or the indexer is unavailable) adds nothing.
func (s *riskServiceImpl) checkTokenAge(ctx context.Context, profile *entity.TokenRiskProfile) {
	if err := s.limiter.Wait(ctx); err != nil {
		return
	}

	firstTx, err := s.etherscan.GetFirstTransaction(ctx, profile.Contract)
	if err != nil {
		s.logger.Warn("Token age check unavailable",
			zap.String("contract", profile.Contract), zap.Error(err))
		metrics.UpstreamErrorsTotal.WithLabelValues("etherscan").Inc()
		return
	}
	if firstTx == nil {
		return
	}

	ageDays := s.now().Sub(time.Unix(firstTx.Timestamp, 0)).Hours() / 24
	switch {
	case ageDays < veryNewTokenMaxAgeDays:
		profile.RiskFlags = append(profile.RiskFlags,
			fmt.Sprintf("Very new token (only %d days old)", int(ageDays)))
		profile.RiskScore += veryNewTokenPoints
	case ageDays < newTokenMaxAgeDays:
		profile.RiskFlags = append(profile.RiskFlags,
			fmt.Sprintf("New token (%d days old)", int(ageDays)))
		profile.RiskScore += newTokenPoints
	}
}

// checkHoneypot runs the external sell simulation. All applicable signals
// fire; an unreachable simulation service skips the whole check silently.
func (s *riskServiceImpl) checkHoneypot(ctx context.Context, profile *entity.TokenRiskProfile) {
	if err := s.limiter.Wait(ctx); err != nil {
		return
	}

	report, err := s.honeypot.CheckToken(ctx, profile.Contract)
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues("honeypot").Inc()
		return
	}

	if report.IsHoneypot {
		profile.RiskFlags = append(profile.RiskFlags, "HONEYPOT DETECTED - Cannot sell!")
		profile.RiskScore += honeypotPoints
		metrics.HoneypotsDetectedTotal.Inc()
	}
	if report.SellTaxPercent > highSellTaxThreshold {
		profile.RiskFlags = append(profile.RiskFlags,
			fmt.Sprintf("High sell tax: %.1f%%", report.SellTaxPercent))
		profile.RiskScore += highSellTaxPoints
	}
	if !report.TradingEnabled {
		profile.RiskFlags = append(profile.RiskFlags, "No liquidity available")
		profile.RiskScore += tradingDisabledPoints
	}
}

// checkHolderActivity approximates the holder count as the number of distinct
// addresses in the contract's most recent transfer events. This is an
// activity sample, not an exact holder census; it deliberately biases toward
// recently traded tokens. A token with no recent transfers at all counts zero
// participants and lands in the lowest band.
func (s *riskServiceImpl) checkHolderActivity(ctx context.Context, profile *entity.TokenRiskProfile) {
	if err := s.limiter.Wait(ctx); err != nil {
		return
	}

	events, err := s.etherscan.GetContractTransfers(ctx, profile.Contract, holderSampleSize)
	if err != nil {
		s.logger.Warn("Holder activity check unavailable",
			zap.String("contract", profile.Contract), zap.Error(err))
		metrics.UpstreamErrorsTotal.WithLabelValues("etherscan").Inc()
		return
	}
	participants := make(map[string]struct{}, 2*len(events))
	for _, event := range events {
		participants[strings.ToLower(event.From)] = struct{}{}
		participants[strings.ToLower(event.To)] = struct{}{}
	}

	count := len(participants)
	switch {
	case count < veryFewHoldersThreshold:
		profile.RiskFlags = append(profile.RiskFlags,
			fmt.Sprintf("Very few holders (only %d in recent activity)", count))
		profile.RiskScore += veryFewHoldersPoints
	case count < lowHoldersThreshold:
		profile.RiskFlags = append(profile.RiskFlags,
			fmt.Sprintf("Low holder count (%d in recent activity)", count))
		profile.RiskScore += lowHoldersPoints
	}
}

// checkMarketPrice flags tokens whose price resolved to exactly zero, unless
// the symbol is an allow-listed stablecoin.
func (s *riskServiceImpl) checkMarketPrice(profile *entity.TokenRiskProfile, holding entity.ValuedHolding) {
	if holding.PriceUSD != 0 {
		return
	}
	if _, allowed := noPriceAllowList[strings.ToUpper(holding.Symbol)]; allowed {
		return
	}
	profile.RiskFlags = append(profile.RiskFlags, "No market price data available")
	profile.RiskScore += noMarketPricePoints
}

// buildRecommendations derives summary lines by scanning retained flag text
// for the category substrings. The flag wording above and these needles must
// stay in sync. A SAFE wallet intentionally emits no summary line.
func buildRecommendations(level entity.RiskLevel, riskyTokens []entity.TokenRiskProfile) []string {
	recommendations := make([]string, 0, 4)

	if level == entity.RiskLevelHigh || level == entity.RiskLevelCritical {
		recommendations = append(recommendations,
			"URGENT: Review and consider removing high-risk tokens from your wallet")
	}

	honeypotCount := countTokensWithFlag(riskyTokens, func(flag string) bool {
		return strings.Contains(flag, "HONEYPOT")
	})
	if honeypotCount > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("%d honeypot(s) detected - these tokens cannot be sold!", honeypotCount))
	}

	newTokenCount := countTokensWithFlag(riskyTokens, func(flag string) bool {
		return strings.Contains(strings.ToLower(flag), "new token")
	})
	if newTokenCount > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("%d very new token(s) - exercise extreme caution", newTokenCount))
	}

	noPriceCount := countTokensWithFlag(riskyTokens, func(flag string) bool {
		return strings.Contains(flag, "No market price")
	})
	if noPriceCount > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("%d token(s) have no market price - likely worthless", noPriceCount))
	}

	return recommendations
}

func countTokensWithFlag(tokens []entity.TokenRiskProfile, match func(string) bool) int {
	return lo.CountBy(tokens, func(token entity.TokenRiskProfile) bool {
		return lo.SomeBy(token.RiskFlags, match)
	})
}
