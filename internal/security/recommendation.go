package security

import (
	"github.com/wonny/moatscreen/internal/contracts"
	"github.com/wonny/moatscreen/internal/strategyconfig"
)

// Recommend applies the decision table; the first matching rule wins.
//
//	violations → REJECT, failed filter → AVOID, score < min → AVOID,
//	score >= strong: margin >= strong → STRONG_BUY, >= buy → BUY, else WATCH
//	score >= buy: margin >= buy → BUY, else WATCH
//	otherwise WATCH
func Recommend(rules strategyconfig.Recommendation, violations []contracts.Violation, filters []contracts.FilterResult, margin, score float64) contracts.Recommendation {
	if len(violations) > 0 {
		return contracts.RecommendationReject
	}
	for _, f := range filters {
		if !f.Passed {
			return contracts.RecommendationAvoid
		}
	}
	if score < rules.MinScore {
		return contracts.RecommendationAvoid
	}

	switch {
	case score >= rules.StrongScore:
		if margin >= rules.StrongBuyMargin {
			return contracts.RecommendationStrongBuy
		}
		if margin >= rules.BuyMargin {
			return contracts.RecommendationBuy
		}
		return contracts.RecommendationWatch
	case score >= rules.BuyScore:
		if margin >= rules.BuyMargin {
			return contracts.RecommendationBuy
		}
		return contracts.RecommendationWatch
	default:
		return contracts.RecommendationWatch
	}
}

// PositionLimit returns the maximum position size in percent of capital
func PositionLimit(rules strategyconfig.PositionLimits, beta, score float64, moats int) float64 {
	switch {
	case beta < rules.LowBeta && score >= rules.MaxTierScore && moats >= rules.MaxTierMoats:
		return rules.MaxPct
	case beta >= rules.ElevatedBeta && beta < rules.HighBeta:
		return rules.ReducedPct
	case beta >= rules.HighBeta:
		return rules.MinimalPct
	default:
		return rules.NormalPct
	}
}

// Recommendation evaluates the security against the protocol
func (s *Security) Recommendation(riskFreeRate float64) contracts.Recommendation {
	return Recommend(s.protocol.Recommendation, s.KillSwitches(), s.QualityFilters(), s.SafetyMargin(riskFreeRate), s.FinalScore())
}

// PositionLimit returns the security's maximum position size in percent of capital
func (s *Security) PositionLimit() float64 {
	return PositionLimit(s.protocol.PositionLimits, s.beta, s.FinalScore(), len(s.moats))
}
