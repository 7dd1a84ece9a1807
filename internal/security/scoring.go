package security

import "math"

// tier awards points when the metric clears the threshold
type tier struct {
	threshold float64
	points    float64
}

// 상위 구간부터 순서대로, 첫 번째 충족 구간만 적용
var (
	returnTiers = []tier{{0.15, 20}, {0.10, 10}, {0.05, 5}}
	growthTiers = []tier{{0.10, 15}, {0.05, 10}, {0, 5}}
	marginTiers = []tier{{0.20, 15}, {0.10, 10}, {0.05, 5}}
	debtTiers   = []tier{{2.0, 10}, {3.0, 5}} // below
	betaTiers   = []tier{{1.0, 10}, {1.3, 5}} // below
)

func above(v float64, tiers []tier) float64 {
	for _, t := range tiers {
		if v > t.threshold {
			return t.points
		}
	}
	return 0
}

func below(v float64, tiers []tier) float64 {
	for _, t := range tiers {
		if v < t.threshold {
			return t.points
		}
	}
	return 0
}

// QuantitativeScore sums tiered points for returns, growth, margin, leverage and beta (max 100)
func (s *Security) QuantitativeScore() float64 {
	p := s.profile
	score := above(p.ROE(), returnTiers) +
		above(p.ROIC(), returnTiers) +
		above(p.EarningsGrowth5Y(), growthTiers) +
		above(p.NetMargin(), marginTiers) +
		below(p.DebtToEBITDA(), debtTiers) +
		below(s.beta, betaTiers)
	return math.Min(score, 100)
}

// QualitativeScore is the sector base plus moat points and the payout bonus (max 100)
func (s *Security) QualitativeScore() float64 {
	sc := s.protocol.Scoring
	score := s.base

	switch s.MoatWidth() {
	case MoatWidthWide:
		score += sc.WideMoatPoints
	case MoatWidthNarrow:
		score += sc.NarrowMoatPoints
	}

	if payout := s.profile.PayoutRatio(); payout > 0 && payout < sc.PayoutBonusMax {
		score += sc.PayoutBonus
	}

	return math.Min(score, 100)
}

// FinalScore blends quantitative and qualitative scores (70/30 by default)
func (s *Security) FinalScore() float64 {
	sc := s.protocol.Scoring
	return sc.QuantitativeWeight*s.QuantitativeScore() + sc.QualitativeWeight*s.QualitativeScore()
}
