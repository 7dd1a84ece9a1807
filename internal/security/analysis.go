package security

import (
	"github.com/wonny/moatscreen/internal/contracts"
)

// Analyze evaluates the whole protocol once and returns the breakdown.
// Panics without a strategy, like FairPrice.
func (s *Security) Analyze(riskFreeRate float64) contracts.Analysis {
	fair := s.FairPrice(riskFreeRate)
	margin := SafetyMargin(fair, s.price)
	quant := s.QuantitativeScore()
	qual := s.QualitativeScore()
	sc := s.protocol.Scoring
	final := sc.QuantitativeWeight*quant + sc.QualitativeWeight*qual

	violations := s.KillSwitches()
	filters := s.QualityFilters()

	return contracts.Analysis{
		Ticker:   s.ticker,
		Name:     s.name,
		Sector:   s.sector,
		Price:    s.price,
		Beta:     s.beta,
		Strategy: s.strategy.Name(),
		Moats:    s.Moats(),

		FairPrice:         fair,
		Margin:            margin,
		QuantitativeScore: quant,
		QualitativeScore:  qual,
		FinalScore:        final,
		Recommendation:    Recommend(s.protocol.Recommendation, violations, filters, margin, final),
		PositionLimit:     PositionLimit(s.protocol.PositionLimits, s.beta, final, len(s.moats)),

		Violations: violations,
		Filters:    filters,
		SectorRisk: s.SectorRisk(),
	}
}
