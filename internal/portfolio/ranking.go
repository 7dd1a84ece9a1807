package portfolio

import (
	"sort"

	"github.com/wonny/moatscreen/internal/contracts"
)

// less functions per ranking order
var rankLess = map[contracts.RankOrder]func(a, b contracts.Analysis) bool{
	contracts.RankByScore: func(a, b contracts.Analysis) bool {
		return a.FinalScore > b.FinalScore
	},
	contracts.RankByMargin: func(a, b contracts.Analysis) bool {
		return a.Margin > b.Margin
	},
	contracts.RankByScoreThenMargin: scoreThenMargin,
	contracts.RankByBeta: func(a, b contracts.Analysis) bool {
		return a.Beta < b.Beta
	},
	contracts.RankBySector: func(a, b contracts.Analysis) bool {
		return a.Sector < b.Sector
	},
}

func scoreThenMargin(a, b contracts.Analysis) bool {
	if a.FinalScore != b.FinalScore {
		return a.FinalScore > b.FinalScore
	}
	return a.Margin > b.Margin
}

// sortAnalyses returns a stably sorted copy
func sortAnalyses(analyses []contracts.Analysis, less func(a, b contracts.Analysis) bool) []contracts.Analysis {
	sorted := append([]contracts.Analysis(nil), analyses...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})
	return sorted
}

// Rank orders analyses and assigns 1-based ranks. Unknown orders fall back to score.
// ⭐ SSOT: 랭킹 로직은 여기서만
func Rank(analyses []contracts.Analysis, order contracts.RankOrder) []contracts.RankedSecurity {
	less, ok := rankLess[order]
	if !ok {
		less = rankLess[contracts.RankByScore]
	}

	sorted := sortAnalyses(analyses, less)
	ranked := make([]contracts.RankedSecurity, len(sorted))
	for i, a := range sorted {
		ranked[i] = contracts.RankedSecurity{
			Rank:           i + 1,
			Ticker:         a.Ticker,
			Name:           a.Name,
			Sector:         a.Sector,
			Score:          a.FinalScore,
			Margin:         a.Margin,
			Beta:           a.Beta,
			Recommendation: a.Recommendation,
		}
	}
	return ranked
}

// Rank ranks every security in the portfolio
func (p *Portfolio) Rank(order contracts.RankOrder) []contracts.RankedSecurity {
	ranked := Rank(p.Analyses(), order)

	if len(ranked) > 0 {
		p.logger.WithFields(map[string]interface{}{
			"order":     string(order),
			"total":     len(ranked),
			"top":       ranked[0].Ticker,
			"top_score": ranked[0].Score,
		}).Debug("Ranking completed")
	}
	return ranked
}

// RankByScore ranks by final score, descending
func (p *Portfolio) RankByScore() []contracts.RankedSecurity { return p.Rank(contracts.RankByScore) }

// RankByMargin ranks by safety margin, descending
func (p *Portfolio) RankByMargin() []contracts.RankedSecurity { return p.Rank(contracts.RankByMargin) }

// RankByScoreThenMargin ranks by score, breaking ties by margin
func (p *Portfolio) RankByScoreThenMargin() []contracts.RankedSecurity {
	return p.Rank(contracts.RankByScoreThenMargin)
}

// RankByBeta ranks by beta, ascending
func (p *Portfolio) RankByBeta() []contracts.RankedSecurity { return p.Rank(contracts.RankByBeta) }

// RankBySector ranks by sector name
func (p *Portfolio) RankBySector() []contracts.RankedSecurity { return p.Rank(contracts.RankBySector) }
