package portfolio

import (
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/moatscreen/internal/contracts"
	"github.com/wonny/moatscreen/internal/strategyconfig"
)

// Stats aggregates bucket counts, score distribution and sector mix
func (p *Portfolio) Stats() contracts.PortfolioStats {
	return statsOf(p.Analyses(), p.protocol.Buckets)
}

func statsOf(analyses []contracts.Analysis, b strategyconfig.Buckets) contracts.PortfolioStats {
	s := contracts.PortfolioStats{
		Total:              len(analyses),
		SectorDistribution: make(map[contracts.Sector]int),
	}
	if len(analyses) == 0 {
		return s
	}

	s.Approved = len(approvedOf(analyses, b))
	s.Watched = len(watchedOf(analyses, b))
	s.Rejected = len(rejectedOf(analyses, b))
	s.ApprovedPct = float64(s.Approved) / float64(s.Total) * 100

	scores := make([]float64, len(analyses))
	for i, a := range analyses {
		scores[i] = a.FinalScore
		s.SectorDistribution[a.Sector]++
	}
	s.AverageScore = mean(scores)
	s.ScoreStdDev = stdDev(scores)

	return s
}

// mean returns 0 for empty input
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// stdDev is the sample standard deviation; 0 below two points
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}
