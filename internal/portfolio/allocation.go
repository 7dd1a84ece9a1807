package portfolio

import (
	"time"

	"github.com/wonny/moatscreen/internal/contracts"
)

// Allocation returns the capital allocation across APPROVED securities
func (p *Portfolio) Allocation() *contracts.AllocationReport {
	return p.AllocationWith(DefaultConstraints())
}

// AllocationWith builds the allocation report under constraints.
// Approved securities are ordered by score then margin; each receives limit% × capital.
func (p *Portfolio) AllocationWith(constraints Constraints) *contracts.AllocationReport {
	return p.allocate(p.Approved(), constraints)
}

func (p *Portfolio) allocate(approvedSet []contracts.Analysis, constraints Constraints) *contracts.AllocationReport {
	report := &contracts.AllocationReport{
		Date:         time.Now(),
		Investor:     p.investor,
		TotalCapital: p.totalCapital,
		Positions:    make([]contracts.AllocationPosition, 0),
	}

	// 1. APPROVED, score → margin 순
	approved := sortAnalyses(approvedSet, scoreThenMargin)
	if len(approved) == 0 {
		p.logger.Warn("No approved securities for allocation")
		report.Unallocated = p.totalCapital
		return report
	}

	// 2. Apply constraints and size positions
	for _, a := range approved {
		if constraints.IsBlackListed(a.Ticker) {
			p.logger.WithTicker(a.Ticker).Info("Skipping blacklisted security")
			continue
		}
		if constraints.MaxPositions > 0 && len(report.Positions) >= constraints.MaxPositions {
			break
		}

		capital := a.PositionLimit / 100 * p.totalCapital
		report.Positions = append(report.Positions, contracts.AllocationPosition{
			Ticker:     a.Ticker,
			Name:       a.Name,
			Sector:     a.Sector,
			LimitPct:   a.PositionLimit,
			Capital:    capital,
			CapitalPct: capital / p.totalCapital * 100,
			Score:      a.FinalScore,
			Margin:     a.Margin,
		})
		report.Allocated += capital
	}

	report.Unallocated = p.totalCapital - report.Allocated

	p.logger.WithFields(map[string]interface{}{
		"positions":   report.Count(),
		"allocated":   report.Allocated,
		"unallocated": report.Unallocated,
	}).Info("Allocation computed")

	if report.IsOverAllocated() {
		p.logger.WithFields(map[string]interface{}{
			"total_weight": report.TotalWeight(),
		}).Warn("Position limits exceed total capital")
	}

	return report
}
