package portfolio

import (
	"slices"

	"github.com/wonny/moatscreen/internal/contracts"
)

// Constraints restricts which approved securities receive capital
// ⭐ SSOT: 배분 제약조건은 여기서만
type Constraints struct {
	MaxPositions int      // 0 = 제한 없음
	BlackList    []string // 제외 종목 (ticker)
}

// IsBlackListed checks if a ticker is in the blacklist (case-insensitive)
func (c *Constraints) IsBlackListed(ticker string) bool {
	ticker = contracts.NormalizeTicker(ticker)
	return slices.ContainsFunc(c.BlackList, func(t string) bool {
		return contracts.NormalizeTicker(t) == ticker
	})
}

// DefaultConstraints returns the unconstrained configuration
func DefaultConstraints() Constraints {
	return Constraints{
		MaxPositions: 0,
		BlackList:    []string{},
	}
}

// Constrain re-applies constraints to an existing allocation report,
// keeping position order and recomputing the totals
func Constrain(r *contracts.AllocationReport, c Constraints) *contracts.AllocationReport {
	out := *r
	out.Positions = make([]contracts.AllocationPosition, 0, len(r.Positions))
	out.Allocated = 0

	for _, pos := range r.Positions {
		if c.IsBlackListed(pos.Ticker) {
			continue
		}
		if c.MaxPositions > 0 && len(out.Positions) >= c.MaxPositions {
			break
		}
		out.Positions = append(out.Positions, pos)
		out.Allocated += pos.Capital
	}
	out.Unallocated = out.TotalCapital - out.Allocated
	return &out
}
