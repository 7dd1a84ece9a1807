package security

import (
	"fmt"

	"github.com/wonny/moatscreen/internal/contracts"
)

// Quality filter names
const (
	FilterProfitability = "profitability"
	FilterVolatility    = "volatility"
	FilterMoat          = "moat"
)

// MoatWidth classifies the moat set
type MoatWidth string

const (
	MoatWidthNone   MoatWidth = "none"
	MoatWidthNarrow MoatWidth = "narrow"
	MoatWidthWide   MoatWidth = "wide"
)

// MoatWidth returns wide (>= 2 tags), narrow (>= 1) or none
func (s *Security) MoatWidth() MoatWidth {
	f := s.protocol.Filters
	switch n := len(s.moats); {
	case n >= f.WideMoatCount:
		return MoatWidthWide
	case n >= f.MinMoats && n > 0:
		return MoatWidthNarrow
	default:
		return MoatWidthNone
	}
}

// ProfitabilityFilter requires positive EPS.
// Technology passes on positive adjusted FCF despite GAAP losses.
func (s *Security) ProfitabilityFilter() contracts.FilterResult {
	p := s.profile
	switch {
	case p.EPS() > 0:
		return contracts.FilterResult{Name: FilterProfitability, Passed: true, Message: fmt.Sprintf("EPS %.2f", p.EPS())}
	case s.sector == contracts.SectorTechnology && p.AdjustedFreeCashFlow() > 0:
		return contracts.FilterResult{Name: FilterProfitability, Passed: true, Message: fmt.Sprintf("GAAP loss, adjusted FCF %.0f", p.AdjustedFreeCashFlow())}
	default:
		return contracts.FilterResult{Name: FilterProfitability, Passed: false, Message: fmt.Sprintf("EPS %.2f <= 0", p.EPS())}
	}
}

// VolatilityFilter requires beta below the filter limit
func (s *Security) VolatilityFilter() contracts.FilterResult {
	limit := s.protocol.Filters.MaxBeta
	if s.beta < limit {
		return contracts.FilterResult{Name: FilterVolatility, Passed: true, Message: fmt.Sprintf("beta %.2f", s.beta)}
	}
	return contracts.FilterResult{Name: FilterVolatility, Passed: false, Message: fmt.Sprintf("beta %.2f >= %.2f", s.beta, limit)}
}

// MoatFilter requires at least one moat tag
func (s *Security) MoatFilter() contracts.FilterResult {
	width := s.MoatWidth()
	if width == MoatWidthNone {
		return contracts.FilterResult{Name: FilterMoat, Passed: false, Message: "no identifiable moat"}
	}
	return contracts.FilterResult{Name: FilterMoat, Passed: true, Message: fmt.Sprintf("%s moat (%d)", width, len(s.moats))}
}

// QualityFilters runs every quality filter in fixed order
func (s *Security) QualityFilters() []contracts.FilterResult {
	return []contracts.FilterResult{
		s.ProfitabilityFilter(),
		s.VolatilityFilter(),
		s.MoatFilter(),
	}
}
