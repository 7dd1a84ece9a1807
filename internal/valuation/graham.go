package valuation

import (
	"math"

	"github.com/wonny/moatscreen/internal/contracts"
)

const (
	grahamBaseMultiple = 8.5
	grahamMaxGrowth    = 15.0 // %
	grahamAAAYield     = 4.4  // %
	grahamMinYield     = 3.0  // %
)

// Graham values earnings with Graham's revised formula
// EPS × (8.5 + 2g) × 4.4 / Y
type Graham struct{}

func (Graham) Name() string { return NameGraham }

// FairPrice returns 0 when EPS is not positive
func (Graham) FairPrice(sec contracts.Valued, riskFreeRate float64) float64 {
	p := sec.Profile()
	eps := p.EPS()
	if eps <= 0 {
		return 0
	}

	g := math.Max(0, math.Min(grahamMaxGrowth, p.EarningsGrowth5Y()*100))
	y := math.Max(grahamMinYield, riskFreeRate*100)

	raw := eps * (grahamBaseMultiple + 2*g) * grahamAAAYield / y
	return raw * defaultSafetyFactor
}
