package valuation

import (
	"math"

	"github.com/wonny/moatscreen/internal/contracts"
)

const (
	gordonMinDiscountRate  = 0.07
	gordonMaxGrowth        = 0.025
	gordonFallbackMultiple = 15.0
)

// DividendDiscount is the Gordon growth model D1 / (k - g)
type DividendDiscount struct{}

func (DividendDiscount) Name() string { return NameDividendDiscount }

// FairPrice returns 0 without a dividend.
// When k <= g the model is undefined and a flat 15x dividend multiple is used.
func (DividendDiscount) FairPrice(sec contracts.Valued, riskFreeRate float64) float64 {
	p := sec.Profile()
	dps := p.DividendPerShare()
	if dps <= 0 {
		return 0
	}

	k := math.Max(gordonMinDiscountRate, riskFreeRate+sec.SectorRiskPremium())
	g := math.Min(p.EarningsGrowth5Y(), gordonMaxGrowth)

	if k <= g {
		return dps * gordonFallbackMultiple * defaultSafetyFactor
	}

	d1 := dps * (1 + g)
	return d1 / (k - g) * defaultSafetyFactor
}
