package valuation

import (
	"math"

	"github.com/wonny/moatscreen/internal/contracts"
)

const (
	dcfMarketPremium   = 0.055
	dcfMinDiscountRate = 0.075
	dcfMinGrowth       = 0.03
	dcfMaxGrowth       = 0.15
	dcfTerminalGrowth  = 0.03

	dcfHorizon        = 5
	dcfMonsterHorizon = 10
	dcfSafety         = 0.75
	dcfMonsterSafety  = 0.85

	monsterMarginThreshold = 0.20
	monsterROEThreshold    = 0.20
)

// DCF discounts projected free cash flow per share plus a terminal value
type DCF struct{}

func (DCF) Name() string { return NameDCF }

// IsMonster reports the high-margin, high-ROE classification that earns a longer horizon
func IsMonster(p *contracts.FinancialProfile) bool {
	return p.NetMargin() > monsterMarginThreshold && p.ROE() > monsterROEThreshold
}

// FairPrice uses adjusted FCF/share, falling back to OCF/share; 0 when both are <= 0
func (DCF) FairPrice(sec contracts.Valued, riskFreeRate float64) float64 {
	p := sec.Profile()

	fcf := p.AdjustedFCFPerShare()
	if fcf <= 0 {
		fcf = p.OperatingCashFlowPerShare()
	}
	if fcf <= 0 {
		return 0
	}

	r := math.Max(dcfMinDiscountRate, riskFreeRate+sec.Beta()*dcfMarketPremium)
	g := math.Max(dcfMinGrowth, math.Min(dcfMaxGrowth, p.EarningsGrowth5Y()))

	horizon, safety := dcfHorizon, dcfSafety
	if IsMonster(p) {
		horizon, safety = dcfMonsterHorizon, dcfMonsterSafety
	}

	var pv, projected float64
	for t := 1; t <= horizon; t++ {
		projected = fcf * math.Pow(1+g, float64(t))
		pv += projected / math.Pow(1+r, float64(t))
	}

	// r >= 7.5% > 3% 이므로 분모는 항상 양수
	terminal := projected * (1 + dcfTerminalGrowth) / (r - dcfTerminalGrowth)
	pv += terminal / math.Pow(1+r, float64(horizon))

	return pv * safety
}
