package security

import (
	"fmt"

	"github.com/wonny/moatscreen/internal/contracts"
)

// variant holds the sector-specific constants of a security
type variant struct {
	riskPremium float64
	baseScore   float64
	seedMoats   []contracts.Moat
}

const defaultRiskPremium = 0.055

// ⭐ SSOT: 섹터별 상수 (리스크 프리미엄, 기본 정성 점수, 초기 해자)
var variants = map[contracts.Sector]variant{
	contracts.SectorGeneral: {
		riskPremium: defaultRiskPremium,
		baseScore:   50,
	},
	contracts.SectorTechnology: {
		riskPremium: 0.07,
		baseScore:   60,
		seedMoats:   []contracts.Moat{contracts.MoatSwitchingCosts, contracts.MoatNetworkEffects},
	},
	contracts.SectorBank: {
		riskPremium: 0.065,
		baseScore:   55,
		seedMoats:   []contracts.Moat{contracts.MoatEfficientScale},
	},
	contracts.SectorUtility: {
		riskPremium: 0.04,
		baseScore:   50,
		seedMoats:   []contracts.Moat{contracts.MoatEfficientScale},
	},
	contracts.SectorConsumerStaples: {
		riskPremium: defaultRiskPremium,
		baseScore:   65,
		seedMoats:   []contracts.Moat{contracts.MoatIntangibleAssets},
	},
}

func variantOf(sector contracts.Sector) variant {
	if v, ok := variants[sector]; ok {
		return v
	}
	return variants[contracts.SectorGeneral]
}

// BaseQualitativeScore returns the sector's starting qualitative score
func BaseQualitativeScore(sector contracts.Sector) float64 {
	return variantOf(sector).baseScore
}

// SectorRisk runs the informational sector-specific risk check.
// It never changes the recommendation.
func (s *Security) SectorRisk() contracts.FilterResult {
	p := s.profile
	res := contracts.FilterResult{Name: "sector_risk", Passed: true}

	switch s.sector {
	case contracts.SectorTechnology:
		if p.EPS() < 0 && p.FreeCashFlow() <= 0 {
			res.Passed = false
			res.Message = "cash burn: negative EPS without free cash flow"
			return res
		}
		res.Message = "cash generation OK"
	case contracts.SectorBank:
		if p.GoodwillToAssets() > 0.10 {
			res.Passed = false
			res.Message = fmt.Sprintf("goodwill %.1f%% of assets > 10%%", p.GoodwillToAssets()*100)
			return res
		}
		if p.ROE() < 0.08 {
			res.Passed = false
			res.Message = fmt.Sprintf("ROE %.1f%% < 8%%", p.ROE()*100)
			return res
		}
		res.Message = "capital quality OK"
	case contracts.SectorUtility:
		if p.DividendYield() < 0.02 {
			res.Passed = false
			res.Message = fmt.Sprintf("dividend yield %.2f%% < 2%%", p.DividendYield()*100)
			return res
		}
		res.Message = "dividend yield OK"
	default:
		if p.DebtToEBITDA() > 3.0 {
			res.Passed = false
			res.Message = fmt.Sprintf("debt/EBITDA %.1fx > 3.0x", p.DebtToEBITDA())
			return res
		}
		res.Message = "leverage OK"
	}
	return res
}
