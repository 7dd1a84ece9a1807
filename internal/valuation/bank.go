package valuation

import (
	"github.com/wonny/moatscreen/internal/contracts"
)

// BankMultiple prices a bank at a ROE-dependent multiple of tangible book value
type BankMultiple struct{}

func (BankMultiple) Name() string { return NameBankMultiple }

// FairPrice uses TBV/share, falling back to BVPS; 0 when both are <= 0
func (BankMultiple) FairPrice(sec contracts.Valued, _ float64) float64 {
	p := sec.Profile()

	metric := p.TangibleBookValuePerShare()
	if metric <= 0 {
		metric = p.BookValuePerShare()
	}
	if metric <= 0 {
		return 0
	}

	return metric * BookMultiple(p.ROE()) * defaultSafetyFactor
}

// BookMultiple maps ROE to a fair price/TBV multiple
func BookMultiple(roe float64) float64 {
	switch {
	case roe > 0.15:
		return 1.5
	case roe >= 0.10:
		return 1.2
	case roe >= 0.08:
		return 1.0
	default:
		return 0.8
	}
}
