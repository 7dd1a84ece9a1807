package valuation

import (
	"strings"

	"github.com/wonny/moatscreen/internal/contracts"
)

// Every strategy returns a buy-below price: the safety discount is already applied.
const (
	defaultSafetyFactor = 0.7
)

// Strategy names
const (
	NameGraham           = "Graham"
	NameDCF              = "DCF"
	NameDividendDiscount = "DividendDiscount"
	NameBankMultiple     = "BankMultiple"
)

// ForSector returns the default strategy for a sector
// ⭐ SSOT: 섹터 → 밸류에이션 전략 매핑
func ForSector(sector contracts.Sector) contracts.ValuationStrategy {
	switch sector {
	case contracts.SectorTechnology:
		return DCF{}
	case contracts.SectorBank:
		return BankMultiple{}
	case contracts.SectorUtility:
		return DividendDiscount{}
	default:
		return Graham{}
	}
}

// ByName looks a strategy up by its name (case-insensitive)
func ByName(name string) (contracts.ValuationStrategy, bool) {
	for _, s := range All() {
		if strings.EqualFold(s.Name(), strings.TrimSpace(name)) {
			return s, true
		}
	}
	return nil, false
}

// All returns one instance of every strategy
func All() []contracts.ValuationStrategy {
	return []contracts.ValuationStrategy{Graham{}, DCF{}, DividendDiscount{}, BankMultiple{}}
}
