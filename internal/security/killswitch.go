package security

import (
	"fmt"

	"github.com/wonny/moatscreen/internal/contracts"
	"github.com/wonny/moatscreen/internal/strategyconfig"
)

// Kill switch codes
const (
	CodeDilution      = "dilution"
	CodeDebt          = "debt"
	CodeMarginDecline = "margin_decline"
	CodeLossYears     = "loss_years"
	CodeNegativeOCF   = "negative_ocf"
	CodeGoodwill      = "goodwill"
	CodeBeta          = "beta"
)

// gate is one disqualification rule; it returns a message when it fires
type gate struct {
	code  string
	check func(s *Security, ks strategyconfig.KillSwitches) (string, bool)
}

func dilutionGate(s *Security, ks strategyconfig.KillSwitches) (string, bool) {
	d := s.profile.DilutionOver3Years()
	if d > ks.MaxDilution3Y {
		return fmt.Sprintf("3-year dilution %.1f%% > %.1f%%", d*100, ks.MaxDilution3Y*100), true
	}
	return "", false
}

func debtGate(limit func(ks strategyconfig.KillSwitches) float64) func(*Security, strategyconfig.KillSwitches) (string, bool) {
	return func(s *Security, ks strategyconfig.KillSwitches) (string, bool) {
		threshold := limit(ks)
		if d := s.profile.DebtToEBITDA(); d > threshold {
			return fmt.Sprintf("debt/EBITDA %.1fx > %.1fx", d, threshold), true
		}
		return "", false
	}
}

func marginDeclineGate(s *Security, _ strategyconfig.KillSwitches) (string, bool) {
	if s.profile.MarginDeclining3Years() {
		return "net margin declined two years in a row", true
	}
	return "", false
}

func lossYearsGate(limit func(ks strategyconfig.KillSwitches) int) func(*Security, strategyconfig.KillSwitches) (string, bool) {
	return func(s *Security, ks strategyconfig.KillSwitches) (string, bool) {
		threshold := limit(ks)
		if n := s.profile.LossYearsInLast5(); n >= threshold {
			return fmt.Sprintf("%d loss years in trailing 5 (limit %d)", n, threshold), true
		}
		return "", false
	}
}

func negativeOCFGate(s *Security, _ strategyconfig.KillSwitches) (string, bool) {
	if s.profile.OperatingCashFlowNegative() {
		return fmt.Sprintf("operating cash flow negative (%.0f)", s.profile.OperatingCashFlow()), true
	}
	return "", false
}

func goodwillGate(s *Security, ks strategyconfig.KillSwitches) (string, bool) {
	g := s.profile.GoodwillToAssets()
	if g > ks.MaxGoodwillToAssets {
		return fmt.Sprintf("goodwill %.1f%% of assets > %.1f%%", g*100, ks.MaxGoodwillToAssets*100), true
	}
	return "", false
}

func betaGate(s *Security, ks strategyconfig.KillSwitches) (string, bool) {
	if s.beta > ks.MaxBeta {
		return fmt.Sprintf("beta %.2f > %.2f", s.beta, ks.MaxBeta), true
	}
	return "", false
}

var (
	universalDebt = debtGate(func(ks strategyconfig.KillSwitches) float64 { return ks.MaxDebtToEBITDA })
	utilityDebt   = debtGate(func(ks strategyconfig.KillSwitches) float64 { return ks.UtilityMaxDebtToEBITDA })
	universalLoss = lossYearsGate(func(ks strategyconfig.KillSwitches) int { return ks.MaxLossYears })
	bankLoss      = lossYearsGate(func(ks strategyconfig.KillSwitches) int { return ks.BankMaxLossYears })
)

// gatesFor returns the ordered kill-switch set of a sector variant
// ⭐ SSOT: 섹터별 킬 스위치 오버라이드 정책
func gatesFor(sector contracts.Sector) []gate {
	switch sector {
	case contracts.SectorBank:
		// 은행: 자본구조가 달라 희석/부채 제외, 손실은 1년이라도 탈락
		return []gate{
			{CodeMarginDecline, marginDeclineGate},
			{CodeLossYears, bankLoss},
		}
	case contracts.SectorUtility:
		return []gate{
			{CodeDilution, dilutionGate},
			{CodeDebt, utilityDebt},
			{CodeMarginDecline, marginDeclineGate},
			{CodeLossYears, universalLoss},
			{CodeNegativeOCF, negativeOCFGate},
			{CodeGoodwill, goodwillGate},
			{CodeBeta, betaGate},
		}
	case contracts.SectorRealEstate:
		return []gate{
			{CodeDebt, universalDebt},
			{CodeMarginDecline, marginDeclineGate},
			{CodeLossYears, universalLoss},
			{CodeNegativeOCF, negativeOCFGate},
			{CodeGoodwill, goodwillGate},
			{CodeBeta, betaGate},
		}
	default:
		return []gate{
			{CodeDilution, dilutionGate},
			{CodeDebt, universalDebt},
			{CodeMarginDecline, marginDeclineGate},
			{CodeLossYears, universalLoss},
			{CodeNegativeOCF, negativeOCFGate},
			{CodeGoodwill, goodwillGate},
			{CodeBeta, betaGate},
		}
	}
}

// GateCount returns the number of kill switches evaluated for a sector
func GateCount(sector contracts.Sector) int {
	return len(gatesFor(sector.OrDefault()))
}

// GateCodes returns the ordered kill-switch codes evaluated for a sector
func GateCodes(sector contracts.Sector) []string {
	gates := gatesFor(sector.OrDefault())
	codes := make([]string, len(gates))
	for i, g := range gates {
		codes[i] = g.code
	}
	return codes
}

// KillSwitches evaluates every gate of the sector variant in order and collects all violations.
// An empty result means the security passes.
func (s *Security) KillSwitches() []contracts.Violation {
	violations := make([]contracts.Violation, 0)
	for _, g := range gatesFor(s.sector) {
		if msg, fired := g.check(s, s.protocol.KillSwitches); fired {
			violations = append(violations, contracts.Violation{Code: g.code, Message: msg})
		}
	}
	return violations
}
