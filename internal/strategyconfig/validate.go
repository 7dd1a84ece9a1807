package strategyconfig

import (
	"fmt"
	"math"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.ProtocolID == "" {
		return ValidationError{"meta.protocol_id", "required"}
	}

	// === Kill switches ===
	ks := cfg.KillSwitches
	if err := validatePositive(ks.MaxDilution3Y, "kill_switches.max_dilution_3y"); err != nil {
		return err
	}
	if err := validatePositive(ks.MaxDebtToEBITDA, "kill_switches.max_debt_to_ebitda"); err != nil {
		return err
	}
	if ks.UtilityMaxDebtToEBITDA < ks.MaxDebtToEBITDA {
		return ValidationError{"kill_switches.utility_max_debt_to_ebitda", "must be >= max_debt_to_ebitda"}
	}
	if ks.MaxLossYears < 1 || ks.MaxLossYears > 5 {
		return ValidationError{"kill_switches.max_loss_years", "must be in [1, 5]"}
	}
	if ks.BankMaxLossYears < 1 || ks.BankMaxLossYears > ks.MaxLossYears {
		return ValidationError{"kill_switches.bank_max_loss_years", "must be in [1, max_loss_years]"}
	}
	if err := validatePctRange(ks.MaxGoodwillToAssets, "kill_switches.max_goodwill_to_assets"); err != nil {
		return err
	}
	if err := validatePositive(ks.MaxBeta, "kill_switches.max_beta"); err != nil {
		return err
	}

	// === Filters ===
	f := cfg.Filters
	if err := validatePositive(f.MaxBeta, "filters.max_beta"); err != nil {
		return err
	}
	if f.MinMoats < 0 {
		return ValidationError{"filters.min_moats", "must be >= 0"}
	}
	if f.WideMoatCount <= f.MinMoats {
		return ValidationError{"filters.wide_moat_count", "must be > min_moats"}
	}

	// === Scoring ===
	s := cfg.Scoring
	if math.Abs(s.WeightSum()-1.0) > 1e-6 {
		return ValidationError{"scoring", fmt.Sprintf("quantitative + qualitative weight must sum to 1.0, got %.4f", s.WeightSum())}
	}
	if s.NarrowMoatPoints < 0 || s.WideMoatPoints < s.NarrowMoatPoints {
		return ValidationError{"scoring", "must satisfy 0 <= narrow_moat_points <= wide_moat_points"}
	}
	if err := validatePctRange(s.PayoutBonusMax, "scoring.payout_bonus_max"); err != nil {
		return err
	}

	// === Recommendation ===
	r := cfg.Recommendation
	if !(r.MinScore < r.BuyScore && r.BuyScore <= r.StrongScore && r.StrongScore <= 100) {
		return ValidationError{"recommendation", "must satisfy min_score < buy_score <= strong_score <= 100"}
	}
	if r.BuyMargin > r.StrongBuyMargin {
		return ValidationError{"recommendation", "buy_margin must be <= strong_buy_margin"}
	}

	// === Position limits ===
	p := cfg.PositionLimits
	if !(p.MaxPct >= p.NormalPct && p.NormalPct >= p.ReducedPct && p.ReducedPct >= p.MinimalPct && p.MinimalPct > 0) {
		return ValidationError{"position_limits", "must satisfy max >= normal >= reduced >= minimal > 0"}
	}
	if p.MaxPct > 100 {
		return ValidationError{"position_limits.max_pct", "must be <= 100"}
	}
	if !(p.LowBeta <= p.ElevatedBeta && p.ElevatedBeta <= p.HighBeta) {
		return ValidationError{"position_limits", "must satisfy low_beta <= elevated_beta <= high_beta"}
	}

	// === Buckets ===
	b := cfg.Buckets
	if b.WatchMinScore > b.ApprovedScore {
		return ValidationError{"buckets", "watch_min_score must be <= approved_score"}
	}

	// === Portfolio ===
	if cfg.Portfolio.DefaultCapital <= 0 {
		return ValidationError{"portfolio.default_capital", "must be > 0"}
	}
	if cfg.Portfolio.DefaultRiskFreeRate < 0 {
		return ValidationError{"portfolio.default_risk_free_rate", "must be >= 0"}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// 부채 허용치 완화 경고
	if cfg.KillSwitches.MaxDebtToEBITDA > 4.0 {
		warnings = append(warnings, Warning{
			Code:    "LOOSE_DEBT",
			Message: "debt/EBITDA > 4.0x 허용: 레버리지 리스크 높음",
		})
	}

	// 안전마진 부족 경고
	if cfg.Recommendation.StrongBuyMargin < 30 {
		warnings = append(warnings, Warning{
			Code:    "THIN_MARGIN",
			Message: "strong buy margin < 30%: 안전마진이 얇음",
		})
	}

	// 집중 투자 경고
	if cfg.PositionLimits.MaxPct > 20 {
		warnings = append(warnings, Warning{
			Code:    "CONCENTRATED",
			Message: "단일 종목 한도 > 20%: 집중 리스크",
		})
	}

	// 승인 기준이 추천 기준보다 느슨함
	if cfg.Buckets.ApprovedScore < cfg.Recommendation.BuyScore {
		warnings = append(warnings, Warning{
			Code:    "LOOSE_APPROVAL",
			Message: "approved_score < buy_score: BUY 미만 종목이 승인될 수 있음",
		})
	}

	return warnings
}

// === Helper Functions ===

func validatePositive(v float64, field string) error {
	if v <= 0 {
		return ValidationError{field, "must be > 0"}
	}
	return nil
}

// validatePctRange는 비율 값이 0~1 범위인지 검증
func validatePctRange(pct float64, field string) error {
	if pct < 0 || pct > 1 {
		return ValidationError{field, "must be in range [0, 1]"}
	}
	return nil
}
