package strategyconfig

import "time"

// Config는 펀더멘털 스크리닝 프로토콜의 전체 임계값 설정
// ⭐ SSOT: 킬 스위치/추천/포지션 한도 임계값은 여기서만
type Config struct {
	Meta           Meta           `yaml:"meta" json:"meta"`
	KillSwitches   KillSwitches   `yaml:"kill_switches" json:"kill_switches"`
	Filters        Filters        `yaml:"filters" json:"filters"`
	Scoring        Scoring        `yaml:"scoring" json:"scoring"`
	Recommendation Recommendation `yaml:"recommendation" json:"recommendation"`
	PositionLimits PositionLimits `yaml:"position_limits" json:"position_limits"`
	Buckets        Buckets        `yaml:"buckets" json:"buckets"`
	Portfolio      Portfolio      `yaml:"portfolio" json:"portfolio"`
}

// Meta 메타 정보
type Meta struct {
	ProtocolID string `yaml:"protocol_id" json:"protocol_id"`
	Version    string `yaml:"version" json:"version"`
}

// KillSwitches 절대 탈락 조건
type KillSwitches struct {
	MaxDilution3Y          float64 `yaml:"max_dilution_3y" json:"max_dilution_3y"`
	MaxDebtToEBITDA        float64 `yaml:"max_debt_to_ebitda" json:"max_debt_to_ebitda"`
	UtilityMaxDebtToEBITDA float64 `yaml:"utility_max_debt_to_ebitda" json:"utility_max_debt_to_ebitda"`
	MaxLossYears           int     `yaml:"max_loss_years" json:"max_loss_years"`           // fires at >=
	BankMaxLossYears       int     `yaml:"bank_max_loss_years" json:"bank_max_loss_years"` // fires at >=
	MaxGoodwillToAssets    float64 `yaml:"max_goodwill_to_assets" json:"max_goodwill_to_assets"`
	MaxBeta                float64 `yaml:"max_beta" json:"max_beta"`
}

// Filters 품질 필터 (AVOID)
type Filters struct {
	MaxBeta       float64 `yaml:"max_beta" json:"max_beta"` // passes below
	MinMoats      int     `yaml:"min_moats" json:"min_moats"`
	WideMoatCount int     `yaml:"wide_moat_count" json:"wide_moat_count"`
}

// Scoring 점수 가중치
type Scoring struct {
	QuantitativeWeight float64 `yaml:"quantitative_weight" json:"quantitative_weight"`
	QualitativeWeight  float64 `yaml:"qualitative_weight" json:"qualitative_weight"`
	WideMoatPoints     float64 `yaml:"wide_moat_points" json:"wide_moat_points"`
	NarrowMoatPoints   float64 `yaml:"narrow_moat_points" json:"narrow_moat_points"`
	PayoutBonus        float64 `yaml:"payout_bonus" json:"payout_bonus"`
	PayoutBonusMax     float64 `yaml:"payout_bonus_max" json:"payout_bonus_max"`
}

// WeightSum returns the sum of the final score weights
func (s Scoring) WeightSum() float64 {
	return s.QuantitativeWeight + s.QualitativeWeight
}

// Recommendation 추천 등급 경계값
type Recommendation struct {
	MinScore        float64 `yaml:"min_score" json:"min_score"`
	BuyScore        float64 `yaml:"buy_score" json:"buy_score"`
	StrongScore     float64 `yaml:"strong_score" json:"strong_score"`
	BuyMargin       float64 `yaml:"buy_margin" json:"buy_margin"`
	StrongBuyMargin float64 `yaml:"strong_buy_margin" json:"strong_buy_margin"`
}

// PositionLimits 포지션 한도 (% of capital)
type PositionLimits struct {
	MaxPct       float64 `yaml:"max_pct" json:"max_pct"`
	NormalPct    float64 `yaml:"normal_pct" json:"normal_pct"`
	ReducedPct   float64 `yaml:"reduced_pct" json:"reduced_pct"`
	MinimalPct   float64 `yaml:"minimal_pct" json:"minimal_pct"`
	LowBeta      float64 `yaml:"low_beta" json:"low_beta"`           // max tier: beta below
	ElevatedBeta float64 `yaml:"elevated_beta" json:"elevated_beta"` // reduced tier from
	HighBeta     float64 `yaml:"high_beta" json:"high_beta"`         // minimal tier from
	MaxTierScore float64 `yaml:"max_tier_score" json:"max_tier_score"`
	MaxTierMoats int     `yaml:"max_tier_moats" json:"max_tier_moats"`
}

// Buckets 포트폴리오 분류 경계값
type Buckets struct {
	ApprovedScore  float64 `yaml:"approved_score" json:"approved_score"`
	ApprovedMargin float64 `yaml:"approved_margin" json:"approved_margin"`
	WatchMinScore  float64 `yaml:"watch_min_score" json:"watch_min_score"`
	RejectBelow    float64 `yaml:"reject_below" json:"reject_below"`
}

// Portfolio 포트폴리오 기본값
type Portfolio struct {
	DefaultInvestor     string  `yaml:"default_investor" json:"default_investor"`
	DefaultRiskFreeRate float64 `yaml:"default_risk_free_rate" json:"default_risk_free_rate"`
	DefaultCapital      float64 `yaml:"default_capital" json:"default_capital"`
}

// Snapshot 분석 실행 시점의 프로토콜 스냅샷 (재현성용)
type Snapshot struct {
	ConfigHash string    `json:"config_hash"`
	ConfigYAML string    `json:"config_yaml,omitempty"`
	ProtocolID string    `json:"protocol_id"`
	Version    string    `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
}

// Default returns the built-in protocol
// config/protocol/fundamental_v1.yaml 과 동일해야 함
func Default() *Config {
	return &Config{
		Meta: Meta{
			ProtocolID: "fundamental_v1",
			Version:    "1.0.0",
		},
		KillSwitches: KillSwitches{
			MaxDilution3Y:          0.10,
			MaxDebtToEBITDA:        3.0,
			UtilityMaxDebtToEBITDA: 4.0,
			MaxLossYears:           2,
			BankMaxLossYears:       1,
			MaxGoodwillToAssets:    0.50,
			MaxBeta:                1.5,
		},
		Filters: Filters{
			MaxBeta:       1.5,
			MinMoats:      1,
			WideMoatCount: 2,
		},
		Scoring: Scoring{
			QuantitativeWeight: 0.7,
			QualitativeWeight:  0.3,
			WideMoatPoints:     20,
			NarrowMoatPoints:   10,
			PayoutBonus:        10,
			PayoutBonusMax:     0.6,
		},
		Recommendation: Recommendation{
			MinScore:        60,
			BuyScore:        80,
			StrongScore:     85,
			BuyMargin:       25,
			StrongBuyMargin: 40,
		},
		PositionLimits: PositionLimits{
			MaxPct:       15,
			NormalPct:    10,
			ReducedPct:   5,
			MinimalPct:   3,
			LowBeta:      1.0,
			ElevatedBeta: 1.3,
			HighBeta:     1.5,
			MaxTierScore: 85,
			MaxTierMoats: 2,
		},
		Buckets: Buckets{
			ApprovedScore:  80,
			ApprovedMargin: 25,
			WatchMinScore:  60,
			RejectBelow:    60,
		},
		Portfolio: Portfolio{
			DefaultInvestor:     "Anonymous Investor",
			DefaultRiskFreeRate: 0.043,
			DefaultCapital:      100000,
		},
	}
}
