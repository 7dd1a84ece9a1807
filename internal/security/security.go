package security

import (
	"fmt"
	"slices"

	"github.com/wonny/moatscreen/internal/contracts"
	"github.com/wonny/moatscreen/internal/strategyconfig"
)

// Security is a screened equity: a sector variant owning a profile and a valuation strategy.
// Only AddMoat and SetStrategy mutate it after construction.
// ⭐ SSOT: 종목 단위 프로토콜 평가는 여기서만
type Security struct {
	ticker  string
	name    string
	sector  contracts.Sector
	price   float64
	beta    float64
	profile *contracts.FinancialProfile

	strategy contracts.ValuationStrategy
	moats    []contracts.Moat
	base     float64 // 섹터 기본 정성 점수

	protocol *strategyconfig.Config
}

// Option configures a Security at construction
type Option func(*Security)

// WithStrategy assigns the valuation strategy
func WithStrategy(s contracts.ValuationStrategy) Option {
	return func(sec *Security) { sec.strategy = s }
}

// WithProtocol overrides the protocol thresholds (default: strategyconfig.Default())
func WithProtocol(cfg *strategyconfig.Config) Option {
	return func(sec *Security) {
		if cfg != nil {
			sec.protocol = cfg
		}
	}
}

// WithMoats adds moat tags on top of the sector seeds
func WithMoats(moats ...contracts.Moat) Option {
	return func(sec *Security) {
		for _, m := range moats {
			sec.AddMoat(m)
		}
	}
}

// New validates and builds a Security.
// Price and beta are clamped to >= 0, an empty sector becomes General,
// and the sector's seed moats and base qualitative score are applied.
func New(ticker, name string, sector contracts.Sector, price, beta float64, profile *contracts.FinancialProfile, opts ...Option) (*Security, error) {
	ticker = contracts.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, fmt.Errorf("new security: %w", contracts.ErrEmptyTicker)
	}
	if profile == nil {
		return nil, fmt.Errorf("new security %s: %w", ticker, contracts.ErrNilProfile)
	}

	sector = sector.OrDefault()
	v := variantOf(sector)

	sec := &Security{
		ticker:   ticker,
		name:     name,
		sector:   sector,
		price:    contracts.NonNegative(price),
		beta:     contracts.NonNegative(beta),
		profile:  profile,
		base:     v.baseScore,
		protocol: strategyconfig.Default(),
	}
	for _, m := range v.seedMoats {
		sec.AddMoat(m)
	}
	for _, opt := range opts {
		opt(sec)
	}

	return sec, nil
}

func (s *Security) Ticker() string                        { return s.ticker }
func (s *Security) Name() string                          { return s.name }
func (s *Security) Sector() contracts.Sector              { return s.sector }
func (s *Security) Price() float64                        { return s.price }
func (s *Security) Beta() float64                         { return s.beta }
func (s *Security) Profile() *contracts.FinancialProfile  { return s.profile }
func (s *Security) Strategy() contracts.ValuationStrategy { return s.strategy }

// SectorRiskPremium returns the equity risk premium of the sector variant
func (s *Security) SectorRiskPremium() float64 {
	return variantOf(s.sector).riskPremium
}

// Moats returns a copy of the moat tags in insertion order
func (s *Security) Moats() []contracts.Moat {
	return append([]contracts.Moat(nil), s.moats...)
}

// MoatCount returns the number of distinct moat tags
func (s *Security) MoatCount() int {
	return len(s.moats)
}

// AddMoat adds a moat tag; MoatNone and duplicates are ignored
func (s *Security) AddMoat(m contracts.Moat) {
	if m == contracts.MoatNone || m == "" || slices.Contains(s.moats, m) {
		return
	}
	s.moats = append(s.moats, m)
}

// SetStrategy swaps the valuation strategy
func (s *Security) SetStrategy(strategy contracts.ValuationStrategy) {
	s.strategy = strategy
}

// StrategyName returns the strategy name, or "" when none is assigned
func (s *Security) StrategyName() string {
	if s.strategy == nil {
		return ""
	}
	return s.strategy.Name()
}

// FairPrice delegates to the assigned strategy.
// Panics when no strategy is assigned: the factory always sets one.
func (s *Security) FairPrice(riskFreeRate float64) float64 {
	if s.strategy == nil {
		panic(fmt.Sprintf("security %s: fair price requested without a valuation strategy", s.ticker))
	}
	return s.strategy.FairPrice(s, riskFreeRate)
}

// SafetyMargin returns (fair - price) / fair × 100; 0 when fair or price is not positive
func (s *Security) SafetyMargin(riskFreeRate float64) float64 {
	return SafetyMargin(s.FairPrice(riskFreeRate), s.price)
}

// SafetyMargin is the percentage discount of price below fair value
func SafetyMargin(fair, price float64) float64 {
	if fair <= 0 || price <= 0 {
		return 0
	}
	return (fair - price) / fair * 100
}

// ToPayload converts the security back into the input contract
func (s *Security) ToPayload() contracts.SecurityPayload {
	return contracts.SecurityPayload{
		Ticker:     s.ticker,
		Name:       s.name,
		Sector:     string(s.sector),
		Price:      s.price,
		Beta:       s.beta,
		Moats:      s.Moats(),
		Financials: s.profile.Metrics(),
	}
}

func (s *Security) String() string {
	return fmt.Sprintf("%s (%s) [%s] $%.2f beta %.2f", s.ticker, s.name, s.sector, s.price, s.beta)
}
