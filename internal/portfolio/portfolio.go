package portfolio

import (
	"fmt"
	"strings"

	"github.com/wonny/moatscreen/internal/contracts"
	"github.com/wonny/moatscreen/internal/security"
	"github.com/wonny/moatscreen/internal/strategyconfig"
	"github.com/wonny/moatscreen/pkg/logger"
)

// Portfolio is an insertion-ordered collection of unique securities.
// Not safe for concurrent mutation: build one per request or job.
// ⭐ SSOT: 포트폴리오 집계 (분류/랭킹/배분/통계/리포트)
type Portfolio struct {
	investor     string
	riskFreeRate float64
	totalCapital float64

	securities []*security.Security
	index      map[string]int // ticker → position in securities

	protocol *strategyconfig.Config
	logger   *logger.Logger
}

// Option configures a Portfolio
type Option func(*Portfolio)

// WithProtocol overrides the bucket thresholds (default: strategyconfig.Default())
func WithProtocol(cfg *strategyconfig.Config) Option {
	return func(p *Portfolio) {
		if cfg != nil {
			p.protocol = cfg
		}
	}
}

// WithLogger sets the logger (default: discard)
func WithLogger(log *logger.Logger) Option {
	return func(p *Portfolio) {
		if log != nil {
			p.logger = log.WithComponent("portfolio")
		}
	}
}

// New validates and creates an empty portfolio
func New(investor string, riskFreeRate, totalCapital float64, opts ...Option) (*Portfolio, error) {
	investor = strings.TrimSpace(investor)
	if investor == "" {
		return nil, fmt.Errorf("new portfolio: %w", contracts.ErrBlankInvestor)
	}
	if riskFreeRate < 0 {
		return nil, fmt.Errorf("new portfolio: %w", contracts.ErrInvalidRate)
	}
	if totalCapital <= 0 {
		return nil, fmt.Errorf("new portfolio: %w", contracts.ErrInvalidCapital)
	}

	p := &Portfolio{
		investor:     investor,
		riskFreeRate: riskFreeRate,
		totalCapital: totalCapital,
		index:        make(map[string]int),
		protocol:     strategyconfig.Default(),
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Default creates a portfolio with the protocol's default investor, rate and capital
func Default(opts ...Option) *Portfolio {
	d := strategyconfig.Default().Portfolio
	p, _ := New(d.DefaultInvestor, d.DefaultRiskFreeRate, d.DefaultCapital, opts...)
	return p
}

func (p *Portfolio) Investor() string      { return p.investor }
func (p *Portfolio) RiskFreeRate() float64 { return p.riskFreeRate }
func (p *Portfolio) TotalCapital() float64 { return p.totalCapital }
func (p *Portfolio) Len() int              { return len(p.securities) }

// Add inserts a security. A duplicate ticker fails and leaves the portfolio unchanged.
func (p *Portfolio) Add(sec *security.Security) error {
	if sec == nil {
		return fmt.Errorf("add security: %w", contracts.ErrNilSecurity)
	}
	key := sec.Ticker()
	if _, exists := p.index[key]; exists {
		return fmt.Errorf("add %s: %w", key, contracts.ErrDuplicateTicker)
	}

	p.index[key] = len(p.securities)
	p.securities = append(p.securities, sec)

	p.logger.WithTicker(key).WithFields(map[string]interface{}{
		"sector": string(sec.Sector()),
		"count":  len(p.securities),
	}).Debug("Security added")
	return nil
}

// Remove deletes a security by ticker (case-insensitive)
func (p *Portfolio) Remove(ticker string) error {
	key := contracts.NormalizeTicker(ticker)
	i, exists := p.index[key]
	if !exists {
		return fmt.Errorf("remove %s: %w", key, contracts.ErrNotFound)
	}

	p.securities = append(p.securities[:i], p.securities[i+1:]...)
	delete(p.index, key)
	for j := i; j < len(p.securities); j++ {
		p.index[p.securities[j].Ticker()] = j
	}

	p.logger.WithTicker(key).Debug("Security removed")
	return nil
}

// Find returns a security by ticker (case-insensitive)
func (p *Portfolio) Find(ticker string) (*security.Security, bool) {
	i, exists := p.index[contracts.NormalizeTicker(ticker)]
	if !exists {
		return nil, false
	}
	return p.securities[i], true
}

// Securities returns the securities in insertion order
func (p *Portfolio) Securities() []*security.Security {
	return append([]*security.Security(nil), p.securities...)
}

// Analyses evaluates every security at the portfolio's risk-free rate, in insertion order
func (p *Portfolio) Analyses() []contracts.Analysis {
	out := make([]contracts.Analysis, 0, len(p.securities))
	for _, sec := range p.securities {
		out = append(out, sec.Analyze(p.riskFreeRate))
	}
	return out
}
