package screening

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/moatscreen/internal/contracts"
	"github.com/wonny/moatscreen/internal/factory"
	"github.com/wonny/moatscreen/internal/portfolio"
	"github.com/wonny/moatscreen/internal/strategyconfig"
	"github.com/wonny/moatscreen/pkg/logger"
	"github.com/wonny/moatscreen/pkg/redis"
)

var (
	ErrNoTickers    = errors.New("no tickers to screen")
	ErrNoSecurities = errors.New("no valid securities in batch")
)

// Notifier receives every completed run (websocket hub)
type Notifier interface {
	Publish(run *contracts.AnalysisRun)
}

// Result is a completed screening run with the portfolio it was computed from.
// The portfolio is read-only once the result is returned.
type Result struct {
	Run       *contracts.AnalysisRun
	Portfolio *portfolio.Portfolio
}

// Report renders the text report of the run
func (r *Result) Report() string {
	return r.Portfolio.Report()
}

// Service runs the quote → factory → portfolio → store pipeline
// ⭐ SSOT: 스크리닝 실행 흐름은 여기서만
type Service struct {
	quotes       contracts.QuoteSource
	factory      *factory.Factory
	protocol     *strategyconfig.Config
	protocolHash string

	runs     contracts.AnalysisRunRepository
	cache    *redis.Cache
	notifier Notifier
	logger   *logger.Logger

	investor string
	capital  float64

	mu     sync.RWMutex
	latest *Result
}

// Option configures a Service
type Option func(*Service)

// WithRunStore persists every run
func WithRunStore(runs contracts.AnalysisRunRepository) Option {
	return func(s *Service) { s.runs = runs }
}

// WithCache caches single-ticker analyses
func WithCache(cache *redis.Cache) Option {
	return func(s *Service) { s.cache = cache }
}

// WithNotifier publishes completed runs
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithInvestor overrides the protocol's default investor and capital
func WithInvestor(name string, capital float64) Option {
	return func(s *Service) {
		if name != "" {
			s.investor = name
		}
		if capital > 0 {
			s.capital = capital
		}
	}
}

// WithLogger sets the logger (default: discard)
func WithLogger(log *logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// NewService creates a screening service. A nil protocol means strategyconfig.Default().
func NewService(quotes contracts.QuoteSource, protocol *strategyconfig.Config, opts ...Option) (*Service, error) {
	if protocol == nil {
		protocol = strategyconfig.Default()
	}
	hash, err := strategyconfig.Hash(protocol)
	if err != nil {
		return nil, fmt.Errorf("hash protocol: %w", err)
	}

	s := &Service{
		quotes:       quotes,
		protocol:     protocol,
		protocolHash: hash,
		logger:       logger.Nop(),
		investor:     protocol.Portfolio.DefaultInvestor,
		capital:      protocol.Portfolio.DefaultCapital,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("screening")
	s.factory = factory.New(protocol, s.logger)
	return s, nil
}

// Protocol returns the active protocol thresholds
func (s *Service) Protocol() *strategyconfig.Config { return s.protocol }

// ProtocolHash returns the sha256 of the active protocol
func (s *Service) ProtocolHash() string { return s.protocolHash }

// RiskFreeRate asks the quote source, falling back to the protocol default on error
func (s *Service) RiskFreeRate(ctx context.Context) float64 {
	fallback := s.protocol.Portfolio.DefaultRiskFreeRate
	if s.quotes == nil {
		return fallback
	}

	rate, err := s.quotes.FetchTreasuryRate(ctx)
	if err != nil || rate <= 0 {
		s.logger.WithError(err).WithField("fallback", fallback).Warn("Treasury rate unavailable, using default")
		return fallback
	}
	return rate
}

// Screen fetches quotes for tickers and runs a full screening
func (s *Service) Screen(ctx context.Context, tickers []string) (*Result, error) {
	tickers = normalizeTickers(tickers)
	if len(tickers) == 0 {
		return nil, ErrNoTickers
	}
	if s.quotes == nil {
		return nil, fmt.Errorf("screen: %w", contracts.ErrQuoteUnavailable)
	}

	rf := s.RiskFreeRate(ctx)

	payloads, err := s.quotes.FetchSecurities(ctx, tickers)
	if err != nil {
		return nil, fmt.Errorf("fetch securities: %w", err)
	}

	return s.ScreenPayloads(ctx, payloads, rf)
}

// ScreenPayloads screens already-fetched payloads (file import, request body)
func (s *Service) ScreenPayloads(ctx context.Context, payloads []contracts.SecurityPayload, riskFreeRate float64) (*Result, error) {
	start := time.Now()

	securities, buildErr := s.factory.BuildAll(payloads)
	if len(securities) == 0 {
		return nil, errors.Join(ErrNoSecurities, buildErr)
	}

	p, err := portfolio.New(s.investor, riskFreeRate, s.capital,
		portfolio.WithProtocol(s.protocol),
		portfolio.WithLogger(s.logger),
	)
	if err != nil {
		return nil, err
	}

	for _, sec := range securities {
		if err := p.Add(sec); err != nil {
			s.logger.WithTicker(sec.Ticker()).WithError(err).Warn("Skipping security")
		}
	}

	run := &contracts.AnalysisRun{
		ID:           uuid.New(),
		CreatedAt:    time.Now().UTC(),
		Investor:     p.Investor(),
		RiskFreeRate: p.RiskFreeRate(),
		TotalCapital: p.TotalCapital(),
		ProtocolHash: s.protocolHash,
		Stats:        p.Stats(),
		Analyses:     p.Analyses(),
		Allocation:   *p.Allocation(),
	}

	if s.runs != nil {
		if err := s.runs.SaveRun(ctx, run); err != nil {
			// 저장 실패해도 결과는 반환
			s.logger.WithRun(run.ID.String()).WithError(err).Error("Failed to persist run")
		}
	}

	result := &Result{Run: run, Portfolio: p}
	s.mu.Lock()
	s.latest = result
	s.mu.Unlock()

	if s.notifier != nil {
		s.notifier.Publish(run)
	}

	s.logger.WithRun(run.ID.String()).WithFields(map[string]interface{}{
		"total":    run.Stats.Total,
		"approved": run.Stats.Approved,
		"watched":  run.Stats.Watched,
		"rejected": run.Stats.Rejected,
		"rf":       riskFreeRate,
		"duration": time.Since(start).String(),
	}).Info("Screening completed")

	return result, nil
}

// Latest returns the most recent result screened by this process
func (s *Service) Latest() (*Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.latest != nil
}

// AnalyzeTicker analyzes one security, cached per protocol when Redis is on
func (s *Service) AnalyzeTicker(ctx context.Context, ticker string) (*contracts.Analysis, error) {
	ticker = contracts.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, contracts.ErrEmptyTicker
	}
	if s.quotes == nil {
		return nil, fmt.Errorf("analyze %s: %w", ticker, contracts.ErrQuoteUnavailable)
	}

	compute := func() (interface{}, error) {
		rf := s.RiskFreeRate(ctx)
		payload, err := s.quotes.FetchSecurity(ctx, ticker)
		if err != nil {
			return nil, err
		}
		sec, err := s.factory.Build(*payload)
		if err != nil {
			return nil, err
		}
		return sec.Analyze(rf), nil
	}

	if s.cache == nil {
		v, err := compute()
		if err != nil {
			return nil, fmt.Errorf("analyze %s: %w", ticker, err)
		}
		a := v.(contracts.Analysis)
		return &a, nil
	}

	var a contracts.Analysis
	if err := s.cache.GetOrSet(ctx, redis.AnalysisKey(ticker, s.protocolHash), &a, redis.TTLShort, compute); err != nil {
		return nil, fmt.Errorf("analyze %s: %w", ticker, err)
	}
	return &a, nil
}

// LatestRun returns the most recent persisted run
func (s *Service) LatestRun(ctx context.Context) (*contracts.AnalysisRun, error) {
	if s.runs == nil {
		return nil, contracts.ErrStoreDisabled
	}
	return s.runs.GetLatestRun(ctx)
}

// Run returns a persisted run by id
func (s *Service) Run(ctx context.Context, id uuid.UUID) (*contracts.AnalysisRun, error) {
	if s.runs == nil {
		return nil, contracts.ErrStoreDisabled
	}
	return s.runs.GetRun(ctx, id)
}

// TickerHistory returns a ticker's past analyses, newest first
func (s *Service) TickerHistory(ctx context.Context, ticker string, limit int) ([]contracts.Analysis, error) {
	if s.runs == nil {
		return nil, contracts.ErrStoreDisabled
	}
	return s.runs.GetTickerHistory(ctx, ticker, limit)
}

// normalizeTickers trims, uppercases and de-duplicates, keeping first occurrence order
func normalizeTickers(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = contracts.NormalizeTicker(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
