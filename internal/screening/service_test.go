package screening

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/moatscreen/internal/contracts"
	"github.com/wonny/moatscreen/internal/strategyconfig"
	"github.com/wonny/moatscreen/pkg/config"
	"github.com/wonny/moatscreen/pkg/redis"
)

func qualityMetrics() contracts.FinancialMetrics {
	return contracts.FinancialMetrics{
		EPS:               10,
		EarningsGrowth5Y:  0.08,
		DebtToEBITDA:      1.5,
		ROE:               0.40,
		ROIC:              0.16,
		NetMargin:         0.22,
		OperatingCashFlow: 1000,
		Capex:             -200,
		SharesOutstanding: 100,
		PayoutRatio:       0.5,
		TotalAssets:       10000,
		Goodwill:          500,
	}
}

func toxicMetrics() contracts.FinancialMetrics {
	return contracts.FinancialMetrics{
		EPS:               -1,
		DebtToEBITDA:      5,
		OperatingCashFlow: -10,
		SharesHistory:     []float64{1500, 1200, 1000},
	}
}

// stubQuotes serves fixed payloads and counts calls
type stubQuotes struct {
	mu        sync.Mutex
	payloads  map[string]contracts.SecurityPayload
	rate      float64
	rateErr   error
	batchErr  error
	calls     int
	lastBatch []string
}

func newStubQuotes() *stubQuotes {
	return &stubQuotes{
		rate: 0.040,
		payloads: map[string]contracts.SecurityPayload{
			"KO": {
				Ticker: "KO", Name: "Coca-Cola", Sector: "Consumer Defensive", Price: 100, Beta: 0.6,
				Moats: []contracts.Moat{contracts.MoatCostAdvantage}, Financials: qualityMetrics(),
			},
			"BAD": {
				Ticker: "BAD", Name: "Bad Co", Sector: "Conglomerate", Price: 20, Beta: 2.0,
				Financials: toxicMetrics(),
			},
		},
	}
}

func (s *stubQuotes) FetchSecurity(ctx context.Context, ticker string) (*contracts.SecurityPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	p, ok := s.payloads[ticker]
	if !ok {
		return nil, contracts.ErrQuoteNotFound
	}
	return &p, nil
}

func (s *stubQuotes) FetchSecurities(ctx context.Context, tickers []string) ([]contracts.SecurityPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastBatch = tickers
	if s.batchErr != nil {
		return nil, s.batchErr
	}
	out := make([]contracts.SecurityPayload, 0, len(tickers))
	for _, t := range tickers {
		if p, ok := s.payloads[t]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubQuotes) FetchTreasuryRate(ctx context.Context) (float64, error) {
	return s.rate, s.rateErr
}

type recordingNotifier struct {
	runs []*contracts.AnalysisRun
}

func (n *recordingNotifier) Publish(run *contracts.AnalysisRun) {
	n.runs = append(n.runs, run)
}

func newTestService(t *testing.T, quotes contracts.QuoteSource, opts ...Option) *Service {
	t.Helper()
	svc, err := NewService(quotes, nil, opts...)
	require.NoError(t, err)
	return svc
}

func TestNewService_Defaults(t *testing.T) {
	svc := newTestService(t, newStubQuotes())

	hash, err := strategyconfig.Hash(strategyconfig.Default())
	require.NoError(t, err)
	assert.Equal(t, hash, svc.ProtocolHash())
	assert.Equal(t, "fundamental_v1", svc.Protocol().Meta.ProtocolID)
}

func TestRiskFreeRate(t *testing.T) {
	quotes := newStubQuotes()
	svc := newTestService(t, quotes)
	assert.InDelta(t, 0.040, svc.RiskFreeRate(context.Background()), 1e-12)

	quotes.rateErr = errors.New("down")
	assert.InDelta(t, 0.043, svc.RiskFreeRate(context.Background()), 1e-12)

	quotes.rateErr = nil
	quotes.rate = 0
	assert.InDelta(t, 0.043, svc.RiskFreeRate(context.Background()), 1e-12)

	assert.InDelta(t, 0.043, newTestService(t, nil).RiskFreeRate(context.Background()), 1e-12)
}

func TestScreen(t *testing.T) {
	quotes := newStubQuotes()
	store := NewMemoryStore(0)
	notifier := &recordingNotifier{}
	svc := newTestService(t, quotes,
		WithRunStore(store),
		WithNotifier(notifier),
		WithInvestor("Test Investor", 200000),
	)

	result, err := svc.Screen(context.Background(), []string{" ko", "BAD", "KO", "MISSING"})
	require.NoError(t, err)

	assert.Equal(t, []string{"KO", "BAD", "MISSING"}, quotes.lastBatch)

	run := result.Run
	assert.NotEqual(t, uuid.Nil, run.ID)
	assert.Equal(t, "Test Investor", run.Investor)
	assert.InDelta(t, 0.040, run.RiskFreeRate, 1e-12)
	assert.Equal(t, 200000.0, run.TotalCapital)
	assert.Equal(t, svc.ProtocolHash(), run.ProtocolHash)

	assert.Equal(t, 2, run.Stats.Total)
	assert.Equal(t, 1, run.Stats.Approved)
	assert.Equal(t, 1, run.Stats.Rejected)
	require.Len(t, run.Analyses, 2)
	assert.Equal(t, "KO", run.Analyses[0].Ticker)
	assert.Equal(t, contracts.SectorConsumerStaples, run.Analyses[0].Sector)

	pos, ok := run.Allocation.GetPosition("KO")
	require.True(t, ok)
	assert.InDelta(t, 30000, pos.Capital, 1e-9)

	// 저장 + 알림 + 최신 결과
	latest, err := svc.LatestRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, run.ID, latest.ID)
	require.Len(t, notifier.runs, 1)
	assert.Equal(t, run.ID, notifier.runs[0].ID)

	held, ok := svc.Latest()
	require.True(t, ok)
	assert.Same(t, result, held)
	assert.True(t, strings.Contains(result.Report(), "Test Investor"))

	history, err := svc.TickerHistory(context.Background(), "ko", 5)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, run.Analyses[0], history[0])
}

func TestScreen_Errors(t *testing.T) {
	quotes := newStubQuotes()
	svc := newTestService(t, quotes)

	_, err := svc.Screen(context.Background(), []string{" ", ""})
	assert.ErrorIs(t, err, ErrNoTickers)

	_, err = svc.Screen(context.Background(), []string{"MISSING"})
	assert.ErrorIs(t, err, ErrNoSecurities)

	quotes.batchErr = contracts.ErrQuoteUnavailable
	_, err = svc.Screen(context.Background(), []string{"KO"})
	assert.ErrorIs(t, err, contracts.ErrQuoteUnavailable)

	_, err = newTestService(t, nil).Screen(context.Background(), []string{"KO"})
	assert.ErrorIs(t, err, contracts.ErrQuoteUnavailable)

	_, ok := svc.Latest()
	assert.False(t, ok)
}

func TestScreenPayloads_SkipsInvalidAndDuplicates(t *testing.T) {
	svc := newTestService(t, nil)
	quotes := newStubQuotes()

	payloads := []contracts.SecurityPayload{
		quotes.payloads["KO"],
		{Ticker: "", Name: "no ticker"},
		quotes.payloads["KO"],
	}
	result, err := svc.ScreenPayloads(context.Background(), payloads, 0.043)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Portfolio.Len())
	assert.Equal(t, 1, result.Run.Stats.Total)
}

func TestStoreDisabled(t *testing.T) {
	svc := newTestService(t, newStubQuotes())
	ctx := context.Background()

	_, err := svc.LatestRun(ctx)
	assert.ErrorIs(t, err, contracts.ErrStoreDisabled)
	_, err = svc.TickerHistory(ctx, "KO", 1)
	assert.ErrorIs(t, err, contracts.ErrStoreDisabled)
}

func TestAnalyzeTicker(t *testing.T) {
	quotes := newStubQuotes()
	svc := newTestService(t, quotes)

	a, err := svc.AnalyzeTicker(context.Background(), "ko")
	require.NoError(t, err)
	assert.Equal(t, "KO", a.Ticker)
	assert.Equal(t, contracts.RecommendationStrongBuy, a.Recommendation)

	_, err = svc.AnalyzeTicker(context.Background(), "NOPE")
	assert.ErrorIs(t, err, contracts.ErrQuoteNotFound)

	_, err = svc.AnalyzeTicker(context.Background(), "  ")
	assert.ErrorIs(t, err, contracts.ErrEmptyTicker)
}

func TestAnalyzeTicker_DisabledCache(t *testing.T) {
	client, err := redis.New(&config.Config{})
	require.NoError(t, err)

	quotes := newStubQuotes()
	svc := newTestService(t, quotes, WithCache(redis.NewCache(client, "test")))

	a, err := svc.AnalyzeTicker(context.Background(), "BAD")
	require.NoError(t, err)
	assert.Equal(t, contracts.RecommendationReject, a.Recommendation)
	assert.NotEmpty(t, a.Violations)
}

func TestNormalizeTickers(t *testing.T) {
	assert.Equal(t, []string{"KO", "PG"}, normalizeTickers([]string{"ko", " PG ", "", "Ko"}))
	assert.Empty(t, normalizeTickers(nil))
}
