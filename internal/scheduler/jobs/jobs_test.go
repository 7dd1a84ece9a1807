package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/moatscreen/internal/contracts"
	"github.com/wonny/moatscreen/internal/screening"
)

type recordingScreener struct {
	tickers []string
	err     error
}

func (s *recordingScreener) Screen(ctx context.Context, tickers []string) (*screening.Result, error) {
	s.tickers = tickers
	if s.err != nil {
		return nil, s.err
	}
	return &screening.Result{Run: &contracts.AnalysisRun{ID: uuid.New()}}, nil
}

type failingWatchlist struct {
	contracts.WatchlistRepository
}

func (failingWatchlist) ListWatchlist(ctx context.Context) ([]contracts.WatchlistItem, error) {
	return nil, errors.New("db down")
}

func TestRescreenJob_UsesStoredWatchlist(t *testing.T) {
	store := screening.NewMemoryStore(0)
	_, err := store.AddToWatchlist(context.Background(), "MSFT", "")
	require.NoError(t, err)

	screener := &recordingScreener{}
	job := NewRescreenJob(screener, store, []string{"KO"}, "", nil)

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, []string{"MSFT"}, screener.tickers)
	assert.Equal(t, "rescreen_watchlist", job.Name())
	assert.Equal(t, "0 30 17 * * 1-5", job.Schedule())
}

func TestRescreenJob_FallbackList(t *testing.T) {
	tests := []struct {
		name      string
		watchlist contracts.WatchlistRepository
	}{
		{name: "no store", watchlist: nil},
		{name: "empty store", watchlist: screening.NewMemoryStore(0)},
		{name: "store error", watchlist: failingWatchlist{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			screener := &recordingScreener{}
			job := NewRescreenJob(screener, tt.watchlist, []string{"KO", "PG"}, "@daily", nil)

			require.NoError(t, job.Run(context.Background()))
			assert.Equal(t, []string{"KO", "PG"}, screener.tickers)
		})
	}
}

func TestRescreenJob_EmptyAndError(t *testing.T) {
	screener := &recordingScreener{}
	require.NoError(t, NewRescreenJob(screener, nil, nil, "", nil).Run(context.Background()))
	assert.Nil(t, screener.tickers)

	screener.err = contracts.ErrQuoteUnavailable
	err := NewRescreenJob(screener, nil, []string{"KO"}, "", nil).Run(context.Background())
	assert.ErrorIs(t, err, contracts.ErrQuoteUnavailable)
}

type stubRate struct {
	rate float64
	err  error
}

func (s stubRate) FetchTreasuryRate(ctx context.Context) (float64, error) {
	return s.rate, s.err
}

func TestRateRefreshJob(t *testing.T) {
	job := NewRateRefreshJob(stubRate{rate: 0.042}, nil)
	assert.NoError(t, job.Run(context.Background()))
	assert.Equal(t, "treasury_rate_refresh", job.Name())

	err := NewRateRefreshJob(stubRate{err: contracts.ErrQuoteUnavailable}, nil).Run(context.Background())
	assert.ErrorIs(t, err, contracts.ErrQuoteUnavailable)
}
