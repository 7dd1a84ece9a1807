package screening

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/moatscreen/internal/contracts"
)

func runWith(tickers ...string) *contracts.AnalysisRun {
	run := &contracts.AnalysisRun{ID: uuid.New()}
	for _, t := range tickers {
		run.Analyses = append(run.Analyses, contracts.Analysis{Ticker: t})
	}
	return run
}

func TestMemoryStore_Runs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(2)

	_, err := store.GetLatestRun(ctx)
	assert.ErrorIs(t, err, contracts.ErrRunNotFound)

	first, second, third := runWith("KO"), runWith("KO", "PG"), runWith("PG")
	for _, run := range []*contracts.AnalysisRun{first, second, third} {
		require.NoError(t, store.SaveRun(ctx, run))
	}

	latest, err := store.GetLatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, third.ID, latest.ID)

	// 최대 2개 보관: 가장 오래된 run은 제거됨
	_, err = store.GetRun(ctx, first.ID)
	assert.ErrorIs(t, err, contracts.ErrRunNotFound)
	got, err := store.GetRun(ctx, second.ID)
	require.NoError(t, err)
	assert.Same(t, second, got)

	history, err := store.GetTickerHistory(ctx, "pg", 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	history, err = store.GetTickerHistory(ctx, "PG", 1)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestMemoryStore_Watchlist(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	_, err := store.AddToWatchlist(ctx, "  ", "")
	assert.ErrorIs(t, err, contracts.ErrEmptyTicker)

	item, err := store.AddToWatchlist(ctx, "ko", "dividend")
	require.NoError(t, err)
	assert.Equal(t, "KO", item.Ticker)

	updated, err := store.AddToWatchlist(ctx, "KO", "moat check")
	require.NoError(t, err)
	assert.Equal(t, "moat check", updated.Note)
	assert.Equal(t, item.AddedAt, updated.AddedAt)

	_, err = store.AddToWatchlist(ctx, "PG", "")
	require.NoError(t, err)

	items, err := store.ListWatchlist(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.NoError(t, store.RemoveFromWatchlist(ctx, "ko"))
	assert.ErrorIs(t, store.RemoveFromWatchlist(ctx, "KO"), contracts.ErrNotFound)

	items, err = store.ListWatchlist(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "PG", items[0].Ticker)
}
