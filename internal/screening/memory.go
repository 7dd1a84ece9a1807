package screening

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/moatscreen/internal/contracts"
)

// MemoryStore keeps the most recent runs in process.
// Used when DATABASE_URL is empty so /api/runs/latest still answers.
type MemoryStore struct {
	mu        sync.RWMutex
	runs      []*contracts.AnalysisRun // oldest first
	maxRuns   int
	watchlist map[string]contracts.WatchlistItem
}

// NewMemoryStore keeps at most maxRuns runs (<= 0 means 50)
func NewMemoryStore(maxRuns int) *MemoryStore {
	if maxRuns <= 0 {
		maxRuns = 50
	}
	return &MemoryStore{
		maxRuns:   maxRuns,
		watchlist: make(map[string]contracts.WatchlistItem),
	}
}

var (
	_ contracts.AnalysisRunRepository = (*MemoryStore)(nil)
	_ contracts.WatchlistRepository   = (*MemoryStore)(nil)
)

func (m *MemoryStore) SaveRun(ctx context.Context, run *contracts.AnalysisRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs = append(m.runs, run)
	if len(m.runs) > m.maxRuns {
		m.runs = m.runs[len(m.runs)-m.maxRuns:]
	}
	return nil
}

func (m *MemoryStore) GetLatestRun(ctx context.Context) (*contracts.AnalysisRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.runs) == 0 {
		return nil, contracts.ErrRunNotFound
	}
	return m.runs[len(m.runs)-1], nil
}

func (m *MemoryStore) GetRun(ctx context.Context, id uuid.UUID) (*contracts.AnalysisRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, run := range m.runs {
		if run.ID == id {
			return run, nil
		}
	}
	return nil, fmt.Errorf("run %s: %w", id, contracts.ErrRunNotFound)
}

func (m *MemoryStore) GetTickerHistory(ctx context.Context, ticker string, limit int) ([]contracts.Analysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	ticker = contracts.NormalizeTicker(ticker)

	history := make([]contracts.Analysis, 0)
	for i := len(m.runs) - 1; i >= 0 && len(history) < limit; i-- {
		for _, a := range m.runs[i].Analyses {
			if a.Ticker == ticker {
				history = append(history, a)
				break
			}
		}
	}
	return history, nil
}

func (m *MemoryStore) ListWatchlist(ctx context.Context) ([]contracts.WatchlistItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]contracts.WatchlistItem, 0, len(m.watchlist))
	for _, item := range m.watchlist {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].AddedAt.Equal(items[j].AddedAt) {
			return items[i].Ticker < items[j].Ticker
		}
		return items[i].AddedAt.Before(items[j].AddedAt)
	})
	return items, nil
}

func (m *MemoryStore) AddToWatchlist(ctx context.Context, ticker, note string) (*contracts.WatchlistItem, error) {
	ticker = contracts.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, contracts.ErrEmptyTicker
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.watchlist[ticker]
	if !ok {
		item = contracts.WatchlistItem{Ticker: ticker, AddedAt: time.Now()}
	}
	item.Note = note
	m.watchlist[ticker] = item
	return &item, nil
}

func (m *MemoryStore) RemoveFromWatchlist(ctx context.Context, ticker string) error {
	ticker = contracts.NormalizeTicker(ticker)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.watchlist[ticker]; !ok {
		return fmt.Errorf("watchlist %s: %w", ticker, contracts.ErrNotFound)
	}
	delete(m.watchlist, ticker)
	return nil
}
