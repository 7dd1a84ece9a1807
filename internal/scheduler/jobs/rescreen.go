package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/moatscreen/internal/contracts"
	"github.com/wonny/moatscreen/internal/screening"
	"github.com/wonny/moatscreen/pkg/logger"
)

// Screener runs a screening batch (screening.Service)
type Screener interface {
	Screen(ctx context.Context, tickers []string) (*screening.Result, error)
}

// RescreenJob re-screens the watchlist on a schedule.
// The stored watchlist wins; the configured list is used when it is empty or unavailable.
type RescreenJob struct {
	screener  Screener
	watchlist contracts.WatchlistRepository
	fallback  []string
	schedule  string
	logger    *logger.Logger
}

// NewRescreenJob creates a new rescreen job. watchlist may be nil.
func NewRescreenJob(screener Screener, watchlist contracts.WatchlistRepository, fallback []string, schedule string, log *logger.Logger) *RescreenJob {
	if schedule == "" {
		schedule = "0 30 17 * * 1-5" // 평일 17:30
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RescreenJob{
		screener:  screener,
		watchlist: watchlist,
		fallback:  fallback,
		schedule:  schedule,
		logger:    log,
	}
}

// Name returns the job name
func (j *RescreenJob) Name() string {
	return "rescreen_watchlist"
}

// Schedule returns the cron schedule
func (j *RescreenJob) Schedule() string {
	return j.schedule
}

// Run screens the current watchlist
func (j *RescreenJob) Run(ctx context.Context) error {
	tickers := j.tickers(ctx)
	if len(tickers) == 0 {
		j.logger.Warn("Watchlist is empty, nothing to rescreen")
		return nil
	}

	result, err := j.screener.Screen(ctx, tickers)
	if err != nil {
		return fmt.Errorf("rescreen %d tickers: %w", len(tickers), err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":   result.Run.ID.String(),
		"tickers":  len(tickers),
		"approved": result.Run.Stats.Approved,
	}).Info("Watchlist rescreened")

	return nil
}

func (j *RescreenJob) tickers(ctx context.Context) []string {
	if j.watchlist != nil {
		items, err := j.watchlist.ListWatchlist(ctx)
		if err != nil {
			j.logger.WithError(err).Warn("Failed to load watchlist, using configured list")
		} else if len(items) > 0 {
			tickers := make([]string, len(items))
			for i, item := range items {
				tickers[i] = item.Ticker
			}
			return tickers
		}
	}
	return j.fallback
}
