package commands

import (
	"context"
	"fmt"

	"github.com/wonny/moatscreen/internal/contracts"
	"github.com/wonny/moatscreen/internal/flatfile"
	"github.com/wonny/moatscreen/internal/screening"
)

// screenInput selects what a screening command reads
type screenInput struct {
	tickers      []string
	file         string  // CSV of payloads, replaces the quote API
	riskFreeRate float64 // 0 = treasury rate with protocol fallback
}

// screen runs one batch from a CSV file, the given tickers or the watchlist, in that order
func (a *app) screen(ctx context.Context, in screenInput) (*screening.Result, error) {
	if in.file != "" {
		payloads, err := flatfile.LoadCSV(in.file)
		if err != nil {
			return nil, err
		}
		return a.service.ScreenPayloads(ctx, payloads, a.rate(ctx, in.riskFreeRate))
	}

	tickers := in.tickers
	if len(tickers) == 0 {
		var err error
		if tickers, err = a.watchlistTickers(ctx); err != nil {
			return nil, err
		}
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("no tickers given and watchlist is empty: %w", screening.ErrNoTickers)
	}

	if in.riskFreeRate <= 0 {
		return a.service.Screen(ctx, tickers)
	}

	payloads, err := a.quotes.FetchSecurities(ctx, tickers)
	if err != nil {
		return nil, err
	}
	return a.service.ScreenPayloads(ctx, payloads, in.riskFreeRate)
}

func (a *app) rate(ctx context.Context, override float64) float64 {
	if override > 0 {
		return override
	}
	return a.service.RiskFreeRate(ctx)
}

// watchlistTickers returns the stored watchlist, else WATCHLIST from config
func (a *app) watchlistTickers(ctx context.Context) ([]string, error) {
	items, err := a.watchlist.ListWatchlist(ctx)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}
	if len(items) == 0 {
		return a.cfg.Screening.Watchlist, nil
	}

	tickers := make([]string, len(items))
	for i, item := range items {
		tickers[i] = item.Ticker
	}
	return tickers, nil
}

func parseOrder(s string) (contracts.RankOrder, error) {
	order, ok := contracts.ParseRankOrder(s)
	if !ok {
		return "", fmt.Errorf("unknown order %q (want one of %v)", s, contracts.AllRankOrders())
	}
	return order, nil
}
