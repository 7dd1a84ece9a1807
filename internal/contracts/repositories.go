package contracts

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ⭐ SSOT: Repository 인터페이스 정의는 여기서만

// AnalysisRun is one persisted screening run
type AnalysisRun struct {
	ID           uuid.UUID        `json:"id"`
	CreatedAt    time.Time        `json:"created_at"`
	Investor     string           `json:"investor"`
	RiskFreeRate float64          `json:"risk_free_rate"`
	TotalCapital float64          `json:"total_capital"`
	ProtocolHash string           `json:"protocol_hash"`
	Stats        PortfolioStats   `json:"stats"`
	Analyses     []Analysis       `json:"analyses"`
	Allocation   AllocationReport `json:"allocation"`
}

// AnalysisRunRepository persists screening runs
type AnalysisRunRepository interface {
	SaveRun(ctx context.Context, run *AnalysisRun) error
	GetLatestRun(ctx context.Context) (*AnalysisRun, error)
	GetRun(ctx context.Context, id uuid.UUID) (*AnalysisRun, error)
	GetTickerHistory(ctx context.Context, ticker string, limit int) ([]Analysis, error)
}

// WatchlistItem is a ticker re-screened by the scheduler
type WatchlistItem struct {
	Ticker  string    `json:"ticker"`
	Note    string    `json:"note,omitempty"`
	AddedAt time.Time `json:"added_at"`
}

// WatchlistRepository stores the tickers to re-screen
type WatchlistRepository interface {
	ListWatchlist(ctx context.Context) ([]WatchlistItem, error)
	AddToWatchlist(ctx context.Context, ticker, note string) (*WatchlistItem, error)
	RemoveFromWatchlist(ctx context.Context, ticker string) error
}
