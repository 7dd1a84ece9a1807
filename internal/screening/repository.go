package screening

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wonny/moatscreen/internal/contracts"
	"github.com/wonny/moatscreen/pkg/database"
)

// Repository persists screening runs and the watchlist in PostgreSQL
// ⭐ SSOT: 분석 이력 저장/조회는 여기서만
type Repository struct {
	db *database.DB
}

// NewRepository creates a new screening repository
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

var (
	_ contracts.AnalysisRunRepository = (*Repository)(nil)
	_ contracts.WatchlistRepository   = (*Repository)(nil)
)

// SaveRun stores the run header and one row per analysis in a single transaction
func (r *Repository) SaveRun(ctx context.Context, run *contracts.AnalysisRun) error {
	stats, err := json.Marshal(run.Stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	allocation, err := json.Marshal(run.Allocation)
	if err != nil {
		return fmt.Errorf("failed to marshal allocation: %w", err)
	}

	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO screening.analysis_runs (
				id, created_at, investor, risk_free_rate, total_capital, protocol_hash, stats, allocation
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, run.ID, run.CreatedAt, run.Investor, run.RiskFreeRate, run.TotalCapital, run.ProtocolHash, stats, allocation)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		query := `
			INSERT INTO screening.security_analyses (
				run_id, position, ticker, sector, final_score, margin, recommendation, analysis
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		for i, a := range run.Analyses {
			payload, err := json.Marshal(a)
			if err != nil {
				return fmt.Errorf("failed to marshal analysis %s: %w", a.Ticker, err)
			}
			_, err = tx.Exec(ctx, query,
				run.ID, i, a.Ticker, string(a.Sector), a.FinalScore, a.Margin, string(a.Recommendation), payload,
			)
			if err != nil {
				return fmt.Errorf("failed to insert analysis %s: %w", a.Ticker, err)
			}
		}
		return nil
	})
}

// GetLatestRun returns the most recent run
func (r *Repository) GetLatestRun(ctx context.Context) (*contracts.AnalysisRun, error) {
	var id uuid.UUID
	err := r.db.Pool.QueryRow(ctx,
		"SELECT id FROM screening.analysis_runs ORDER BY created_at DESC LIMIT 1",
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return r.GetRun(ctx, id)
}

// GetRun loads a run with its analyses in stored order
func (r *Repository) GetRun(ctx context.Context, id uuid.UUID) (*contracts.AnalysisRun, error) {
	run := &contracts.AnalysisRun{ID: id}
	var stats, allocation []byte

	err := r.db.Pool.QueryRow(ctx, `
		SELECT created_at, investor, risk_free_rate, total_capital, protocol_hash, stats, allocation
		FROM screening.analysis_runs
		WHERE id = $1
	`, id).Scan(
		&run.CreatedAt, &run.Investor, &run.RiskFreeRate, &run.TotalCapital,
		&run.ProtocolHash, &stats, &allocation,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, contracts.ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if err := json.Unmarshal(stats, &run.Stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats: %w", err)
	}
	if err := json.Unmarshal(allocation, &run.Allocation); err != nil {
		return nil, fmt.Errorf("failed to decode allocation: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT analysis
		FROM screening.security_analyses
		WHERE run_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	run.Analyses, err = scanAnalyses(rows)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// GetTickerHistory returns a ticker's analyses, newest run first
func (r *Repository) GetTickerHistory(ctx context.Context, ticker string, limit int) ([]contracts.Analysis, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT sa.analysis
		FROM screening.security_analyses sa
		JOIN screening.analysis_runs ar ON ar.id = sa.run_id
		WHERE sa.ticker = $1
		ORDER BY ar.created_at DESC
		LIMIT $2
	`, contracts.NormalizeTicker(ticker), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticker history: %w", err)
	}
	defer rows.Close()

	return scanAnalyses(rows)
}

func scanAnalyses(rows pgx.Rows) ([]contracts.Analysis, error) {
	analyses := make([]contracts.Analysis, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		var a contracts.Analysis
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("failed to decode analysis: %w", err)
		}
		analyses = append(analyses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return analyses, nil
}

// ListWatchlist returns every watchlist ticker, oldest first
func (r *Repository) ListWatchlist(ctx context.Context) ([]contracts.WatchlistItem, error) {
	rows, err := r.db.Pool.Query(ctx,
		"SELECT ticker, note, added_at FROM screening.watchlist ORDER BY added_at, ticker",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	items := make([]contracts.WatchlistItem, 0)
	for rows.Next() {
		var item contracts.WatchlistItem
		if err := rows.Scan(&item.Ticker, &item.Note, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return items, nil
}

// AddToWatchlist inserts a ticker or updates its note
func (r *Repository) AddToWatchlist(ctx context.Context, ticker, note string) (*contracts.WatchlistItem, error) {
	ticker = contracts.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, contracts.ErrEmptyTicker
	}

	var item contracts.WatchlistItem
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO screening.watchlist (ticker, note)
		VALUES ($1, $2)
		ON CONFLICT (ticker) DO UPDATE SET note = EXCLUDED.note
		RETURNING ticker, note, added_at
	`, ticker, note).Scan(&item.Ticker, &item.Note, &item.AddedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add watchlist item: %w", err)
	}
	return &item, nil
}

// RemoveFromWatchlist deletes a ticker
func (r *Repository) RemoveFromWatchlist(ctx context.Context, ticker string) error {
	tag, err := r.db.Pool.Exec(ctx,
		"DELETE FROM screening.watchlist WHERE ticker = $1",
		contracts.NormalizeTicker(ticker),
	)
	if err != nil {
		return fmt.Errorf("failed to delete watchlist item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("watchlist %s: %w", ticker, contracts.ErrNotFound)
	}
	return nil
}
