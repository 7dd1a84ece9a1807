package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/wonny/moatscreen/internal/contracts"
	"github.com/wonny/moatscreen/internal/portfolio"
	"github.com/wonny/moatscreen/internal/screening"
	"github.com/wonny/moatscreen/pkg/logger"
)

// ScreeningHandler handles screening API endpoints
// ⭐ SSOT: 스크리닝 API 핸들러는 이 구조체에서만
type ScreeningHandler struct {
	service   *screening.Service
	watchlist contracts.WatchlistRepository
	logger    *logger.Logger
}

// NewScreeningHandler creates a new screening handler.
// watchlist may be nil; watchlist endpoints then answer 503.
func NewScreeningHandler(service *screening.Service, watchlist contracts.WatchlistRepository, log *logger.Logger) *ScreeningHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ScreeningHandler{
		service:   service,
		watchlist: watchlist,
		logger:    log.WithComponent("api"),
	}
}

// AnalyzeRequest is the body of POST /api/portfolio/analyze.
// Securities take precedence over tickers when both are given.
type AnalyzeRequest struct {
	Tickers      []string                    `json:"tickers"`
	Securities   []contracts.SecurityPayload `json:"securities"`
	RiskFreeRate float64                     `json:"risk_free_rate"`
}

// WatchlistRequest is the body of POST /api/watchlist
type WatchlistRequest struct {
	Ticker string `json:"ticker"`
	Note   string `json:"note"`
}

// GetAnalysis analyzes a single ticker
// GET /api/securities/{ticker}/analysis
func (h *ScreeningHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]

	analysis, err := h.service.AnalyzeTicker(r.Context(), ticker)
	if err != nil {
		h.fail(w, err, "Failed to analyze ticker")
		return
	}

	respondJSON(w, http.StatusOK, analysis)
}

// GetHistory returns stored analyses of a ticker, newest first
// GET /api/securities/{ticker}/history?limit=20
func (h *ScreeningHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ticker := contracts.NormalizeTicker(mux.Vars(r)["ticker"])
	if ticker == "" {
		respondError(w, http.StatusBadRequest, contracts.ErrEmptyTicker.Error())
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	history, err := h.service.TickerHistory(r.Context(), ticker, limit)
	if err != nil {
		h.fail(w, err, "Failed to load history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":   ticker,
		"count":    len(history),
		"analyses": history,
	})
}

// Analyze screens a batch of tickers or inline payloads
// POST /api/portfolio/analyze
func (h *ScreeningHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	var (
		result *screening.Result
		err    error
	)
	switch {
	case len(req.Securities) > 0:
		rf := req.RiskFreeRate
		if rf <= 0 {
			rf = h.service.RiskFreeRate(ctx)
		}
		result, err = h.service.ScreenPayloads(ctx, req.Securities, rf)
	case len(req.Tickers) > 0:
		result, err = h.service.Screen(ctx, req.Tickers)
	default:
		respondError(w, http.StatusBadRequest, "tickers or securities required")
		return
	}
	if err != nil {
		h.fail(w, err, "Screening failed")
		return
	}

	respondJSON(w, http.StatusOK, result.Run)
}

// GetReport returns the text report of the latest run
// GET /api/portfolio/report
func (h *ScreeningHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	result, ok := h.latest(w)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(result.Report()))
}

// GetRankings ranks the latest run
// GET /api/portfolio/rankings?order=score|margin|score_margin|beta|sector
func (h *ScreeningHandler) GetRankings(w http.ResponseWriter, r *http.Request) {
	order := contracts.RankByScore
	if s := r.URL.Query().Get("order"); s != "" {
		parsed, ok := contracts.ParseRankOrder(s)
		if !ok {
			respondError(w, http.StatusBadRequest, "unknown order: "+s)
			return
		}
		order = parsed
	}

	result, ok := h.latest(w)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":   result.Run.ID,
		"order":    order,
		"rankings": portfolio.Rank(result.Run.Analyses, order),
	})
}

// GetAllocation returns the allocation of the latest run, optionally constrained
// GET /api/portfolio/allocation?max_positions=&exclude=
func (h *ScreeningHandler) GetAllocation(w http.ResponseWriter, r *http.Request) {
	constraints, err := parseConstraints(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, ok := h.latest(w)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, portfolio.Constrain(&result.Run.Allocation, constraints))
}

// parseConstraints reads ?max_positions=N&exclude=A,B
func parseConstraints(r *http.Request) (portfolio.Constraints, error) {
	c := portfolio.DefaultConstraints()
	q := r.URL.Query()

	if v := q.Get("max_positions"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c, errors.New("max_positions must be a non-negative integer")
		}
		c.MaxPositions = n
	}
	for _, t := range strings.Split(q.Get("exclude"), ",") {
		if t = contracts.NormalizeTicker(t); t != "" {
			c.BlackList = append(c.BlackList, t)
		}
	}
	return c, nil
}

// GetAllocationChart renders the latest allocation as a PNG pie chart
// GET /api/portfolio/allocation/chart
func (h *ScreeningHandler) GetAllocationChart(w http.ResponseWriter, r *http.Request) {
	result, ok := h.latest(w)
	if !ok {
		return
	}

	png, err := portfolio.RenderAllocationChart(&result.Run.Allocation)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// GetLatestRun returns the most recent stored run, or the in-process one when no store is configured
// GET /api/runs/latest
func (h *ScreeningHandler) GetLatestRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.LatestRun(r.Context())
	if errors.Is(err, contracts.ErrStoreDisabled) {
		if result, ok := h.service.Latest(); ok {
			respondJSON(w, http.StatusOK, result.Run)
			return
		}
		err = contracts.ErrRunNotFound
	}
	if err != nil {
		h.fail(w, err, "Failed to load latest run")
		return
	}

	respondJSON(w, http.StatusOK, run)
}

// GetRun returns a stored run
// GET /api/runs/{id}
func (h *ScreeningHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	run, err := h.service.Run(r.Context(), id)
	if err != nil {
		h.fail(w, err, "Failed to load run")
		return
	}

	respondJSON(w, http.StatusOK, run)
}

// GetProtocol returns the active screening protocol and its hash
// GET /api/protocol
func (h *ScreeningHandler) GetProtocol(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"hash":     h.service.ProtocolHash(),
		"protocol": h.service.Protocol(),
	})
}

// ListWatchlist returns the watchlist
// GET /api/watchlist
func (h *ScreeningHandler) ListWatchlist(w http.ResponseWriter, r *http.Request) {
	if h.watchlist == nil {
		h.fail(w, contracts.ErrStoreDisabled, "Watchlist unavailable")
		return
	}

	items, err := h.watchlist.ListWatchlist(r.Context())
	if err != nil {
		h.fail(w, err, "Failed to list watchlist")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(items),
		"items": items,
	})
}

// AddToWatchlist adds or updates a watchlist entry
// POST /api/watchlist
func (h *ScreeningHandler) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	if h.watchlist == nil {
		h.fail(w, contracts.ErrStoreDisabled, "Watchlist unavailable")
		return
	}

	var req WatchlistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ticker := contracts.NormalizeTicker(req.Ticker)
	if ticker == "" {
		respondError(w, http.StatusBadRequest, contracts.ErrEmptyTicker.Error())
		return
	}

	item, err := h.watchlist.AddToWatchlist(r.Context(), ticker, strings.TrimSpace(req.Note))
	if err != nil {
		h.fail(w, err, "Failed to add to watchlist")
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

// RemoveFromWatchlist deletes a watchlist entry
// DELETE /api/watchlist/{ticker}
func (h *ScreeningHandler) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	if h.watchlist == nil {
		h.fail(w, contracts.ErrStoreDisabled, "Watchlist unavailable")
		return
	}

	ticker := contracts.NormalizeTicker(mux.Vars(r)["ticker"])
	if err := h.watchlist.RemoveFromWatchlist(r.Context(), ticker); err != nil {
		h.fail(w, err, "Failed to remove from watchlist")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// latest writes 404 when nothing has been screened yet
func (h *ScreeningHandler) latest(w http.ResponseWriter) (*screening.Result, bool) {
	result, ok := h.service.Latest()
	if !ok {
		respondError(w, http.StatusNotFound, "no screening run yet")
		return nil, false
	}
	return result, true
}

// fail maps err to a status and logs server-side failures
func (h *ScreeningHandler) fail(w http.ResponseWriter, err error, msg string) {
	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).Error(msg)
	}
	respondError(w, status, err.Error())
}

// statusFromError maps domain errors to HTTP status codes
// ⭐ SSOT: 에러 → 상태코드 매핑은 여기서만
func statusFromError(err error) int {
	switch {
	case errors.Is(err, screening.ErrNoSecurities):
		return http.StatusUnprocessableEntity
	case errors.Is(err, contracts.ErrEmptyTicker),
		errors.Is(err, screening.ErrNoTickers):
		return http.StatusBadRequest
	case errors.Is(err, contracts.ErrQuoteNotFound),
		errors.Is(err, contracts.ErrRunNotFound),
		errors.Is(err, contracts.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, contracts.ErrQuoteUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, contracts.ErrStoreDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
