package api

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/moatscreen/internal/api/handlers"
	"github.com/wonny/moatscreen/internal/api/ws"
	"github.com/wonny/moatscreen/pkg/logger"
)

// NewRouter creates and configures the HTTP router.
// hub may be nil; /ws/reports is then not mounted.
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(screeningHandler *handlers.ScreeningHandler, hub *ws.Hub, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// 실시간 리포트 구독
	if hub != nil {
		r.Handle("/ws/reports", hub)
	}

	api := r.PathPrefix("/api").Subrouter()

	// Security endpoints
	api.HandleFunc("/securities/{ticker}/analysis", screeningHandler.GetAnalysis).Methods("GET")
	api.HandleFunc("/securities/{ticker}/history", screeningHandler.GetHistory).Methods("GET")

	// Portfolio endpoints
	api.HandleFunc("/portfolio/analyze", screeningHandler.Analyze).Methods("POST")
	api.HandleFunc("/portfolio/report", screeningHandler.GetReport).Methods("GET")
	api.HandleFunc("/portfolio/rankings", screeningHandler.GetRankings).Methods("GET")
	api.HandleFunc("/portfolio/allocation", screeningHandler.GetAllocation).Methods("GET")
	api.HandleFunc("/portfolio/allocation/chart", screeningHandler.GetAllocationChart).Methods("GET")

	// Run endpoints
	api.HandleFunc("/runs/latest", screeningHandler.GetLatestRun).Methods("GET")
	api.HandleFunc("/runs/{id}", screeningHandler.GetRun).Methods("GET")

	api.HandleFunc("/protocol", screeningHandler.GetProtocol).Methods("GET")

	// Watchlist endpoints
	api.HandleFunc("/watchlist", screeningHandler.ListWatchlist).Methods("GET")
	api.HandleFunc("/watchlist", screeningHandler.AddToWatchlist).Methods("POST")
	api.HandleFunc("/watchlist/{ticker}", screeningHandler.RemoveFromWatchlist).Methods("DELETE")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "moatscreen-api",
	})
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack passes through to the underlying writer for /ws/reports upgrades
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

// loggingMiddleware logs every request, 5xx responses at warn level
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			entry := log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			})
			if rec.status >= http.StatusInternalServerError {
				entry.Warn("HTTP request failed")
				return
			}
			entry.Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
