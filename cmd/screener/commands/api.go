package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/moatscreen/internal/api"
	"github.com/wonny/moatscreen/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET    /health                               - Health check
  GET    /api/securities/{ticker}/analysis     - 단일 종목 분석
  GET    /api/securities/{ticker}/history      - 종목 분석 이력
  POST   /api/portfolio/analyze                - 스크리닝 실행
  GET    /api/portfolio/report                 - 최근 리포트 (text)
  GET    /api/portfolio/rankings?order=score   - 최근 랭킹
  GET    /api/portfolio/allocation             - 최근 자본 배분
  GET    /api/portfolio/allocation/chart       - 배분 차트 (PNG)
  GET    /api/runs/latest                      - 최근 실행
  GET    /api/runs/{id}                        - 실행 조회
  GET    /api/protocol                         - 프로토콜 임계값
  GET    /api/watchlist                        - watchlist 조회
  POST   /api/watchlist                        - watchlist 추가
  DELETE /api/watchlist/{ticker}               - watchlist 삭제
  WS     /ws/reports                           - 실행 완료 알림

Example:
  go run ./cmd/screener api
  go run ./cmd/screener api --port 8080 --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort          string
	apiWithScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
	apiCmd.Flags().BoolVar(&apiWithScheduler, "with-scheduler", false, "같은 프로세스에서 스케줄러 실행")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(out, "=== Moatscreen API Server ===")

	a, err := newApp(cmd.Context(), appOptions{withHub: true})
	if err != nil {
		return err
	}
	defer a.close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	a.log.WithFields(map[string]interface{}{
		"port":     a.cfg.Port,
		"env":      a.cfg.Env,
		"protocol": a.service.ProtocolHash()[:12],
	}).Info("Initializing API server")

	screeningHandler := handlers.NewScreeningHandler(a.service, a.watchlist, a.log)
	router := api.NewRouter(screeningHandler, a.hub, a.log)
	server := api.New(a.cfg, a.log, router)
	server.OnShutdown(a.hub.Close)

	if apiWithScheduler {
		sched, err := a.newScheduler()
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	// Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Fprintf(out, "\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	a.log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
