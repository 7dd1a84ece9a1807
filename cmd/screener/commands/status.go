package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "의존 서비스 상태 점검",
	Long: `스크리너가 사용하는 외부 의존성을 점검합니다.

점검 항목:
- Quote API (/api/status)
- 무위험 이자율 (국채 10년물)
- PostgreSQL (run store)
- Redis (cache, rate limit)

Example:
  go run ./cmd/screener status
  go run ./cmd/screener status --timeout 10s`,
	RunE: runStatus,
}

var statusTimeout time.Duration

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().DurationVar(&statusTimeout, "timeout", 5*time.Second, "점검 타임아웃")
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithTimeout(cmd.Context(), statusTimeout)
	defer cancel()

	PrintHeader("Dependency Status",
		"Env", a.cfg.Env,
		"Protocol", a.service.Protocol().Meta.ProtocolID+" "+a.service.Protocol().Meta.Version,
	)

	healthy := true
	check := func(name string, err error, detail string) {
		if err != nil {
			healthy = false
			PrintError(fmt.Sprintf("%-10s %v", name, err))
			return
		}
		PrintSuccess(fmt.Sprintf("%-10s %s", name, detail))
	}

	check("Quote API", a.quotes.Status(ctx), a.cfg.Quote.BaseURL)

	rate, err := a.quotes.FetchTreasuryRate(ctx)
	if err != nil {
		PrintWarning(fmt.Sprintf("Treasury rate unavailable, fallback %.2f%% will be used", a.service.Protocol().Portfolio.DefaultRiskFreeRate*100))
	} else {
		PrintSuccess(fmt.Sprintf("%-10s %.2f%%", "Treasury", rate*100))
	}

	if a.db == nil {
		PrintInfo("Database   disabled (in-memory run store)")
	} else {
		hs, err := a.db.HealthCheck(ctx)
		detail := ""
		if hs != nil {
			detail = fmt.Sprintf("%v, %d/%d conns", hs.ResponseTime, hs.Stats.TotalConns, hs.Stats.MaxConns)
		}
		check("Database", err, detail)
	}

	if !a.redis.Enabled() {
		PrintInfo("Redis      disabled (no cache, local rate limiter)")
	} else {
		check("Redis", a.redis.Ping(ctx), "ok")
	}

	if !healthy {
		return fmt.Errorf("one or more dependencies are unhealthy")
	}
	return nil
}
