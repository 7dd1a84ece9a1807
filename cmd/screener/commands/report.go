package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/moatscreen/internal/flatfile"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report [tickers...]",
	Short: "포트폴리오 리포트 생성",
	Long: `포트폴리오 리포트를 생성합니다.

리포트 구성:
- 통계 (승인/관찰/탈락, 평균 점수)
- 승인 종목 (점수 → 안전마진 순)
- 관찰 종목 (EXPENSIVE / IMPROVE)
- 탈락 종목과 사유
- 자본 배분표

Example:
  go run ./cmd/screener report KO PG MSFT
  go run ./cmd/screener report --file watchlist.csv --out report.txt
  go run ./cmd/screener report KO PG --chart allocation.png`,
	RunE: runReport,
}

var (
	reportFile  string
	reportRate  float64
	reportOut   string
	reportChart string
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportFile, "file", "", "CSV 파일에서 종목 데이터 읽기")
	reportCmd.Flags().Float64Var(&reportRate, "rf", 0, "무위험 이자율 (0 = 국채 금리)")
	reportCmd.Flags().StringVar(&reportOut, "out", "", "리포트 TXT 저장 경로")
	reportCmd.Flags().StringVar(&reportChart, "chart", "", "배분 차트 PNG 저장 경로")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.screen(ctx, screenInput{tickers: args, file: reportFile, riskFreeRate: reportRate})
	if err != nil {
		return err
	}

	report := result.Report()
	fmt.Fprintln(out, report)

	if reportOut != "" {
		path, err := flatfile.SaveReport(reportOut, report)
		if err != nil {
			return err
		}
		PrintSuccess("Report saved to " + path)
	}

	if reportChart != "" {
		png, err := result.Portfolio.AllocationChart()
		if err != nil {
			PrintWarning("Chart skipped: " + err.Error())
			return nil
		}
		if err := os.WriteFile(reportChart, png, 0o644); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		PrintSuccess("Chart saved to " + reportChart)
	}

	return nil
}
