package commands

import (
	"github.com/spf13/cobra"

	"github.com/wonny/moatscreen/internal/portfolio"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import [file.csv]",
	Short: "CSV 종목 데이터 스크리닝",
	Long: `CSV 파일의 종목 데이터로 스크리닝을 실행하고 결과를 저장합니다.
시세 API를 호출하지 않습니다 (무위험 이자율 제외).

Example:
  go run ./cmd/screener import watchlist.csv
  go run ./cmd/screener import watchlist.csv --rf 0.043 --order margin`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var (
	importRate  float64
	importOrder string
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().Float64Var(&importRate, "rf", 0, "무위험 이자율 (0 = 국채 금리)")
	importCmd.Flags().StringVar(&importOrder, "order", "score", "정렬 기준 (score|margin|score_margin|beta|sector)")
}

func runImport(cmd *cobra.Command, args []string) error {
	order, err := parseOrder(importOrder)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.screen(ctx, screenInput{file: args[0], riskFreeRate: importRate})
	if err != nil {
		return err
	}

	PrintRunSummary(result.Run, portfolio.Rank(result.Run.Analyses, order))
	PrintSuccess("Run " + result.Run.ID.String() + " stored")
	return nil
}
