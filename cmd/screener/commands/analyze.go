package commands

import (
	"github.com/spf13/cobra"

	"github.com/wonny/moatscreen/internal/portfolio"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [tickers...]",
	Short: "종목 상세 분석",
	Long: `종목별 상세 분석을 출력합니다.

이 명령어는:
- 시세/재무 데이터 조회 (또는 --file CSV)
- 킬 스위치, 품질 필터, 섹터 리스크 평가
- 공정가치, 안전마진, 점수, 추천, 포지션 한도 계산

티커를 생략하면 watchlist를 분석합니다.

Example:
  go run ./cmd/screener analyze KO PG
  go run ./cmd/screener analyze --file watchlist.csv --rf 0.045
  go run ./cmd/screener analyze KO MSFT --order margin`,
	RunE: runAnalyze,
}

var (
	analyzeFile  string
	analyzeRate  float64
	analyzeOrder string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "CSV 파일에서 종목 데이터 읽기")
	analyzeCmd.Flags().Float64Var(&analyzeRate, "rf", 0, "무위험 이자율 (예: 0.043, 0 = 국채 금리)")
	analyzeCmd.Flags().StringVar(&analyzeOrder, "order", "score", "정렬 기준 (score|margin|score_margin|beta|sector)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	order, err := parseOrder(analyzeOrder)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.screen(ctx, screenInput{tickers: args, file: analyzeFile, riskFreeRate: analyzeRate})
	if err != nil {
		return err
	}

	ranked := portfolio.Rank(result.Run.Analyses, order)
	byTicker := make(map[string]int, len(result.Run.Analyses))
	for i, an := range result.Run.Analyses {
		byTicker[an.Ticker] = i
	}
	for _, r := range ranked {
		PrintAnalysis(result.Run.Analyses[byTicker[r.Ticker]])
	}

	PrintRunSummary(result.Run, ranked)
	return nil
}
