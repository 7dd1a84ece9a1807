package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/moatscreen/internal/flatfile"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [tickers...]",
	Short: "종목 데이터 CSV 내보내기",
	Long: `시세/재무 데이터를 CSV로 저장합니다.
저장한 파일은 import 또는 --file 옵션으로 다시 분석할 수 있습니다.

티커를 생략하면 watchlist를 내보냅니다.

Example:
  go run ./cmd/screener export KO PG --out watchlist.csv`,
	RunE: runExport,
}

var exportOut string

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportOut, "out", "securities.csv", "CSV 저장 경로")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	tickers := args
	if len(tickers) == 0 {
		if tickers, err = a.watchlistTickers(ctx); err != nil {
			return err
		}
	}
	if len(tickers) == 0 {
		return fmt.Errorf("no tickers given and watchlist is empty")
	}

	payloads, err := a.quotes.FetchSecurities(ctx, tickers)
	if err != nil {
		return err
	}

	path, err := flatfile.SaveCSV(exportOut, payloads)
	if err != nil {
		return err
	}

	if skipped := len(tickers) - len(payloads); skipped > 0 {
		PrintWarning(fmt.Sprintf("%d ticker(s) not found", skipped))
	}
	PrintSuccess(fmt.Sprintf("Exported %d securities to %s", len(payloads), path))
	return nil
}
