package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// watchlistCmd represents the watchlist command
var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "watchlist 관리",
	Long: `스케줄러가 재스크리닝하는 watchlist를 관리합니다.
DATABASE_URL이 없으면 프로세스 메모리에만 저장됩니다.

Example:
  go run ./cmd/screener watchlist list
  go run ./cmd/screener watchlist add KO "cost advantage"
  go run ./cmd/screener watchlist remove KO`,
}

var (
	watchlistListCmd = &cobra.Command{
		Use:   "list",
		Short: "watchlist 조회",
		RunE:  listWatchlist,
	}

	watchlistAddCmd = &cobra.Command{
		Use:   "add [ticker] [note]",
		Short: "watchlist 추가",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  addToWatchlist,
	}

	watchlistRemoveCmd = &cobra.Command{
		Use:   "remove [ticker]",
		Short: "watchlist 삭제",
		Args:  cobra.ExactArgs(1),
		RunE:  removeFromWatchlist,
	}
)

func init() {
	rootCmd.AddCommand(watchlistCmd)
	watchlistCmd.AddCommand(watchlistListCmd)
	watchlistCmd.AddCommand(watchlistAddCmd)
	watchlistCmd.AddCommand(watchlistRemoveCmd)
}

func listWatchlist(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	items, err := a.watchlist.ListWatchlist(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		if len(a.cfg.Screening.Watchlist) > 0 {
			PrintInfo("Stored watchlist is empty, WATCHLIST env: " + strings.Join(a.cfg.Screening.Watchlist, ", "))
		} else {
			PrintInfo("Watchlist is empty")
		}
		return nil
	}

	widths := []int{8, 20, 30}
	PrintTableHeader([]string{"Ticker", "Added", "Note"}, widths)
	for _, item := range items {
		PrintTableRow([]string{item.Ticker, item.AddedAt.Format("2006-01-02 15:04"), item.Note}, widths)
	}
	return nil
}

func addToWatchlist(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	note := ""
	if len(args) > 1 {
		note = args[1]
	}

	item, err := a.watchlist.AddToWatchlist(ctx, args[0], note)
	if err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("%s added to watchlist", item.Ticker))
	return nil
}

func removeFromWatchlist(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.watchlist.RemoveFromWatchlist(ctx, args[0]); err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("%s removed from watchlist", strings.ToUpper(strings.TrimSpace(args[0]))))
	return nil
}
