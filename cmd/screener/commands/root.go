package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile   string
	protocolFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "Moatscreen - 펀더멘털 가치투자 스크리너",
	Long: `Moatscreen Unified CLI

해자(moat)와 안전마진 기반 펀더멘털 스크리너.
킬 스위치 → 품질 필터 → 점수 → 추천 → 포지션 배분.

Usage:
  go run ./cmd/screener [command]

Examples:
  go run ./cmd/screener analyze KO PG MSFT
  go run ./cmd/screener report KO PG --out report.txt --chart allocation.png
  go run ./cmd/screener export KO PG --out watchlist.csv
  go run ./cmd/screener import watchlist.csv
  go run ./cmd/screener api
  go run ./cmd/screener scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "env file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&protocolFile, "protocol", "", "protocol YAML (default: PROTOCOL_FILE or built-in)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
