package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/moatscreen/internal/contracts"
)

func koPayload() contracts.SecurityPayload {
	return contracts.SecurityPayload{
		Ticker: "KO", Name: "Coca-Cola", Sector: "Consumer Defensive", Price: 100, Beta: 0.6,
		Moats: []contracts.Moat{contracts.MoatCostAdvantage},
		Financials: contracts.FinancialMetrics{
			EPS:               10,
			EarningsGrowth5Y:  0.08,
			DebtToEBITDA:      1.5,
			ROE:               0.40,
			ROIC:              0.16,
			NetMargin:         0.22,
			OperatingCashFlow: 1000,
			Capex:             -200,
			SharesOutstanding: 100,
			PayoutRatio:       0.5,
			TotalAssets:       10000,
			Goodwill:          500,
		},
	}
}

// setupEnv points the CLI at a fake quote service with no DB or Redis
func setupEnv(t *testing.T) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/securities", func(w http.ResponseWriter, r *http.Request) {
		out := []contracts.SecurityPayload{}
		for _, ticker := range strings.Split(r.URL.Query().Get("tickers"), ",") {
			if ticker == "KO" {
				out = append(out, koPayload())
			}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"securities": out})
	})
	mux.HandleFunc("/api/securities/", func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimPrefix(r.URL.Path, "/api/securities/") != "KO" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(koPayload())
	})
	mux.HandleFunc("/api/treasury/10y", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rate": 0.040}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	t.Setenv("QUOTE_API_BASE_URL", server.URL)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("WATCHLIST", "")
	t.Setenv("PROTOCOL_FILE", "")
}

// execute runs the root command with fresh flag state and captures output
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	prev := out
	out = &buf
	t.Cleanup(func() { out = prev })

	configFile, protocolFile, verbose = "", "", false
	analyzeFile, analyzeRate, analyzeOrder = "", 0, "score"
	reportFile, reportRate, reportOut, reportChart = "", 0, "", ""
	exportOut = "securities.csv"
	importRate, importOrder = 0, "score"

	rootCmd.SetArgs(args)
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestProtocolValidate(t *testing.T) {
	output, err := execute(t, "protocol", "validate", filepath.Join("..", "..", "..", "config", "protocol", "fundamental_v1.yaml"))
	require.NoError(t, err)
	assert.Contains(t, output, "is valid (fundamental_v1")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("meta:\n  protocol_id: x\n  typo_field: 1\n"), 0o644))
	output, err = execute(t, "protocol", "validate", bad)
	assert.Error(t, err)
	assert.Contains(t, output, "❌")
}

func TestProtocolShow(t *testing.T) {
	setupEnv(t)

	output, err := execute(t, "protocol", "show")
	require.NoError(t, err)
	assert.Contains(t, output, "built-in")
	assert.Contains(t, output, "kill_switches:")
}

func TestExportThenImport(t *testing.T) {
	setupEnv(t)
	path := filepath.Join(t.TempDir(), "batch")

	output, err := execute(t, "export", "KO", "MISSING", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, output, "Exported 1 securities")
	assert.Contains(t, output, "1 ticker(s) not found")

	output, err = execute(t, "import", path+".csv", "--rf", "0.04", "--order", "margin")
	require.NoError(t, err)
	assert.Contains(t, output, "Screening Run")
	assert.Contains(t, output, "KO")
	assert.Contains(t, output, "stored")
}

func TestAnalyze(t *testing.T) {
	setupEnv(t)

	output, err := execute(t, "analyze", "ko")
	require.NoError(t, err)
	assert.Contains(t, output, "KO - Coca-Cola")
	assert.Contains(t, output, "Recommendation")
	assert.Contains(t, output, "Rate      : 4.00%")

	_, err = execute(t, "analyze", "KO", "--order", "bogus")
	assert.ErrorContains(t, err, "unknown order")

	// 티커도 watchlist도 없음
	_, err = execute(t, "analyze")
	assert.Error(t, err)
}

func TestReport(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()

	output, err := execute(t, "report", "KO",
		"--out", filepath.Join(dir, "report"),
		"--chart", filepath.Join(dir, "allocation.png"),
	)
	require.NoError(t, err)
	assert.Contains(t, output, "PORTFOLIO REPORT")

	report, err := os.ReadFile(filepath.Join(dir, "report.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "INVESTOR:")

	png, err := os.ReadFile(filepath.Join(dir, "allocation.png"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestWatchlistEnvFallback(t *testing.T) {
	setupEnv(t)
	t.Setenv("WATCHLIST", "ko")

	output, err := execute(t, "watchlist", "list")
	require.NoError(t, err)
	assert.Contains(t, output, "WATCHLIST env: KO")

	output, err = execute(t, "report")
	require.NoError(t, err)
	assert.Contains(t, output, "SECURITIES ANALYZED: 1")
}

func TestSchedulerListAndRun(t *testing.T) {
	setupEnv(t)
	t.Setenv("WATCHLIST", "KO")

	output, err := execute(t, "scheduler", "list")
	require.NoError(t, err)
	assert.Contains(t, output, "rescreen_watchlist")
	assert.Contains(t, output, "treasury_rate_refresh")

	output, err = execute(t, "scheduler", "run", "rescreen_watchlist")
	require.NoError(t, err)
	assert.Contains(t, output, "Job rescreen_watchlist completed")

	_, err = execute(t, "scheduler", "run", "missing")
	assert.ErrorContains(t, err, "not found")
}

func TestPrintTableRow(t *testing.T) {
	var buf bytes.Buffer
	prev := out
	out = &buf
	defer func() { out = prev }()

	PrintTableHeader([]string{"A", "B"}, []int{3, 2})
	PrintTableRow([]string{"x", "y"}, []int{3, 2})
	assert.Equal(t, "A    B \n"+strings.Repeat("─", 7)+"\nx    y \n", buf.String())
}

func TestStatus(t *testing.T) {
	setupEnv(t)

	output, err := execute(t, "status")
	// 가짜 서버에 /api/status 없음
	assert.Error(t, err)
	assert.Contains(t, output, "Quote API")
	assert.Contains(t, output, "Treasury   4.00%")
	assert.Contains(t, output, "in-memory run store")
}
