package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wonny/moatscreen/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// out is where every command prints (tests swap it)
var out io.Writer = os.Stdout

const (
	doubleRule = "═══════════════════════════════════════════════════════════"
	singleRule = "───────────────────────────────────────────────────────────"
)

// PrintHeader prints a formatted command header
func PrintHeader(title string, pairs ...string) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, doubleRule)
	fmt.Fprintf(out, "  %s\n", title)
	if len(pairs) > 0 {
		fmt.Fprintln(out, singleRule)
		for i := 0; i+1 < len(pairs); i += 2 {
			fmt.Fprintf(out, "  %-10s: %s\n", pairs[i], pairs[i+1])
		}
	}
	fmt.Fprintln(out, singleRule)
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Fprintln(out, singleRule)
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Fprintln(out, doubleRule)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "⚠️  %s\n", message)
	fmt.Fprintln(out)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Fprintf(out, "✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(out, "❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Fprintf(out, "ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	// Separator line
	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Fprintln(out, strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Fprintf(out, "%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Fprint(out, "  ")
		}
	}
	fmt.Fprintln(out)
}

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Fprintf(out, "   • %s\n", item)
	}
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Fprintf(out, "   %-*s : %s\n", keyWidth, key, value)
}

// PrintAnalysis prints the full breakdown of one security
func PrintAnalysis(a contracts.Analysis) {
	PrintHeader(fmt.Sprintf("%s - %s", a.Ticker, a.Name),
		"Sector", string(a.Sector),
		"Strategy", a.Strategy,
	)

	const w = 16
	PrintKeyValue("Price", fmt.Sprintf("$%.2f", a.Price), w)
	PrintKeyValue("Fair price", fmt.Sprintf("$%.2f", a.FairPrice), w)
	PrintKeyValue("Safety margin", fmt.Sprintf("%.1f%%", a.Margin), w)
	PrintKeyValue("Beta", fmt.Sprintf("%.2f", a.Beta), w)
	PrintKeyValue("Moats", moatList(a.Moats), w)
	PrintKeyValue("Quantitative", fmt.Sprintf("%.1f", a.QuantitativeScore), w)
	PrintKeyValue("Qualitative", fmt.Sprintf("%.1f", a.QualitativeScore), w)
	PrintKeyValue("Final score", fmt.Sprintf("%.1f", a.FinalScore), w)
	PrintKeyValue("Recommendation", string(a.Recommendation), w)
	PrintKeyValue("Position limit", fmt.Sprintf("%.1f%%", a.PositionLimit), w)

	if len(a.Violations) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  Kill switches:")
		items := make([]string, len(a.Violations))
		for i, v := range a.Violations {
			items[i] = fmt.Sprintf("[%s] %s", v.Code, v.Message)
		}
		PrintList(items)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "  Filters:")
	filters := append(append([]contracts.FilterResult(nil), a.Filters...), a.SectorRisk)
	items := make([]string, len(filters))
	for i, f := range filters {
		mark := "PASS"
		if !f.Passed {
			mark = "FAIL"
		}
		items[i] = fmt.Sprintf("%-4s %s: %s", mark, f.Name, f.Message)
	}
	PrintList(items)
}

// PrintRunSummary prints stats and the ranking of a run
func PrintRunSummary(run *contracts.AnalysisRun, ranked []contracts.RankedSecurity) {
	PrintHeader("Screening Run",
		"Run ID", run.ID.String(),
		"Investor", run.Investor,
		"Capital", fmt.Sprintf("$%.2f", run.TotalCapital),
		"Rate", fmt.Sprintf("%.2f%%", run.RiskFreeRate*100),
	)

	s := run.Stats
	fmt.Fprintf(out, "  Total %d | Approved %d | Watch %d | Rejected %d | Avg score %.1f (σ %.1f)\n\n",
		s.Total, s.Approved, s.Watched, s.Rejected, s.AverageScore, s.ScoreStdDev)

	widths := []int{4, 8, 22, 7, 8, 6, 12}
	PrintTableHeader([]string{"#", "Ticker", "Sector", "Score", "Margin", "Beta", "Rec"}, widths)
	for _, r := range ranked {
		PrintTableRow([]string{
			fmt.Sprintf("%d", r.Rank),
			r.Ticker,
			string(r.Sector),
			fmt.Sprintf("%.1f", r.Score),
			fmt.Sprintf("%.1f%%", r.Margin),
			fmt.Sprintf("%.2f", r.Beta),
			string(r.Recommendation),
		}, widths)
	}
	fmt.Fprintln(out)
}

func moatList(moats []contracts.Moat) string {
	if len(moats) == 0 {
		return "-"
	}
	names := make([]string, len(moats))
	for i, m := range moats {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
