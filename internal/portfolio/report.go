package portfolio

import (
	"fmt"
	"strings"

	"github.com/wonny/moatscreen/internal/contracts"
)

const (
	reportWidth  = 80
	sectionWidth = 40
)

// EmptyReport is returned by Report for a portfolio without securities
const EmptyReport = "Portfolio is empty. Add securities to analyze."

// Report renders the full text report: header, stats, approved, watch list, rejected and allocation
func (p *Portfolio) Report() string {
	if len(p.securities) == 0 {
		return EmptyReport
	}

	// 분석은 한 번만 계산해 모든 섹션에서 공유
	analyses := p.Analyses()
	b := p.protocol.Buckets

	var sb strings.Builder
	rule := strings.Repeat("=", reportWidth)

	sb.WriteString(rule + "\n")
	sb.WriteString(center("FUNDAMENTAL ANALYSIS", reportWidth) + "\n")
	sb.WriteString(center("PORTFOLIO REPORT", reportWidth) + "\n")
	sb.WriteString(rule + "\n\n")

	fmt.Fprintf(&sb, "INVESTOR: %s\n", p.investor)
	fmt.Fprintf(&sb, "TOTAL CAPITAL: $%.2f\n", p.totalCapital)
	fmt.Fprintf(&sb, "RISK-FREE RATE: %.2f%%\n", p.riskFreeRate*100)
	fmt.Fprintf(&sb, "SECURITIES ANALYZED: %d\n\n", len(analyses))

	writeStats(&sb, statsOf(analyses, b))
	sb.WriteString("\n")
	writeApproved(&sb, sortAnalyses(approvedOf(analyses, b), scoreThenMargin), b.ApprovedScore, b.ApprovedMargin)
	sb.WriteString("\n")
	writeWatched(&sb, watchedOf(analyses, b), b.ApprovedMargin)
	writeRejected(&sb, rejectedOf(analyses, b))
	writeAllocation(&sb, p.allocate(approvedOf(analyses, b), DefaultConstraints()))

	sb.WriteString(rule + "\n")
	sb.WriteString("END OF REPORT\n")
	sb.WriteString(rule)

	return sb.String()
}

func writeStats(sb *strings.Builder, s contracts.PortfolioStats) {
	sb.WriteString("STATISTICS:\n")
	sb.WriteString(strings.Repeat("-", sectionWidth) + "\n")
	fmt.Fprintf(sb, "Securities analyzed: %d\n", s.Total)
	fmt.Fprintf(sb, "Approved for purchase: %d (%.1f%%)\n", s.Approved, s.ApprovedPct)
	fmt.Fprintf(sb, "Watch list: %d\n", s.Watched)
	fmt.Fprintf(sb, "Rejected: %d\n", s.Rejected)
	fmt.Fprintf(sb, "Average score: %.1f/100 (σ %.1f)\n", s.AverageScore, s.ScoreStdDev)

	if len(s.SectorDistribution) > 0 {
		sb.WriteString("\nSector distribution:\n")
		for _, sector := range contracts.AllSectors() {
			if n, ok := s.SectorDistribution[sector]; ok {
				fmt.Fprintf(sb, "  • %-20s: %d\n", sector, n)
			}
		}
	}
}

func writeApproved(sb *strings.Builder, approved []contracts.Analysis, minScore, minMargin float64) {
	if len(approved) == 0 {
		sb.WriteString("APPROVED FOR PURCHASE:\n")
		sb.WriteString(strings.Repeat("-", sectionWidth) + "\n")
		sb.WriteString("No security meets every purchase criterion.\n")
		return
	}

	fmt.Fprintf(sb, "APPROVED FOR PURCHASE (score >= %.0f, margin >= %.0f%%):\n", minScore, minMargin)
	sb.WriteString(strings.Repeat("=", reportWidth) + "\n")
	fmt.Fprintf(sb, "%-4s | %-6s | %-20s | %-10s | %-8s | %-8s | %-7s | %-6s | %-12s\n",
		"#", "Ticker", "Company", "Sector", "Price", "Fair", "Margin", "Score", "Rec.")
	sb.WriteString(strings.Repeat("-", reportWidth) + "\n")

	for i, a := range approved {
		fmt.Fprintf(sb, "%-4d | %-6s | %-20s | %-10s | $%-7.2f | $%-7.2f | %-6.1f%% | %-6.1f | %-12s\n",
			i+1, a.Ticker, truncate(a.Name, 20), truncate(string(a.Sector), 10),
			a.Price, a.FairPrice, a.Margin, a.FinalScore, a.Recommendation.Label())
	}
}

func writeWatched(sb *strings.Builder, watched []contracts.Analysis, minMargin float64) {
	if len(watched) == 0 {
		return
	}

	sb.WriteString("WATCH LIST:\n")
	sb.WriteString(strings.Repeat("=", reportWidth) + "\n")
	fmt.Fprintf(sb, "%-4s | %-6s | %-20s | %-10s | %-8s | %-8s | %-7s | %-6s | %-10s\n",
		"#", "Ticker", "Company", "Sector", "Price", "Fair", "Margin", "Score", "State")
	sb.WriteString(strings.Repeat("-", reportWidth) + "\n")

	for i, a := range watched {
		state := "IMPROVE"
		if a.Margin < minMargin {
			state = "EXPENSIVE"
		}
		fmt.Fprintf(sb, "%-4d | %-6s | %-20s | %-10s | $%-7.2f | $%-7.2f | %-6.1f%% | %-6.1f | %-10s\n",
			i+1, a.Ticker, truncate(a.Name, 20), truncate(string(a.Sector), 10),
			a.Price, a.FairPrice, a.Margin, a.FinalScore, state)
	}
	sb.WriteString("\n")
}

func writeRejected(sb *strings.Builder, rejected []contracts.Analysis) {
	if len(rejected) == 0 {
		return
	}

	sb.WriteString("REJECTED:\n")
	sb.WriteString(strings.Repeat("-", sectionWidth) + "\n")
	for _, a := range rejected {
		reason := "insufficient score"
		if len(a.Violations) > 0 {
			reason = a.Violations[0].Message
		}
		fmt.Fprintf(sb, "  • %-6s (%-20s) score %5.1f: %s\n", a.Ticker, truncate(a.Name, 20), a.FinalScore, reason)
	}
	sb.WriteString("\n")
}

func writeAllocation(sb *strings.Builder, r *contracts.AllocationReport) {
	if r.Count() == 0 {
		return
	}

	sb.WriteString("ALLOCATION:\n")
	sb.WriteString(strings.Repeat("=", reportWidth) + "\n")
	fmt.Fprintf(sb, "%-6s | %-8s | %-14s | %-10s | %-6s\n", "Ticker", "Limit", "Capital", "% Capital", "Score")
	sb.WriteString(strings.Repeat("-", reportWidth) + "\n")

	for _, pos := range r.Positions {
		fmt.Fprintf(sb, "%-6s | %-7.1f%% | $%-13.2f | %-9.1f%% | %-6.1f\n",
			pos.Ticker, pos.LimitPct, pos.Capital, pos.CapitalPct, pos.Score)
	}

	sb.WriteString(strings.Repeat("-", reportWidth) + "\n")
	fmt.Fprintf(sb, "Allocated:   $%.2f (%.1f%%)\n", r.Allocated, r.Allocated/r.TotalCapital*100)
	fmt.Fprintf(sb, "Unallocated: $%.2f (%.1f%%)\n", r.Unallocated, r.Unallocated/r.TotalCapital*100)
	sb.WriteString("\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func center(s string, width int) string {
	pad := (width - len(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
