package portfolio

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/wonny/moatscreen/internal/contracts"
)

// RenderAllocationChart renders a PNG pie chart of the allocation, unallocated capital included.
// Returns raw PNG bytes.
func RenderAllocationChart(r *contracts.AllocationReport) ([]byte, error) {
	if r == nil || r.Count() == 0 {
		return nil, fmt.Errorf("allocation has no positions")
	}

	values := make([]chart.Value, 0, r.Count()+1)
	for _, pos := range r.Positions {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %.0f%%", pos.Ticker, pos.CapitalPct),
			Value: pos.Capital,
		})
	}
	if r.Unallocated > 0 {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("Cash %.0f%%", r.Unallocated/r.TotalCapital*100),
			Value: r.Unallocated,
		})
	}

	pie := chart.PieChart{
		Title:  fmt.Sprintf("Allocation - %s", r.Investor),
		Width:  600,
		Height: 600,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}

// AllocationChart renders the portfolio's current allocation
func (p *Portfolio) AllocationChart() ([]byte, error) {
	return RenderAllocationChart(p.Allocation())
}
