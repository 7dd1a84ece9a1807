package contracts

import "time"

// AllocationReport is the capital allocation across approved securities
// ⭐ SSOT: Portfolio → Report/API 배분 결과 전달
type AllocationReport struct {
	Date         time.Time            `json:"date"`
	Investor     string               `json:"investor"`
	TotalCapital float64              `json:"total_capital"`
	Positions    []AllocationPosition `json:"positions"`
	Allocated    float64              `json:"allocated"`
	Unallocated  float64              `json:"unallocated"`
}

// AllocationPosition is one line of the allocation table
type AllocationPosition struct {
	Ticker     string  `json:"ticker"`
	Name       string  `json:"name"`
	Sector     Sector  `json:"sector"`
	LimitPct   float64 `json:"limit_pct"`   // position limit, % of capital
	Capital    float64 `json:"capital"`     // LimitPct × TotalCapital
	CapitalPct float64 `json:"capital_pct"` // Capital / TotalCapital × 100
	Score      float64 `json:"score"`
	Margin     float64 `json:"margin"`
}

// TotalWeight returns the sum of position limits in percent
func (r *AllocationReport) TotalWeight() float64 {
	total := 0.0
	for _, pos := range r.Positions {
		total += pos.LimitPct
	}
	return total
}

// Count returns the number of positions
func (r *AllocationReport) Count() int {
	return len(r.Positions)
}

// GetPosition finds a position by ticker
func (r *AllocationReport) GetPosition(ticker string) (*AllocationPosition, bool) {
	ticker = NormalizeTicker(ticker)
	for i := range r.Positions {
		if r.Positions[i].Ticker == ticker {
			return &r.Positions[i], true
		}
	}
	return nil, false
}

// IsOverAllocated reports whether position limits add up to more than the capital
func (r *AllocationReport) IsOverAllocated() bool {
	return r.Unallocated < 0
}
