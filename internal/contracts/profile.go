package contracts

import (
	"fmt"
	"math"
)

// FinancialMetrics is the raw fundamentals record of the input contract.
// Ratios are fractions (0.15 = 15%). Series are most-recent-first.
type FinancialMetrics struct {
	EPS                    float64   `json:"eps"`
	EarningsGrowth5Y       float64   `json:"earnings_growth_5y"`
	DebtToEBITDA           float64   `json:"debt_to_ebitda"`
	ROE                    float64   `json:"roe"`
	ROIC                   float64   `json:"roic"`
	NetMargin              float64   `json:"net_margin"`
	OperatingCashFlow      float64   `json:"operating_cash_flow"`
	Capex                  float64   `json:"capex"` // signed, usually negative
	StockBasedCompensation float64   `json:"stock_based_compensation"`
	FreeCashFlow           float64   `json:"free_cash_flow"` // 0 = derive from OCF + capex
	BookValuePerShare      float64   `json:"book_value_per_share"`
	IntangibleAssets       float64   `json:"intangible_assets"`
	Goodwill               float64   `json:"goodwill"`
	TotalAssets            float64   `json:"total_assets"`
	DividendPerShare       float64   `json:"dividend_per_share"`
	DividendYield          float64   `json:"dividend_yield"`
	PayoutRatio            float64   `json:"payout_ratio"`
	SharesOutstanding      float64   `json:"shares_outstanding"`
	NetMarginHistory       []float64 `json:"net_margin_history,omitempty"`
	SharesHistory          []float64 `json:"shares_history,omitempty"`
	EarningsHistory        []float64 `json:"earnings_history,omitempty"`
}

// FinancialProfile is an immutable, normalized snapshot of a company's fundamentals
// ⭐ SSOT: 재무 파생 지표 계산은 여기서만
type FinancialProfile struct {
	eps               float64
	growth5Y          float64
	debtToEBITDA      float64
	roe               float64
	roic              float64
	netMargin         float64
	operatingCashFlow float64
	capex             float64
	sbc               float64
	freeCashFlow      float64
	bookValuePerShare float64
	intangibles       float64
	goodwill          float64
	totalAssets       float64
	dividendPerShare  float64
	dividendYield     float64
	payoutRatio       float64
	sharesOutstanding float64

	marginHistory   []float64
	sharesHistory   []float64
	earningsHistory []float64
}

// NewFinancialProfile normalizes raw metrics into a profile.
// Negative values of non-signed scalars are clamped to 0, shares to >= 1,
// and missing series are replaced by deterministic series anchored on the current value.
func NewFinancialProfile(m FinancialMetrics) *FinancialProfile {
	p := &FinancialProfile{
		eps:               Finite(m.EPS),
		growth5Y:          Finite(m.EarningsGrowth5Y),
		debtToEBITDA:      NonNegative(m.DebtToEBITDA),
		roe:               Finite(m.ROE),
		roic:              Finite(m.ROIC),
		netMargin:         Finite(m.NetMargin),
		operatingCashFlow: Finite(m.OperatingCashFlow),
		capex:             Finite(m.Capex),
		sbc:               NonNegative(m.StockBasedCompensation),
		bookValuePerShare: NonNegative(m.BookValuePerShare),
		intangibles:       NonNegative(m.IntangibleAssets),
		goodwill:          NonNegative(m.Goodwill),
		totalAssets:       NonNegative(m.TotalAssets),
		dividendPerShare:  NonNegative(m.DividendPerShare),
		dividendYield:     NonNegative(m.DividendYield),
		payoutRatio:       NonNegative(m.PayoutRatio),
		sharesOutstanding: math.Max(Finite(m.SharesOutstanding), 1),
	}

	// FCF = OCF + capex (capex 음수) 단, 직접 값이 있으면 우선
	p.freeCashFlow = p.operatingCashFlow + p.capex
	if fcf := Finite(m.FreeCashFlow); fcf != 0 {
		p.freeCashFlow = fcf
	}

	p.marginHistory = seriesOrDefault(m.NetMarginHistory, p.netMargin, 0.98, 0.95)
	p.sharesHistory = seriesOrDefault(m.SharesHistory, p.sharesOutstanding, 0.99, 0.98)
	p.earningsHistory = seriesOrDefault(m.EarningsHistory, p.eps, 0.95, 0.90, 0.85, 0.80)

	return p
}

// Finite maps NaN and ±Inf to 0
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// NonNegative clamps v to >= 0, non-finite values included
func NonNegative(v float64) float64 {
	return math.Max(Finite(v), 0)
}

// seriesOrDefault copies s, or builds [current, current*f1, current*f2, ...] when s is empty
func seriesOrDefault(s []float64, current float64, factors ...float64) []float64 {
	if len(s) > 0 {
		out := make([]float64, len(s))
		for i, v := range s {
			out[i] = Finite(v)
		}
		return out
	}
	out := make([]float64, 0, len(factors)+1)
	out = append(out, current)
	for _, f := range factors {
		out = append(out, current*f)
	}
	return out
}

// Scalar accessors

func (p *FinancialProfile) EPS() float64                    { return p.eps }
func (p *FinancialProfile) EarningsGrowth5Y() float64       { return p.growth5Y }
func (p *FinancialProfile) DebtToEBITDA() float64           { return p.debtToEBITDA }
func (p *FinancialProfile) ROE() float64                    { return p.roe }
func (p *FinancialProfile) ROIC() float64                   { return p.roic }
func (p *FinancialProfile) NetMargin() float64              { return p.netMargin }
func (p *FinancialProfile) OperatingCashFlow() float64      { return p.operatingCashFlow }
func (p *FinancialProfile) Capex() float64                  { return p.capex }
func (p *FinancialProfile) StockBasedCompensation() float64 { return p.sbc }
func (p *FinancialProfile) FreeCashFlow() float64           { return p.freeCashFlow }
func (p *FinancialProfile) BookValuePerShare() float64      { return p.bookValuePerShare }
func (p *FinancialProfile) IntangibleAssets() float64       { return p.intangibles }
func (p *FinancialProfile) Goodwill() float64               { return p.goodwill }
func (p *FinancialProfile) TotalAssets() float64            { return p.totalAssets }
func (p *FinancialProfile) DividendPerShare() float64       { return p.dividendPerShare }
func (p *FinancialProfile) DividendYield() float64          { return p.dividendYield }
func (p *FinancialProfile) PayoutRatio() float64            { return p.payoutRatio }
func (p *FinancialProfile) SharesOutstanding() float64      { return p.sharesOutstanding }

// Series accessors return copies

func (p *FinancialProfile) NetMarginHistory() []float64 {
	return append([]float64(nil), p.marginHistory...)
}

func (p *FinancialProfile) SharesHistory() []float64 {
	return append([]float64(nil), p.sharesHistory...)
}

func (p *FinancialProfile) EarningsHistory() []float64 {
	return append([]float64(nil), p.earningsHistory...)
}

// Metrics returns the normalized profile as an input record.
// NewFinancialProfile(p.Metrics()) yields an equal profile.
func (p *FinancialProfile) Metrics() FinancialMetrics {
	return FinancialMetrics{
		EPS:                    p.eps,
		EarningsGrowth5Y:       p.growth5Y,
		DebtToEBITDA:           p.debtToEBITDA,
		ROE:                    p.roe,
		ROIC:                   p.roic,
		NetMargin:              p.netMargin,
		OperatingCashFlow:      p.operatingCashFlow,
		Capex:                  p.capex,
		StockBasedCompensation: p.sbc,
		FreeCashFlow:           p.freeCashFlow,
		BookValuePerShare:      p.bookValuePerShare,
		IntangibleAssets:       p.intangibles,
		Goodwill:               p.goodwill,
		TotalAssets:            p.totalAssets,
		DividendPerShare:       p.dividendPerShare,
		DividendYield:          p.dividendYield,
		PayoutRatio:            p.payoutRatio,
		SharesOutstanding:      p.sharesOutstanding,
		NetMarginHistory:       p.NetMarginHistory(),
		SharesHistory:          p.SharesHistory(),
		EarningsHistory:        p.EarningsHistory(),
	}
}

// Derived metrics. Degenerate denominators return 0.

// DilutionOver3Years compares the latest share count with the one two entries back
func (p *FinancialProfile) DilutionOver3Years() float64 {
	if len(p.sharesHistory) < 2 {
		return 0
	}
	current := p.sharesHistory[0]
	past := p.sharesHistory[min(2, len(p.sharesHistory)-1)]
	if past == 0 {
		return 0
	}
	return (current - past) / past
}

// MarginDeclining3Years is true when margins fell at each of the last two steps (m2 > m1 > m0)
func (p *FinancialProfile) MarginDeclining3Years() bool {
	if len(p.marginHistory) < 3 {
		return false
	}
	m0, m1, m2 := p.marginHistory[0], p.marginHistory[1], p.marginHistory[2]
	return m2 > m1 && m1 > m0
}

// LossYearsInLast5 counts negative entries among the five most recent earnings
func (p *FinancialProfile) LossYearsInLast5() int {
	count := 0
	for i := 0; i < min(5, len(p.earningsHistory)); i++ {
		if p.earningsHistory[i] < 0 {
			count++
		}
	}
	return count
}

// OperatingCashFlowNegative checks the current year only
func (p *FinancialProfile) OperatingCashFlowNegative() bool {
	return p.operatingCashFlow < 0
}

// GoodwillToAssets returns goodwill / total assets
func (p *FinancialProfile) GoodwillToAssets() float64 {
	if p.totalAssets == 0 {
		return 0
	}
	return p.goodwill / p.totalAssets
}

// AdjustedFreeCashFlow returns FCF minus stock-based compensation
func (p *FinancialProfile) AdjustedFreeCashFlow() float64 {
	return p.freeCashFlow - p.sbc
}

// AdjustedFCFPerShare returns adjusted FCF per share
func (p *FinancialProfile) AdjustedFCFPerShare() float64 {
	if p.sharesOutstanding == 0 {
		return 0
	}
	return p.AdjustedFreeCashFlow() / p.sharesOutstanding
}

// OperatingCashFlowPerShare returns OCF per share
func (p *FinancialProfile) OperatingCashFlowPerShare() float64 {
	if p.sharesOutstanding == 0 {
		return 0
	}
	return p.operatingCashFlow / p.sharesOutstanding
}

// TangibleBookValuePerShare strips intangibles and goodwill from book equity
func (p *FinancialProfile) TangibleBookValuePerShare() float64 {
	if p.sharesOutstanding == 0 {
		return 0
	}
	tangibleEquity := p.bookValuePerShare*p.sharesOutstanding - p.intangibles - p.goodwill
	return tangibleEquity / p.sharesOutstanding
}

func (p *FinancialProfile) String() string {
	return fmt.Sprintf("EPS %.2f | growth %.1f%% | debt/EBITDA %.1fx | ROE %.1f%%",
		p.eps, p.growth5Y*100, p.debtToEBITDA, p.roe*100)
}
