package contracts

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFinancialProfile_Clamps(t *testing.T) {
	p := NewFinancialProfile(FinancialMetrics{
		EPS:                    -2,
		DebtToEBITDA:           -1,
		StockBasedCompensation: -5,
		BookValuePerShare:      -3,
		Goodwill:               -10,
		TotalAssets:            -100,
		DividendYield:          -0.01,
		SharesOutstanding:      0,
	})

	assert.Equal(t, -2.0, p.EPS(), "EPS is signed")
	assert.Zero(t, p.DebtToEBITDA())
	assert.Zero(t, p.StockBasedCompensation())
	assert.Zero(t, p.BookValuePerShare())
	assert.Zero(t, p.Goodwill())
	assert.Zero(t, p.TotalAssets())
	assert.Zero(t, p.DividendYield())
	assert.Equal(t, 1.0, p.SharesOutstanding())
}

func TestNewFinancialProfile_NonFinite(t *testing.T) {
	p := NewFinancialProfile(FinancialMetrics{
		EPS:               math.NaN(),
		ROE:               math.Inf(-1),
		DebtToEBITDA:      math.Inf(1),
		Goodwill:          math.NaN(),
		SharesOutstanding: math.NaN(),
		OperatingCashFlow: 100,
		FreeCashFlow:      math.Inf(1),
		EarningsHistory:   []float64{1, math.NaN(), 1},
	})

	assert.Zero(t, p.EPS())
	assert.Zero(t, p.ROE())
	assert.Zero(t, p.DebtToEBITDA())
	assert.Zero(t, p.Goodwill())
	assert.Equal(t, 1.0, p.SharesOutstanding())
	assert.Equal(t, 100.0, p.FreeCashFlow(), "non-finite FCF falls back to OCF + capex")
	assert.Equal(t, []float64{1, 0, 1}, p.EarningsHistory())
	assert.Len(t, p.NetMarginHistory(), 3)

	assert.Zero(t, NonNegative(math.NaN()))
	assert.Zero(t, NonNegative(-3))
	assert.Equal(t, 2.5, NonNegative(2.5))
}

func TestNewFinancialProfile_FreeCashFlow(t *testing.T) {
	tests := []struct {
		name string
		m    FinancialMetrics
		want float64
	}{
		{"derived from OCF and capex", FinancialMetrics{OperatingCashFlow: 100, Capex: -30}, 70},
		{"direct value wins", FinancialMetrics{OperatingCashFlow: 100, Capex: -30, FreeCashFlow: 110}, 110},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewFinancialProfile(tt.m).FreeCashFlow())
		})
	}
}

func TestNewFinancialProfile_DefaultSeries(t *testing.T) {
	p := NewFinancialProfile(FinancialMetrics{EPS: 5, NetMargin: 0.2, SharesOutstanding: 1000})

	margins := p.NetMarginHistory()
	require.Len(t, margins, 3)
	assert.Equal(t, 0.2, margins[0])
	assert.InDelta(t, 0.196, margins[1], 1e-9)
	assert.InDelta(t, 0.19, margins[2], 1e-9)

	assert.InDeltaSlice(t, []float64{1000, 990, 980}, p.SharesHistory(), 1e-6)
	assert.Len(t, p.EarningsHistory(), 5)
	assert.Equal(t, 5.0, p.EarningsHistory()[0])

	// 기본 시계열은 킬 스위치를 건드리지 않음
	assert.False(t, p.MarginDeclining3Years())
	assert.Less(t, p.DilutionOver3Years(), 0.10)
	assert.Zero(t, p.LossYearsInLast5())
}

func TestFinancialProfile_SeriesAreCopies(t *testing.T) {
	p := NewFinancialProfile(FinancialMetrics{SharesHistory: []float64{1500, 1200, 1000}})

	shares := p.SharesHistory()
	shares[0] = 1
	assert.Equal(t, 1500.0, p.SharesHistory()[0])
}

func TestFinancialProfile_DilutionOver3Years(t *testing.T) {
	tests := []struct {
		name   string
		shares []float64
		want   float64
	}{
		{"three points", []float64{1500, 1200, 1000}, 0.5},
		{"two points", []float64{1100, 1000}, 0.1},
		{"single point", []float64{1000}, 0},
		{"buyback", []float64{900, 950, 1000}, -0.1},
		{"zero past", []float64{1000, 500, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewFinancialProfile(FinancialMetrics{SharesHistory: tt.shares})
			assert.InDelta(t, tt.want, p.DilutionOver3Years(), 1e-9)
		})
	}
}

func TestFinancialProfile_MarginDeclining3Years(t *testing.T) {
	tests := []struct {
		name    string
		margins []float64
		want    bool
	}{
		{"declining", []float64{0.10, 0.12, 0.15}, true},
		{"improving", []float64{0.15, 0.12, 0.10}, false},
		{"flat", []float64{0.10, 0.10, 0.10}, false},
		{"mixed", []float64{0.10, 0.16, 0.15}, false},
		{"too short", []float64{0.10, 0.12}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewFinancialProfile(FinancialMetrics{NetMarginHistory: tt.margins})
			assert.Equal(t, tt.want, p.MarginDeclining3Years())
		})
	}
}

func TestFinancialProfile_LossYearsInLast5(t *testing.T) {
	p := NewFinancialProfile(FinancialMetrics{EarningsHistory: []float64{1, -1, 2, -0.5, 3, -4}})
	// 6번째 값은 무시
	assert.Equal(t, 2, p.LossYearsInLast5())
}

func TestFinancialProfile_CashFlowMetrics(t *testing.T) {
	p := NewFinancialProfile(FinancialMetrics{
		OperatingCashFlow:      -10,
		FreeCashFlow:           110,
		StockBasedCompensation: 30,
		SharesOutstanding:      10,
	})

	assert.True(t, p.OperatingCashFlowNegative())
	assert.Equal(t, 80.0, p.AdjustedFreeCashFlow())
	assert.Equal(t, 8.0, p.AdjustedFCFPerShare())
	assert.Equal(t, -1.0, p.OperatingCashFlowPerShare())
}

func TestFinancialProfile_BalanceSheetMetrics(t *testing.T) {
	p := NewFinancialProfile(FinancialMetrics{
		BookValuePerShare: 20,
		SharesOutstanding: 100,
		IntangibleAssets:  300,
		Goodwill:          200,
		TotalAssets:       1000,
	})

	assert.InDelta(t, 0.2, p.GoodwillToAssets(), 1e-9)
	assert.InDelta(t, 15.0, p.TangibleBookValuePerShare(), 1e-9)

	empty := NewFinancialProfile(FinancialMetrics{Goodwill: 50})
	assert.Zero(t, empty.GoodwillToAssets())
}

func TestFinancialProfile_MetricsRoundTrip(t *testing.T) {
	original := NewFinancialProfile(FinancialMetrics{
		EPS:               6.5,
		EarningsGrowth5Y:  0.08,
		DebtToEBITDA:      -2,
		ROE:               0.22,
		OperatingCashFlow: 500,
		Capex:             -120,
		SharesOutstanding: 250,
		NetMarginHistory:  []float64{0.21, 0.2, 0.19},
	})

	rebuilt := NewFinancialProfile(original.Metrics())
	assert.Equal(t, original, rebuilt)
}
