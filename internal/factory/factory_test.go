package factory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/moatscreen/internal/contracts"
	"github.com/wonny/moatscreen/internal/valuation"
	"github.com/wonny/moatscreen/pkg/logger"
)

func TestMapSector(t *testing.T) {
	tests := []struct {
		raw  string
		want contracts.Sector
	}{
		{"Technology", contracts.SectorTechnology},
		{"Application Software", contracts.SectorTechnology},
		{"Semiconductors", contracts.SectorTechnology},
		{"Financial Services", contracts.SectorBank},
		{"Regional Banks", contracts.SectorBank},
		{"Insurance - Life", contracts.SectorBank},
		{"Utilities", contracts.SectorUtility},
		{"Electric Power", contracts.SectorUtility},
		{"Consumer Defensive", contracts.SectorConsumerStaples},
		{"Beverages - Non-Alcoholic", contracts.SectorConsumerStaples},
		{"ConsumerStaples", contracts.SectorConsumerStaples},
		{"Healthcare", contracts.SectorHealth},
		{"Pharmaceuticals", contracts.SectorHealth},
		{"Industrials", contracts.SectorIndustrial},
		{"Real Estate", contracts.SectorRealEstate},
		{"REIT - Residential", contracts.SectorRealEstate},
		{"RealEstate", contracts.SectorRealEstate},
		{"Energy", contracts.SectorGeneral},
		{"", contracts.SectorGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, MapSector(tt.raw))
		})
	}
}

func TestBuild_AssignsStrategy(t *testing.T) {
	f := New(nil, logger.Nop())

	tests := []struct {
		sector   string
		strategy string
	}{
		{"Technology", valuation.NameDCF},
		{"Banks", valuation.NameBankMultiple},
		{"Utilities", valuation.NameDividendDiscount},
		{"Consumer Defensive", valuation.NameGraham},
		{"Energy", valuation.NameGraham},
	}

	for _, tt := range tests {
		t.Run(tt.sector, func(t *testing.T) {
			sec, err := f.Build(contracts.SecurityPayload{
				Ticker: "abc",
				Sector: tt.sector,
				Price:  10,
				Financials: contracts.FinancialMetrics{
					EPS:               1,
					SharesOutstanding: 100,
				},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.strategy, sec.StrategyName())
			assert.Equal(t, "ABC", sec.Ticker())
		})
	}
}

func TestBuild_DefaultsShares(t *testing.T) {
	sec, err := New(nil, nil).Build(contracts.SecurityPayload{
		Ticker:     "KO",
		Financials: contracts.FinancialMetrics{EPS: 2, SharesOutstanding: -5},
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultShares, sec.Profile().SharesOutstanding())
}

func TestBuild_Moats(t *testing.T) {
	sec, err := New(nil, nil).Build(contracts.SecurityPayload{
		Ticker: "KO",
		Sector: "Beverages",
		Moats:  []contracts.Moat{contracts.MoatCostAdvantage, contracts.MoatIntangibleAssets, contracts.MoatNone},
	})
	require.NoError(t, err)
	// 섹터 기본 해자와 중복 제거
	assert.Equal(t, []contracts.Moat{contracts.MoatIntangibleAssets, contracts.MoatCostAdvantage}, sec.Moats())
}

func TestBuildAll(t *testing.T) {
	f := New(nil, logger.Nop())

	built, err := f.BuildAll([]contracts.SecurityPayload{
		{Ticker: "KO", Sector: "Beverages"},
		{Ticker: "  ", Sector: "Technology"},
		{Ticker: "JPM", Sector: "Banks"},
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrEmptyTicker))
	require.Len(t, built, 2)
	assert.Equal(t, "KO", built[0].Ticker())
	assert.Equal(t, "JPM", built[1].Ticker())
}
