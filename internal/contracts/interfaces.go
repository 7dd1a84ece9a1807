package contracts

import "context"

// Valued is the view of a security that valuation strategies read
type Valued interface {
	Profile() *FinancialProfile
	Beta() float64
	SectorRiskPremium() float64
}

// ValuationStrategy computes a buy-below fair price (safety discount included)
// ⭐ SSOT: 적정가 산출 인터페이스
type ValuationStrategy interface {
	Name() string
	FairPrice(sec Valued, riskFreeRate float64) float64
}

// QuoteSource fetches raw security data and the risk-free rate
// ⭐ SSOT: 외부 시세 데이터 인터페이스
type QuoteSource interface {
	FetchSecurity(ctx context.Context, ticker string) (*SecurityPayload, error)
	FetchSecurities(ctx context.Context, tickers []string) ([]SecurityPayload, error)
	FetchTreasuryRate(ctx context.Context) (float64, error)
}
