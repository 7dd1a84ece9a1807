package contracts

import "strings"

// SecurityPayload is the loosely-typed input record produced by the quote layer
// ⭐ SSOT: 외부 데이터 → 내부 모델 입력 계약
type SecurityPayload struct {
	Ticker     string           `json:"ticker"`
	Name       string           `json:"name"`
	Sector     string           `json:"sector"` // free text, mapped by the factory
	Price      float64          `json:"price"`
	Beta       float64          `json:"beta"`
	Moats      []Moat           `json:"moats,omitempty"`
	Financials FinancialMetrics `json:"financials"`
}

// NormalizedTicker returns the trimmed, uppercased ticker
func (p *SecurityPayload) NormalizedTicker() string {
	return NormalizeTicker(p.Ticker)
}

// NormalizeTicker trims and uppercases a ticker symbol
func NormalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}
