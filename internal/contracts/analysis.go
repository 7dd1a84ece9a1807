package contracts

// Violation is a fired kill switch
type Violation struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FilterResult is the outcome of a quality filter or sector risk check
type FilterResult struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// Analysis is the per-security output contract
// ⭐ SSOT: 종목 분석 결과 전달 (Security → Portfolio/API/Report)
type Analysis struct {
	Ticker   string  `json:"ticker"`
	Name     string  `json:"name"`
	Sector   Sector  `json:"sector"`
	Price    float64 `json:"price"`
	Beta     float64 `json:"beta"`
	Strategy string  `json:"strategy"`
	Moats    []Moat  `json:"moats"`

	FairPrice         float64        `json:"fair_price"`
	Margin            float64        `json:"margin"` // %, negative = overpriced
	QuantitativeScore float64        `json:"quantitative_score"`
	QualitativeScore  float64        `json:"qualitative_score"`
	FinalScore        float64        `json:"final_score"`
	Recommendation    Recommendation `json:"recommendation"`
	PositionLimit     float64        `json:"position_limit"` // % of capital

	Violations []Violation    `json:"violations"`
	Filters    []FilterResult `json:"filters"`
	SectorRisk FilterResult   `json:"sector_risk"`
}

// IsClean reports whether no kill switch fired
func (a *Analysis) IsClean() bool {
	return len(a.Violations) == 0
}

// FailedFilters returns the names of failed quality filters
func (a *Analysis) FailedFilters() []string {
	failed := make([]string, 0)
	for _, f := range a.Filters {
		if !f.Passed {
			failed = append(failed, f.Name)
		}
	}
	return failed
}
