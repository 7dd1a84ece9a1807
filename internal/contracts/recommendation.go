package contracts

// Recommendation is the discrete outcome of the decision table
type Recommendation string

const (
	RecommendationStrongBuy Recommendation = "STRONG_BUY"
	RecommendationBuy       Recommendation = "BUY"
	RecommendationWatch     Recommendation = "WATCH"
	RecommendationAvoid     Recommendation = "AVOID"
	RecommendationReject    Recommendation = "REJECT"
)

// Label returns the display label used in reports
func (r Recommendation) Label() string {
	switch r {
	case RecommendationStrongBuy:
		return "STRONG BUY"
	case RecommendationBuy:
		return "BUY"
	case RecommendationWatch:
		return "WATCH"
	case RecommendationAvoid:
		return "AVOID"
	case RecommendationReject:
		return "REJECT"
	default:
		return string(r)
	}
}

// IsBuy reports whether the recommendation allows opening a position
func (r Recommendation) IsBuy() bool {
	return r == RecommendationStrongBuy || r == RecommendationBuy
}
