package contracts

// RankOrder names one of the portfolio ranking orders
type RankOrder string

const (
	RankByScore           RankOrder = "score"
	RankByMargin          RankOrder = "margin"
	RankByScoreThenMargin RankOrder = "score_margin"
	RankByBeta            RankOrder = "beta"
	RankBySector          RankOrder = "sector"
)

// AllRankOrders returns the supported orders
func AllRankOrders() []RankOrder {
	return []RankOrder{RankByScore, RankByMargin, RankByScoreThenMargin, RankByBeta, RankBySector}
}

// ParseRankOrder validates a ranking order name
func ParseRankOrder(s string) (RankOrder, bool) {
	for _, o := range AllRankOrders() {
		if string(o) == s {
			return o, true
		}
	}
	return "", false
}

// RankedSecurity represents a security with its position in a ranking
// ⭐ SSOT: 랭킹 결과 전달
type RankedSecurity struct {
	Rank           int            `json:"rank"` // 1-based
	Ticker         string         `json:"ticker"`
	Name           string         `json:"name"`
	Sector         Sector         `json:"sector"`
	Score          float64        `json:"score"`
	Margin         float64        `json:"margin"`
	Beta           float64        `json:"beta"`
	Recommendation Recommendation `json:"recommendation"`
}

// IsTopRanked checks if the security is in top N ranks
func (r *RankedSecurity) IsTopRanked(n int) bool {
	return r.Rank <= n && r.Rank > 0
}
