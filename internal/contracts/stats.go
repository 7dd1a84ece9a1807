package contracts

// PortfolioStats is the aggregate view of a portfolio
type PortfolioStats struct {
	Total              int            `json:"total"`
	Approved           int            `json:"approved"`
	Watched            int            `json:"watched"`
	Rejected           int            `json:"rejected"`
	ApprovedPct        float64        `json:"approved_pct"`
	AverageScore       float64        `json:"average_score"`
	ScoreStdDev        float64        `json:"score_std_dev"`
	SectorDistribution map[Sector]int `json:"sector_distribution"`
}
