package portfolio

import (
	"github.com/wonny/moatscreen/internal/contracts"
	"github.com/wonny/moatscreen/internal/strategyconfig"
)

// Bucket names
const (
	BucketApproved = "APPROVED"
	BucketWatched  = "WATCHED"
	BucketRejected = "REJECTED"
)

// IsApproved: clean AND score >= 80 AND margin >= 25
func IsApproved(a contracts.Analysis, b strategyconfig.Buckets) bool {
	return a.IsClean() && a.FinalScore >= b.ApprovedScore && a.Margin >= b.ApprovedMargin
}

// IsWatched: clean AND (60 <= score < 80 OR margin < 25).
// Not disjoint from the other buckets: a clean low-score security with a thin margin is also REJECTED.
func IsWatched(a contracts.Analysis, b strategyconfig.Buckets) bool {
	inBand := a.FinalScore >= b.WatchMinScore && a.FinalScore < b.ApprovedScore
	return a.IsClean() && (inBand || a.Margin < b.ApprovedMargin)
}

// IsRejected: has violations OR score < 60
func IsRejected(a contracts.Analysis, b strategyconfig.Buckets) bool {
	return !a.IsClean() || a.FinalScore < b.RejectBelow
}

func filter(analyses []contracts.Analysis, keep func(contracts.Analysis) bool) []contracts.Analysis {
	out := make([]contracts.Analysis, 0)
	for _, a := range analyses {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

// Approved returns the APPROVED bucket, recomputed on every call
func (p *Portfolio) Approved() []contracts.Analysis {
	return approvedOf(p.Analyses(), p.protocol.Buckets)
}

// Watched returns the WATCHED bucket, recomputed on every call
func (p *Portfolio) Watched() []contracts.Analysis {
	return watchedOf(p.Analyses(), p.protocol.Buckets)
}

// Rejected returns the REJECTED bucket, recomputed on every call
func (p *Portfolio) Rejected() []contracts.Analysis {
	return rejectedOf(p.Analyses(), p.protocol.Buckets)
}

func approvedOf(analyses []contracts.Analysis, b strategyconfig.Buckets) []contracts.Analysis {
	return filter(analyses, func(a contracts.Analysis) bool { return IsApproved(a, b) })
}

func watchedOf(analyses []contracts.Analysis, b strategyconfig.Buckets) []contracts.Analysis {
	return filter(analyses, func(a contracts.Analysis) bool { return IsWatched(a, b) })
}

func rejectedOf(analyses []contracts.Analysis, b strategyconfig.Buckets) []contracts.Analysis {
	return filter(analyses, func(a contracts.Analysis) bool { return IsRejected(a, b) })
}
