package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/moatscreen/pkg/logger"
)

// RateSource returns the 10-year treasury yield (quote.Client)
type RateSource interface {
	FetchTreasuryRate(ctx context.Context) (float64, error)
}

// RateRefreshJob keeps the treasury rate cache warm
type RateRefreshJob struct {
	source RateSource
	logger *logger.Logger
}

// NewRateRefreshJob creates a new rate refresh job
func NewRateRefreshJob(source RateSource, log *logger.Logger) *RateRefreshJob {
	if log == nil {
		log = logger.Nop()
	}
	return &RateRefreshJob{
		source: source,
		logger: log,
	}
}

// Name returns the job name
func (j *RateRefreshJob) Name() string {
	return "treasury_rate_refresh"
}

// Schedule returns the cron schedule (top of every hour)
func (j *RateRefreshJob) Schedule() string {
	return "0 0 * * * *"
}

// Run fetches the rate through the caching client
func (j *RateRefreshJob) Run(ctx context.Context) error {
	rate, err := j.source.FetchTreasuryRate(ctx)
	if err != nil {
		return fmt.Errorf("refresh treasury rate: %w", err)
	}

	j.logger.WithField("rate", rate).Debug("Treasury rate refreshed")
	return nil
}
