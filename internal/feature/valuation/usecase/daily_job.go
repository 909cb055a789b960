package usecase

import (
	"context"
	"errors"
	"fmt"

	"portfolio_backend/internal/feature/valuation/domain/entity"
	"portfolio_backend/internal/platform/cron"
	"portfolio_backend/internal/shared/caldate"
)

// AllRunner runs a valuation pass over every portfolio.
type AllRunner interface {
	RunAll(ctx context.Context, target caldate.Date, force bool) []entity.Outcome
}

// SnapshotTaker persists a portfolio's valuation for one day.
type SnapshotTaker interface {
	Take(ctx context.Context, portfolioID uint, date caldate.Date) (entity.Snapshot, error)
}

// DailyJob is the periodic valuation: today in each portfolio's timezone,
// without forcing refreshes, followed by a stored snapshot per portfolio.
type DailyJob struct {
	runner    AllRunner
	snapshots SnapshotTaker
}

var _ cron.Job = (*DailyJob)(nil)

// NewDailyJob creates the job. snapshots may be nil to skip persisting.
func NewDailyJob(runner AllRunner, snapshots SnapshotTaker) *DailyJob {
	return &DailyJob{runner: runner, snapshots: snapshots}
}

func (j *DailyJob) Name() string { return "daily_valuation" }

// Run reports an error when any portfolio failed outright or its snapshot
// could not be stored. Failed portfolios get no snapshot; partial outcomes
// do, and are left for the next run to complete.
func (j *DailyJob) Run(ctx context.Context) error {
	outs := j.runner.RunAll(ctx, caldate.Date{}, false)
	failed := 0
	var errs []error
	for _, o := range outs {
		if o.Status == entity.StatusFailed {
			failed++
			continue
		}
		if j.snapshots == nil || o.Target.IsZero() {
			continue
		}
		if _, err := j.snapshots.Take(ctx, o.PortfolioID, o.Target); err != nil {
			errs = append(errs, fmt.Errorf("snapshot portfolio %d on %s: %w", o.PortfolioID, o.Target, err))
		}
	}
	if failed > 0 {
		errs = append([]error{fmt.Errorf("%d of %d portfolios failed", failed, len(outs))}, errs...)
	}
	return errors.Join(errs...)
}
