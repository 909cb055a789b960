package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	portfolioentity "portfolio_backend/internal/feature/portfolios/domain/entity"
	"portfolio_backend/internal/feature/valuation/domain/entity"
	"portfolio_backend/internal/shared/caldate"
)

// Scheduler runs the Reconciler over every portfolio and performs ranged
// backfills. Portfolios are processed one after another.
type Scheduler struct {
	portfolios PortfolioStore
	assets     AssetStore
	records    RecordStore
	prices     PriceCache
	fetcher    RangeFetcher
	reconciler *Reconciler
	log        zerolog.Logger

	now      func() time.Time
	newRunID func() string
}

func NewScheduler(portfolios PortfolioStore, assets AssetStore, records RecordStore, prices PriceCache, fetcher RangeFetcher, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		portfolios: portfolios,
		assets:     assets,
		records:    records,
		prices:     prices,
		fetcher:    fetcher,
		reconciler: NewReconciler(records, prices, log),
		log:        log.With().Str("component", "valuation_scheduler").Logger(),
		now:        time.Now,
		newRunID:   uuid.NewString,
	}
}

// RunAll reconciles every portfolio as of target. A zero target means today
// in each portfolio's own timezone. One portfolio failing, even by panic,
// never stops the others.
func (s *Scheduler) RunAll(ctx context.Context, target caldate.Date, force bool) []entity.Outcome {
	runID := s.newRunID()
	log := s.log.With().Str("run_id", runID).Logger()

	ps, err := s.portfolios.ListAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("list portfolios")
		return []entity.Outcome{{
			RunID:   runID,
			Target:  target,
			Status:  entity.StatusFailed,
			Details: []string{fmt.Sprintf("list portfolios: %v", err)},
		}}
	}

	start := time.Now()
	outs := make([]entity.Outcome, 0, len(ps))
	counts := map[entity.Status]int{}
	for _, p := range ps {
		o := s.runOne(ctx, p, target, force, log)
		o.RunID = runID
		counts[o.Status]++
		outs = append(outs, o)
	}

	log.Info().
		Int("portfolios", len(ps)).
		Int("ok", counts[entity.StatusOK]).
		Int("partial", counts[entity.StatusPartial]).
		Int("failed", counts[entity.StatusFailed]).
		Bool("force", force).
		Dur("elapsed", time.Since(start)).
		Msg("valuation run finished")
	return outs
}

// Run reconciles a single portfolio. The error is set only when the
// portfolio cannot be loaded.
func (s *Scheduler) Run(ctx context.Context, portfolioID uint, target caldate.Date, force bool) (entity.Outcome, error) {
	p, err := s.portfolios.Get(ctx, portfolioID)
	if err != nil {
		return entity.Outcome{}, err
	}
	runID := s.newRunID()
	o := s.runOne(ctx, p, target, force, s.log.With().Str("run_id", runID).Logger())
	o.RunID = runID
	return o, nil
}

func (s *Scheduler) runOne(ctx context.Context, p portfolioentity.Portfolio, target caldate.Date, force bool, log zerolog.Logger) (out entity.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Uint("portfolio_id", p.ID).Interface("panic", r).Msg("reconcile panicked")
			out = entity.Outcome{
				PortfolioID: p.ID,
				Target:      target,
				Status:      entity.StatusFailed,
				Details:     []string{fmt.Sprintf("panic: %v", r)},
			}
		}
	}()

	if target.IsZero() {
		today, err := p.Today(s.now())
		if err != nil {
			log.Error().Err(err).Uint("portfolio_id", p.ID).Str("timezone", p.Timezone).Msg("resolve today")
			return entity.Outcome{
				PortfolioID: p.ID,
				Status:      entity.StatusFailed,
				Details:     []string{fmt.Sprintf("timezone %q: %v", p.Timezone, err)},
			}
		}
		target = today
	}
	return s.reconciler.Reconcile(ctx, p, target, force)
}
