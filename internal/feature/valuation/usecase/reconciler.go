package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	ledgerentity "portfolio_backend/internal/feature/ledger/domain/entity"
	portfolioentity "portfolio_backend/internal/feature/portfolios/domain/entity"
	priceentity "portfolio_backend/internal/feature/prices/domain/entity"
	"portfolio_backend/internal/feature/valuation/domain/entity"
	"portfolio_backend/internal/shared/caldate"
)

// Reconciler recomputes running balances of one portfolio and refreshes the
// price copied onto each stale record. It keeps no state between calls.
type Reconciler struct {
	records RecordStore
	prices  PriceCache
	log     zerolog.Logger
}

func NewReconciler(records RecordStore, prices PriceCache, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		records: records,
		prices:  prices,
		log:     log.With().Str("component", "reconciler").Logger(),
	}
}

// Reconcile walks the portfolio's records up to target in date order. A
// record is refreshed when its result differs from the running total, when it
// has no price yet, or when force is set. A failed price lookup skips that
// record only; a store failure stops the portfolio.
func (r *Reconciler) Reconcile(ctx context.Context, p portfolioentity.Portfolio, target caldate.Date, force bool) entity.Outcome {
	out := entity.Outcome{PortfolioID: p.ID, Target: target, Status: entity.StatusOK}
	log := r.log.With().Uint("portfolio_id", p.ID).Str("target", target.String()).Bool("force", force).Logger()

	recs, err := r.records.ListByPortfolio(ctx, p.ID, target, ledgerentity.AsOfOrBefore)
	if err != nil {
		return failed(out, log, fmt.Errorf("load records: %w", err))
	}

	totals := make(map[uint]decimal.Decimal)
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return failed(out, log, err)
		}
		total := totals[rec.AssetID].Add(decimal.NewFromFloat(rec.Change))
		totals[rec.AssetID] = total
		result := total.InexactFloat64()
		out.Checked++

		if !force && rec.Result == result && rec.Priced() {
			continue
		}

		pp, err := r.prices.GetOrFetch(ctx, rec.AssetID, rec.Date, force)
		if err != nil {
			kind := priceentity.KindOf(err)
			if kind == "" {
				return failed(out, log, fmt.Errorf("price of asset %d on %s: %w", rec.AssetID, rec.Date, err))
			}
			log.Warn().
				Err(err).
				Uint("asset_id", rec.AssetID).
				Str("date", rec.Date.String()).
				Str("kind", string(kind)).
				Msg("price lookup failed, record left unchanged")
			out.Failed++
			out.Details = append(out.Details, fmt.Sprintf("asset %d on %s: %s", rec.AssetID, rec.Date, kind))
			continue
		}

		rec.Result = result
		rec.Price = pp.Value
		rec.Unit = pp.Unit
		if err := r.records.Upsert(ctx, rec); err != nil {
			return failed(out, log, fmt.Errorf("write record asset %d on %s: %w", rec.AssetID, rec.Date, err))
		}
		out.Updated++
	}

	if out.Failed > 0 {
		out.Status = entity.StatusPartial
	}
	log.Debug().
		Int("checked", out.Checked).
		Int("updated", out.Updated).
		Int("failed", out.Failed).
		Msg("portfolio reconciled")
	return out
}

func failed(out entity.Outcome, log zerolog.Logger, err error) entity.Outcome {
	log.Error().Err(err).Msg("reconcile aborted")
	out.Status = entity.StatusFailed
	out.Details = append(out.Details, err.Error())
	return out
}
