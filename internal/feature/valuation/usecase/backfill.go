package usecase

import (
	"context"
	"fmt"
	"math"

	priceentity "portfolio_backend/internal/feature/prices/domain/entity"
	"portfolio_backend/internal/feature/valuation/domain"
	"portfolio_backend/internal/feature/valuation/domain/entity"
	"portfolio_backend/internal/shared/caldate"
)

// BackfillRange loads one asset's daily series for [start, end) with a single
// provider request and writes only what differs from the store: price points
// whose value bits changed, and records whose copied price no longer matches.
// Record days without a sample are priced with the snap rule. Repeating the
// call with unchanged provider data writes nothing.
func (s *Scheduler) BackfillRange(ctx context.Context, portfolioID, assetID uint, start, end caldate.Date) (entity.BackfillResult, error) {
	var res entity.BackfillResult
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return res, fmt.Errorf("%w: [%s, %s)", domain.ErrInvalidRange, start, end)
	}
	if _, err := s.portfolios.Get(ctx, portfolioID); err != nil {
		return res, err
	}
	asset, err := s.assets.Get(ctx, assetID)
	if err != nil {
		return res, err
	}
	log := s.log.With().
		Uint("portfolio_id", portfolioID).
		Uint("asset_id", assetID).
		Str("start", start.String()).
		Str("end", end.String()).
		Logger()

	samples, err := s.fetcher.FetchRange(ctx, asset.Category, asset.Symbol, start, end)
	if err != nil {
		return res, err
	}
	res.Fetched = len(samples)

	cached, err := s.prices.ListRange(ctx, assetID, start, end)
	if err != nil {
		return res, err
	}
	known := make(map[caldate.Date]priceentity.PricePoint, len(cached))
	for _, p := range cached {
		known[p.Date] = p
	}

	for _, smp := range samples {
		if cur, ok := known[smp.Date]; ok && sameBits(cur.Value, smp.Value) && cur.Unit == smp.Unit && !cur.Approximate {
			continue
		}
		p := priceentity.PricePoint{
			AssetID:    assetID,
			Date:       smp.Date,
			Value:      smp.Value,
			Unit:       smp.Unit,
			ObservedAt: smp.Timestamp,
		}
		if err := s.prices.Store(ctx, p); err != nil {
			return res, err
		}
		known[smp.Date] = p
		res.PricesWritten++
	}

	recs, err := s.records.ListRange(ctx, portfolioID, assetID, start, end)
	if err != nil {
		return res, err
	}
	for _, rec := range recs {
		p, ok := known[rec.Date]
		if !ok {
			q, found := priceentity.Snap(samples, rec.Date)
			if !found {
				log.Warn().Str("date", rec.Date.String()).Msg("no sample to price record")
				continue
			}
			p = priceentity.PricePoint{
				AssetID:     assetID,
				Date:        rec.Date,
				Value:       q.Value,
				Unit:        q.Unit,
				ObservedAt:  q.Timestamp,
				Approximate: q.Approximate,
			}
			if err := s.prices.Store(ctx, p); err != nil {
				return res, err
			}
			known[rec.Date] = p
			res.PricesWritten++
		}

		if sameBits(rec.Price, p.Value) && rec.Unit == p.Unit {
			continue
		}
		rec.Price = p.Value
		rec.Unit = p.Unit
		if err := s.records.Upsert(ctx, rec); err != nil {
			return res, err
		}
		res.RecordsWritten++
	}

	log.Info().
		Int("fetched", res.Fetched).
		Int("prices_written", res.PricesWritten).
		Int("records_written", res.RecordsWritten).
		Msg("backfill finished")
	return res, nil
}

func sameBits(a, b float64) bool {
	return math.Float64bits(a) == math.Float64bits(b)
}
