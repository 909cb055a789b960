package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/Rhymond/go-money"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	assetentity "portfolio_backend/internal/feature/assets/domain/entity"
	ledgerentity "portfolio_backend/internal/feature/ledger/domain/entity"
	priceentity "portfolio_backend/internal/feature/prices/domain/entity"
	"portfolio_backend/internal/feature/valuation/domain"
	"portfolio_backend/internal/feature/valuation/domain/entity"
	"portfolio_backend/internal/shared/caldate"
)

// Valuator builds point-in-time valuation snapshots.
type Valuator struct {
	portfolios PortfolioStore
	assets     AssetStore
	records    RecordStore
	prices     PriceCache
	log        zerolog.Logger
}

func NewValuator(portfolios PortfolioStore, assets AssetStore, records RecordStore, prices PriceCache, log zerolog.Logger) *Valuator {
	return &Valuator{
		portfolios: portfolios,
		assets:     assets,
		records:    records,
		prices:     prices,
		log:        log.With().Str("component", "valuator").Logger(),
	}
}

type position struct {
	qty  decimal.Decimal
	last ledgerentity.LedgerRecord
}

// Valuate values the portfolio as of date. Each holding is priced on date
// through the price cache, filling it from the gateway on a miss, and
// converted into the reference currency through the matching currency-pair
// asset (USD into KRW uses USDKRW). When the provider cannot answer, the
// price of the holding's latest record is used and the holding is marked
// Approximate. If a holding has no price or no rate the total unit is MixedUnit.
func (v *Valuator) Valuate(ctx context.Context, portfolioID uint, date caldate.Date) (entity.Snapshot, error) {
	if date.IsZero() {
		return entity.Snapshot{}, domain.ErrInvalidDate
	}
	p, err := v.portfolios.Get(ctx, portfolioID)
	if err != nil {
		return entity.Snapshot{}, err
	}
	recs, err := v.records.ListByPortfolio(ctx, p.ID, date, ledgerentity.AsOfOrBefore)
	if err != nil {
		return entity.Snapshot{}, err
	}

	positions := make(map[uint]*position)
	for _, rec := range recs {
		ps, ok := positions[rec.AssetID]
		if !ok {
			ps = &position{}
			positions[rec.AssetID] = ps
		}
		ps.qty = ps.qty.Add(decimal.NewFromFloat(rec.Change))
		ps.last = rec
	}
	ids := make([]uint, 0, len(positions))
	for id := range positions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	ref := p.ReferenceCurrency
	snap := entity.Snapshot{PortfolioID: p.ID, Date: date, Holdings: []entity.Holding{}, TotalUnit: ref}
	total := decimal.Zero
	mixed := false

	for _, id := range ids {
		ps := positions[id]
		if ps.qty.IsZero() {
			continue
		}
		asset, err := v.assets.Get(ctx, id)
		if err != nil {
			return entity.Snapshot{}, err
		}
		h := entity.Holding{AssetID: id, Symbol: asset.Symbol, Quantity: ps.qty.InexactFloat64()}

		pp, ok, err := v.priceOf(ctx, ps.last, date)
		if err != nil {
			return entity.Snapshot{}, err
		}
		if !ok {
			mixed = true
			snap.Holdings = append(snap.Holdings, h)
			continue
		}
		value := ps.qty.Mul(decimal.NewFromFloat(pp.Value))
		h.PriceDate = pp.Date
		h.Approximate = pp.Approximate
		h.Price = pp.Value
		h.Unit = pp.Unit
		h.Value = value.InexactFloat64()
		h.Priced = true

		converted, ok, err := v.convert(ctx, value, pp.Unit, ref, date)
		if err != nil {
			return entity.Snapshot{}, err
		}
		if ok {
			h.ConvertedValue = converted.InexactFloat64()
			h.Converted = true
			total = total.Add(converted)
		} else {
			mixed = true
		}
		snap.Holdings = append(snap.Holdings, h)
	}

	if c := money.GetCurrency(ref); c != nil {
		total = total.Round(int32(c.Fraction))
	}
	snap.Total = total.InexactFloat64()
	if mixed {
		snap.TotalUnit = entity.MixedUnit
	}
	return snap, nil
}

// priceOf returns the price of rec's asset on date. A gateway failure falls
// back to the cached point of rec's day, then to the copy on rec itself;
// either fallback is marked Approximate.
func (v *Valuator) priceOf(ctx context.Context, rec ledgerentity.LedgerRecord, date caldate.Date) (priceentity.PricePoint, bool, error) {
	pp, err := v.prices.GetOrFetch(ctx, rec.AssetID, date, false)
	if err == nil {
		return pp, true, nil
	}
	kind := priceentity.KindOf(err)
	if kind == "" {
		return priceentity.PricePoint{}, false, fmt.Errorf("price of asset %d on %s: %w", rec.AssetID, date, err)
	}
	v.log.Warn().
		Err(err).
		Uint("asset_id", rec.AssetID).
		Str("date", date.String()).
		Str("kind", string(kind)).
		Msg("price unavailable, using last recorded price")

	pp, ok, err := v.prices.Get(ctx, rec.AssetID, rec.Date)
	if err != nil {
		return priceentity.PricePoint{}, false, err
	}
	if !ok {
		if !rec.Priced() {
			return priceentity.PricePoint{}, false, nil
		}
		pp = priceentity.PricePoint{AssetID: rec.AssetID, Date: rec.Date, Value: rec.Price, Unit: rec.Unit}
	}
	pp.Approximate = true
	return pp, true, nil
}

func (v *Valuator) convert(ctx context.Context, value decimal.Decimal, unit, ref string, date caldate.Date) (decimal.Decimal, bool, error) {
	if unit == ref {
		return value, true, nil
	}
	pair, ok, err := v.assets.FindBySymbol(ctx, assetentity.CategoryCurrency, unit+ref)
	if err != nil || !ok {
		return decimal.Zero, false, err
	}
	rate, err := v.prices.GetOrFetch(ctx, pair.ID, date, false)
	if err != nil {
		if kind := priceentity.KindOf(err); kind != "" {
			v.log.Warn().Err(err).Str("pair", pair.Symbol).Str("date", date.String()).Str("kind", string(kind)).Msg("exchange rate unavailable")
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("rate %s on %s: %w", pair.Symbol, date, err)
	}
	if rate.Unit != ref {
		return decimal.Zero, false, nil
	}
	return value.Mul(decimal.NewFromFloat(rate.Value)), true, nil
}
