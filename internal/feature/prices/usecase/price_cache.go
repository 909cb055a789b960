// Package usecase implements the price cache: memoized prices per
// (asset, day) filled from the external gateway on demand.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	assetdomain "portfolio_backend/internal/feature/assets/domain"
	assetentity "portfolio_backend/internal/feature/assets/domain/entity"
	"portfolio_backend/internal/feature/prices/domain/entity"
	"portfolio_backend/internal/shared/caldate"
)

// PriceRepository abstracts persistence of price points.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type PriceRepository interface {
	Find(ctx context.Context, assetID uint, date caldate.Date) (entity.PricePoint, bool, error)
	Upsert(ctx context.Context, p entity.PricePoint) error
	ListRange(ctx context.Context, assetID uint, start, end caldate.Date) ([]entity.PricePoint, error)
}

// Gateway fetches prices from external providers.
type Gateway interface {
	Fetch(ctx context.Context, category assetentity.Category, symbol string, date caldate.Date) (entity.Quote, error)
}

// AssetLookup resolves an asset id to its descriptor.
type AssetLookup interface {
	Get(ctx context.Context, id uint) (assetentity.Asset, error)
}

// PriceCache serves prices from the store and falls back to the gateway on a
// miss. A point is written only after the gateway answered.
type PriceCache struct {
	repo    PriceRepository
	gateway Gateway
	assets  AssetLookup
	now     func() time.Time
}

// NewPriceCache creates a PriceCache.
func NewPriceCache(repo PriceRepository, gateway Gateway, assets AssetLookup) *PriceCache {
	return &PriceCache{repo: repo, gateway: gateway, assets: assets, now: time.Now}
}

// Get reads a cached point. It never calls the gateway.
func (c *PriceCache) Get(ctx context.Context, assetID uint, date caldate.Date) (entity.PricePoint, bool, error) {
	return c.repo.Find(ctx, assetID, date)
}

// Put stores value as the price of assetID on date, replacing any existing point.
func (c *PriceCache) Put(ctx context.Context, assetID uint, date caldate.Date, value float64, unit string) error {
	return c.Store(ctx, entity.PricePoint{
		AssetID:    assetID,
		Date:       date,
		Value:      value,
		Unit:       unit,
		ObservedAt: c.now(),
	})
}

// Store is Put with the full point, keeping ObservedAt and Approximate.
func (c *PriceCache) Store(ctx context.Context, p entity.PricePoint) error {
	if p.AssetID == 0 || p.Date.IsZero() {
		return fmt.Errorf("price point needs asset and date: %+v", p)
	}
	if p.ObservedAt.IsZero() {
		p.ObservedAt = c.now()
	}
	return c.repo.Upsert(ctx, p)
}

// ListRange returns cached points for assetID in [start, end).
func (c *PriceCache) ListRange(ctx context.Context, assetID uint, start, end caldate.Date) ([]entity.PricePoint, error) {
	return c.repo.ListRange(ctx, assetID, start, end)
}

// GetOrFetch returns the cached point unless force is set or none exists, in
// which case it asks the gateway and stores the answer. Gateway failures are
// returned as is and leave the store untouched. An unknown asset is reported
// as a KindNotFound gateway failure so callers skip just that price.
func (c *PriceCache) GetOrFetch(ctx context.Context, assetID uint, date caldate.Date, force bool) (entity.PricePoint, error) {
	if !force {
		p, ok, err := c.repo.Find(ctx, assetID, date)
		if err != nil {
			return entity.PricePoint{}, err
		}
		if ok {
			return p, nil
		}
	}

	asset, err := c.assets.Get(ctx, assetID)
	if errors.Is(err, assetdomain.ErrAssetNotFound) {
		return entity.PricePoint{}, entity.NewGatewayError(entity.KindNotFound, "assets", fmt.Sprintf("#%d", assetID), err)
	}
	if err != nil {
		return entity.PricePoint{}, fmt.Errorf("lookup asset %d: %w", assetID, err)
	}
	q, err := c.gateway.Fetch(ctx, asset.Category, asset.Symbol, date)
	if err != nil {
		return entity.PricePoint{}, err
	}

	p := entity.PricePoint{
		AssetID:     assetID,
		Date:        date,
		Value:       q.Value,
		Unit:        q.Unit,
		ObservedAt:  q.Timestamp,
		Approximate: q.Approximate,
	}
	if err := c.Store(ctx, p); err != nil {
		return entity.PricePoint{}, err
	}
	return p, nil
}
