// Package usecase reconciles ledger balances with cached prices and values
// portfolios.
package usecase

import (
	"context"

	assetentity "portfolio_backend/internal/feature/assets/domain/entity"
	ledgerentity "portfolio_backend/internal/feature/ledger/domain/entity"
	portfolioentity "portfolio_backend/internal/feature/portfolios/domain/entity"
	priceentity "portfolio_backend/internal/feature/prices/domain/entity"
	"portfolio_backend/internal/feature/valuation/domain/entity"
	"portfolio_backend/internal/shared/caldate"
)

// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).

// RecordStore reads and writes ledger records.
type RecordStore interface {
	ListByPortfolio(ctx context.Context, portfolioID uint, date caldate.Date, mode ledgerentity.BoundaryMode) ([]ledgerentity.LedgerRecord, error)
	ListRange(ctx context.Context, portfolioID, assetID uint, start, end caldate.Date) ([]ledgerentity.LedgerRecord, error)
	Upsert(ctx context.Context, rec ledgerentity.LedgerRecord) error
}

// PriceCache is the memoized price store.
type PriceCache interface {
	Get(ctx context.Context, assetID uint, date caldate.Date) (priceentity.PricePoint, bool, error)
	Store(ctx context.Context, p priceentity.PricePoint) error
	ListRange(ctx context.Context, assetID uint, start, end caldate.Date) ([]priceentity.PricePoint, error)
	GetOrFetch(ctx context.Context, assetID uint, date caldate.Date, force bool) (priceentity.PricePoint, error)
}

// RangeFetcher fetches a provider's daily series in one request.
type RangeFetcher interface {
	FetchRange(ctx context.Context, category assetentity.Category, symbol string, start, end caldate.Date) ([]priceentity.Sample, error)
}

type PortfolioStore interface {
	ListAll(ctx context.Context) ([]portfolioentity.Portfolio, error)
	Get(ctx context.Context, id uint) (portfolioentity.Portfolio, error)
}

type AssetStore interface {
	Get(ctx context.Context, id uint) (assetentity.Asset, error)
	FindBySymbol(ctx context.Context, category assetentity.Category, symbol string) (assetentity.Asset, bool, error)
}

// SnapshotStore persists dated portfolio valuations. One row per
// (portfolio, date); a later snapshot for the same day replaces the earlier.
type SnapshotStore interface {
	Upsert(ctx context.Context, snap entity.Snapshot) error
	List(ctx context.Context, portfolioID uint, start, end caldate.Date) ([]entity.Snapshot, error)
}
