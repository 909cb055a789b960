// Package usecase implements ledger entry and queries.
package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"

	assetentity "portfolio_backend/internal/feature/assets/domain/entity"
	"portfolio_backend/internal/feature/ledger/domain"
	"portfolio_backend/internal/feature/ledger/domain/entity"
	portfolioentity "portfolio_backend/internal/feature/portfolios/domain/entity"
	"portfolio_backend/internal/shared/caldate"
)

// RecordRepository abstracts persistence of ledger records.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type RecordRepository interface {
	ListByPortfolio(ctx context.Context, portfolioID uint, date caldate.Date, mode entity.BoundaryMode) ([]entity.LedgerRecord, error)
	ListRange(ctx context.Context, portfolioID, assetID uint, start, end caldate.Date) ([]entity.LedgerRecord, error)
	Find(ctx context.Context, portfolioID, assetID uint, date caldate.Date) (entity.LedgerRecord, bool, error)
	Upsert(ctx context.Context, rec entity.LedgerRecord) error
}

type PortfolioLookup interface {
	Get(ctx context.Context, id uint) (portfolioentity.Portfolio, error)
}

type AssetLookup interface {
	Get(ctx context.Context, id uint) (assetentity.Asset, error)
}

// LedgerUsecase records balance changes.
type LedgerUsecase struct {
	repo       RecordRepository
	portfolios PortfolioLookup
	assets     AssetLookup
}

func NewLedgerUsecase(repo RecordRepository, portfolios PortfolioLookup, assets AssetLookup) *LedgerUsecase {
	return &LedgerUsecase{repo: repo, portfolios: portfolios, assets: assets}
}

// RecordChange adds change to the portfolio's holding of assetID on date.
// A second entry for the same day replaces that day's change; the running
// balance and price are left for the reconciler to recompute.
func (u *LedgerUsecase) RecordChange(ctx context.Context, portfolioID, assetID uint, date caldate.Date, change float64, memo string) (entity.LedgerRecord, error) {
	if date.IsZero() {
		return entity.LedgerRecord{}, fmt.Errorf("%w: date is required", domain.ErrInvalidRecord)
	}
	if change == 0 {
		return entity.LedgerRecord{}, domain.ErrZeroChange
	}
	if math.IsNaN(change) || math.IsInf(change, 0) {
		return entity.LedgerRecord{}, fmt.Errorf("%w: change %v", domain.ErrInvalidRecord, change)
	}
	if _, err := u.portfolios.Get(ctx, portfolioID); err != nil {
		return entity.LedgerRecord{}, err
	}
	if _, err := u.assets.Get(ctx, assetID); err != nil {
		return entity.LedgerRecord{}, err
	}

	rec, ok, err := u.repo.Find(ctx, portfolioID, assetID, date)
	if err != nil {
		return entity.LedgerRecord{}, err
	}
	if !ok {
		rec = entity.LedgerRecord{PortfolioID: portfolioID, AssetID: assetID, Date: date}
	}
	rec.Change = change
	if m := strings.TrimSpace(memo); m != "" {
		rec.Memo = m
	}

	if err := u.repo.Upsert(ctx, rec); err != nil {
		return entity.LedgerRecord{}, err
	}
	return rec, nil
}

// List returns the portfolio's records selected by mode relative to date.
func (u *LedgerUsecase) List(ctx context.Context, portfolioID uint, date caldate.Date, mode entity.BoundaryMode) ([]entity.LedgerRecord, error) {
	if _, err := u.portfolios.Get(ctx, portfolioID); err != nil {
		return nil, err
	}
	return u.repo.ListByPortfolio(ctx, portfolioID, date, mode)
}
