// Package usecase implements the asset registry.
package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"

	"portfolio_backend/internal/feature/assets/domain"
	"portfolio_backend/internal/feature/assets/domain/entity"
)

// AssetRepository abstracts the persistence layer for assets.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type AssetRepository interface {
	ListAll(ctx context.Context) ([]entity.Asset, error)
	Get(ctx context.Context, id uint) (entity.Asset, error)
	FindBySymbol(ctx context.Context, category entity.Category, symbol string) (entity.Asset, bool, error)
	Create(ctx context.Context, a entity.Asset) (entity.Asset, error)
	Update(ctx context.Context, a entity.Asset) error
}

// ReferenceCounter reports how many ledger records use an asset.
type ReferenceCounter interface {
	CountByAsset(ctx context.Context, assetID uint) (int64, error)
}

// AssetUsecase provides business logic for asset operations.
type AssetUsecase struct {
	repo AssetRepository
	refs ReferenceCounter
}

// NewAssetUsecase creates a new AssetUsecase.
func NewAssetUsecase(r AssetRepository, refs ReferenceCounter) *AssetUsecase {
	return &AssetUsecase{repo: r, refs: refs}
}

func (u *AssetUsecase) List(ctx context.Context) ([]entity.Asset, error) {
	return u.repo.ListAll(ctx)
}

func (u *AssetUsecase) Get(ctx context.Context, id uint) (entity.Asset, error) {
	return u.repo.Get(ctx, id)
}

// Create registers an asset. An empty unit is derived from category and symbol.
func (u *AssetUsecase) Create(ctx context.Context, category, symbol, displayName, unit string) (entity.Asset, error) {
	a, err := normalize(category, symbol, displayName, unit)
	if err != nil {
		return entity.Asset{}, err
	}
	_, exists, err := u.repo.FindBySymbol(ctx, a.Category, a.Symbol)
	if err != nil {
		return entity.Asset{}, err
	}
	if exists {
		return entity.Asset{}, fmt.Errorf("%w: %s %s", domain.ErrDuplicateAsset, a.Category, a.Symbol)
	}
	return u.repo.Create(ctx, a)
}

// Update changes an asset. Once ledger records reference the asset only the
// display name may change, since category, symbol and unit decide the
// prices already cached for it.
func (u *AssetUsecase) Update(ctx context.Context, id uint, category, symbol, displayName, unit string) (entity.Asset, error) {
	cur, err := u.repo.Get(ctx, id)
	if err != nil {
		return entity.Asset{}, err
	}
	next, err := normalize(category, symbol, displayName, unit)
	if err != nil {
		return entity.Asset{}, err
	}
	next.ID = id

	if next.Category != cur.Category || next.Symbol != cur.Symbol || next.Unit != cur.Unit {
		n, err := u.refs.CountByAsset(ctx, id)
		if err != nil {
			return entity.Asset{}, err
		}
		if n > 0 {
			return entity.Asset{}, fmt.Errorf("%w: %d records", domain.ErrAssetReferenced, n)
		}
		if other, ok, err := u.repo.FindBySymbol(ctx, next.Category, next.Symbol); err != nil {
			return entity.Asset{}, err
		} else if ok && other.ID != id {
			return entity.Asset{}, fmt.Errorf("%w: %s %s", domain.ErrDuplicateAsset, next.Category, next.Symbol)
		}
	}
	if err := u.repo.Update(ctx, next); err != nil {
		return entity.Asset{}, err
	}
	return next, nil
}

func normalize(category, symbol, displayName, unit string) (entity.Asset, error) {
	c, err := entity.ParseCategory(strings.TrimSpace(category))
	if err != nil {
		return entity.Asset{}, fmt.Errorf("%w: %w", domain.ErrInvalidAsset, err)
	}
	a := entity.Asset{
		Category:    c,
		Symbol:      strings.ToUpper(strings.TrimSpace(symbol)),
		DisplayName: strings.TrimSpace(displayName),
		Unit:        strings.ToUpper(strings.TrimSpace(unit)),
	}
	if a.Symbol == "" {
		return entity.Asset{}, fmt.Errorf("%w: symbol is required", domain.ErrInvalidAsset)
	}
	if a.DisplayName == "" {
		a.DisplayName = a.Symbol
	}
	if a.Unit == "" {
		a.Unit = entity.DefaultUnit(c, a.Symbol)
	}
	if money.GetCurrency(a.Unit) == nil {
		return entity.Asset{}, fmt.Errorf("%w: unknown unit %q", domain.ErrInvalidAsset, a.Unit)
	}
	return a, nil
}
