// Package usecase implements portfolio registration and lookup.
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Rhymond/go-money"

	"portfolio_backend/internal/feature/portfolios/domain"
	"portfolio_backend/internal/feature/portfolios/domain/entity"
)

// PortfolioRepository abstracts persistence of portfolios.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type PortfolioRepository interface {
	ListAll(ctx context.Context) ([]entity.Portfolio, error)
	Get(ctx context.Context, id uint) (entity.Portfolio, error)
	UpsertByName(ctx context.Context, p entity.Portfolio) (entity.Portfolio, error)
}

// PortfolioUsecase provides business logic for portfolio operations.
type PortfolioUsecase struct {
	repo PortfolioRepository
}

// NewPortfolioUsecase creates a new PortfolioUsecase with the given repository.
func NewPortfolioUsecase(r PortfolioRepository) *PortfolioUsecase {
	return &PortfolioUsecase{repo: r}
}

func (u *PortfolioUsecase) List(ctx context.Context) ([]entity.Portfolio, error) {
	return u.repo.ListAll(ctx)
}

func (u *PortfolioUsecase) Get(ctx context.Context, id uint) (entity.Portfolio, error) {
	return u.repo.Get(ctx, id)
}

// Upsert registers a portfolio by name. Name, currency and timezone are all
// required; an existing portfolio with the same name is updated in place.
func (u *PortfolioUsecase) Upsert(ctx context.Context, name, currency, timezone string) (entity.Portfolio, error) {
	p := entity.Portfolio{
		Name:              strings.TrimSpace(name),
		ReferenceCurrency: strings.ToUpper(strings.TrimSpace(currency)),
		Timezone:          strings.TrimSpace(timezone),
	}
	if p.Name == "" || p.ReferenceCurrency == "" || p.Timezone == "" {
		return entity.Portfolio{}, fmt.Errorf("%w: name, currency and timezone are required", domain.ErrInvalidPortfolio)
	}
	if money.GetCurrency(p.ReferenceCurrency) == nil {
		return entity.Portfolio{}, fmt.Errorf("%w: unknown currency %q", domain.ErrInvalidPortfolio, currency)
	}
	if _, err := time.LoadLocation(p.Timezone); err != nil {
		return entity.Portfolio{}, fmt.Errorf("%w: timezone %q: %v", domain.ErrInvalidPortfolio, timezone, err)
	}
	return u.repo.UpsertByName(ctx, p)
}
