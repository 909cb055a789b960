package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"portfolio_backend/internal/feature/portfolios/domain"
	"portfolio_backend/internal/feature/portfolios/domain/entity"
	"portfolio_backend/internal/feature/portfolios/usecase"
	"portfolio_backend/internal/platform/db"
)

type portfolioGorm struct {
	db *gorm.DB
}

var _ usecase.PortfolioRepository = (*portfolioGorm)(nil)

func NewPortfolioRepository(db *gorm.DB) *portfolioGorm {
	return &portfolioGorm{db: db}
}

type PortfolioModel struct {
	ID                uint   `gorm:"primaryKey"`
	Name              string `gorm:"size:128;not null;uniqueIndex"`
	ReferenceCurrency string `gorm:"size:8;not null"`
	Timezone          string `gorm:"size:64;not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (PortfolioModel) TableName() string {
	return "portfolios"
}

func toEntity(m PortfolioModel) entity.Portfolio {
	return entity.Portfolio{
		ID:                m.ID,
		Name:              m.Name,
		ReferenceCurrency: m.ReferenceCurrency,
		Timezone:          m.Timezone,
	}
}

// ListAll returns every portfolio ordered by id.
func (r *portfolioGorm) ListAll(ctx context.Context) ([]entity.Portfolio, error) {
	var rows []PortfolioModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, db.Classify(err)
	}
	out := make([]entity.Portfolio, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}

func (r *portfolioGorm) Get(ctx context.Context, id uint) (entity.Portfolio, error) {
	var m PortfolioModel
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.Portfolio{}, fmt.Errorf("%w: id %d", domain.ErrPortfolioNotFound, id)
	}
	if err != nil {
		return entity.Portfolio{}, db.Classify(err)
	}
	return toEntity(m), nil
}

// UpsertByName creates the portfolio or updates currency and timezone of the
// one with the same name.
func (r *portfolioGorm) UpsertByName(ctx context.Context, p entity.Portfolio) (entity.Portfolio, error) {
	m := PortfolioModel{
		Name:              p.Name,
		ReferenceCurrency: p.ReferenceCurrency,
		Timezone:          p.Timezone,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"reference_currency", "timezone", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return entity.Portfolio{}, db.Classify(err)
	}

	// the returned id is not reliable on conflict across drivers
	var saved PortfolioModel
	if err := r.db.WithContext(ctx).Where("name = ?", p.Name).Take(&saved).Error; err != nil {
		return entity.Portfolio{}, db.Classify(err)
	}
	return toEntity(saved), nil
}
