package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"portfolio_backend/internal/feature/prices/domain/entity"
	"portfolio_backend/internal/feature/prices/usecase"
	"portfolio_backend/internal/platform/db"
	"portfolio_backend/internal/shared/caldate"
)

type priceGorm struct {
	db *gorm.DB
}

var _ usecase.PriceRepository = (*priceGorm)(nil)

func NewPriceRepository(db *gorm.DB) *priceGorm {
	return &priceGorm{db: db}
}

// PriceModel is the price_points row. The day is stored as YYYY-MM-DD text so
// range queries compare lexicographically on every driver.
type PriceModel struct {
	ID      uint   `gorm:"primaryKey"`
	AssetID uint   `gorm:"not null;uniqueIndex:price_asset_date,priority:1"`
	Date    string `gorm:"column:day;size:10;not null;uniqueIndex:price_asset_date,priority:2"`

	Value       float64   `gorm:"not null"`
	Unit        string    `gorm:"size:8;not null"`
	ObservedAt  time.Time `gorm:"not null"`
	Approximate bool      `gorm:"not null;default:false"`
	UpdatedAt   time.Time
}

func (PriceModel) TableName() string {
	return "price_points"
}

func toModel(e entity.PricePoint) PriceModel {
	return PriceModel{
		AssetID:     e.AssetID,
		Date:        e.Date.String(),
		Value:       e.Value,
		Unit:        e.Unit,
		ObservedAt:  e.ObservedAt.UTC(),
		Approximate: e.Approximate,
	}
}

func toEntity(m PriceModel) (entity.PricePoint, error) {
	d, err := caldate.Parse(m.Date)
	if err != nil {
		return entity.PricePoint{}, err
	}
	return entity.PricePoint{
		AssetID:     m.AssetID,
		Date:        d,
		Value:       m.Value,
		Unit:        m.Unit,
		ObservedAt:  m.ObservedAt,
		Approximate: m.Approximate,
	}, nil
}

// Upsert writes p, overwriting the row for (asset_id, date) in one statement.
func (r *priceGorm) Upsert(ctx context.Context, p entity.PricePoint) error {
	m := toModel(p)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "asset_id"}, {Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "unit", "observed_at", "approximate", "updated_at"}),
	}).Create(&m).Error
	return db.Classify(err)
}

func (r *priceGorm) Find(ctx context.Context, assetID uint, date caldate.Date) (entity.PricePoint, bool, error) {
	var m PriceModel
	err := r.db.WithContext(ctx).
		Where("asset_id = ? AND day = ?", assetID, date.String()).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.PricePoint{}, false, nil
	}
	if err != nil {
		return entity.PricePoint{}, false, db.Classify(err)
	}
	p, err := toEntity(m)
	if err != nil {
		return entity.PricePoint{}, false, err
	}
	return p, true, nil
}

// ListRange returns points in [start, end) ordered by date.
func (r *priceGorm) ListRange(ctx context.Context, assetID uint, start, end caldate.Date) ([]entity.PricePoint, error) {
	var rows []PriceModel
	err := r.db.WithContext(ctx).
		Where("asset_id = ? AND day >= ? AND day < ?", assetID, start.String(), end.String()).
		Order("day ASC").
		Find(&rows).Error
	if err != nil {
		return nil, db.Classify(err)
	}
	out := make([]entity.PricePoint, 0, len(rows))
	for _, m := range rows {
		p, err := toEntity(m)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
