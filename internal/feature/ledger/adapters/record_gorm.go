package adapters

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"portfolio_backend/internal/feature/ledger/domain/entity"
	"portfolio_backend/internal/feature/ledger/usecase"
	"portfolio_backend/internal/platform/db"
	"portfolio_backend/internal/shared/caldate"
)

type recordGorm struct {
	db *gorm.DB
}

var _ usecase.RecordRepository = (*recordGorm)(nil)

func NewRecordRepository(db *gorm.DB) *recordGorm {
	return &recordGorm{db: db}
}

// RecordModel is the ledger_records row.
type RecordModel struct {
	ID          uint   `gorm:"primaryKey"`
	PortfolioID uint   `gorm:"not null;uniqueIndex:ledger_pf_asset_day,priority:1;index:ledger_pf_day,priority:1"`
	AssetID     uint   `gorm:"not null;uniqueIndex:ledger_pf_asset_day,priority:2;index"`
	Date        string `gorm:"column:day;size:10;not null;uniqueIndex:ledger_pf_asset_day,priority:3;index:ledger_pf_day,priority:2"`

	Change    float64 `gorm:"not null"`
	Result    float64 `gorm:"not null;default:0"`
	Price     float64 `gorm:"not null;default:0"`
	Unit      string  `gorm:"size:8;not null;default:''"`
	Memo      string  `gorm:"size:255"`
	UpdatedAt time.Time
}

func (RecordModel) TableName() string {
	return "ledger_records"
}

func toModel(e entity.LedgerRecord) RecordModel {
	return RecordModel{
		PortfolioID: e.PortfolioID,
		AssetID:     e.AssetID,
		Date:        e.Date.String(),
		Change:      e.Change,
		Result:      e.Result,
		Price:       e.Price,
		Unit:        e.Unit,
		Memo:        e.Memo,
	}
}

func toEntities(rows []RecordModel) ([]entity.LedgerRecord, error) {
	out := make([]entity.LedgerRecord, 0, len(rows))
	for _, m := range rows {
		d, err := caldate.Parse(m.Date)
		if err != nil {
			return nil, fmt.Errorf("ledger record %d: %w", m.ID, err)
		}
		out = append(out, entity.LedgerRecord{
			PortfolioID: m.PortfolioID,
			AssetID:     m.AssetID,
			Date:        d,
			Change:      m.Change,
			Result:      m.Result,
			Price:       m.Price,
			Unit:        m.Unit,
			Memo:        m.Memo,
		})
	}
	return out, nil
}

// ListByPortfolio returns the portfolio's records selected by mode relative
// to date, ordered by date then asset id.
func (r *recordGorm) ListByPortfolio(ctx context.Context, portfolioID uint, date caldate.Date, mode entity.BoundaryMode) ([]entity.LedgerRecord, error) {
	var op string
	switch mode {
	case entity.Exact:
		op = "="
	case entity.AsOfOrBefore:
		op = "<="
	case entity.OnOrAfter:
		op = ">="
	default:
		return nil, fmt.Errorf("unknown boundary mode %d", mode)
	}

	var rows []RecordModel
	err := r.db.WithContext(ctx).
		Where("portfolio_id = ? AND day "+op+" ?", portfolioID, date.String()).
		Order("day ASC").
		Order("asset_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, db.Classify(err)
	}
	return toEntities(rows)
}

// ListRange returns one asset's records in [start, end) ordered by date.
func (r *recordGorm) ListRange(ctx context.Context, portfolioID, assetID uint, start, end caldate.Date) ([]entity.LedgerRecord, error) {
	var rows []RecordModel
	err := r.db.WithContext(ctx).
		Where("portfolio_id = ? AND asset_id = ? AND day >= ? AND day < ?", portfolioID, assetID, start.String(), end.String()).
		Order("day ASC").
		Find(&rows).Error
	if err != nil {
		return nil, db.Classify(err)
	}
	return toEntities(rows)
}

// Find returns the record for (portfolio, asset, date) if present.
func (r *recordGorm) Find(ctx context.Context, portfolioID, assetID uint, date caldate.Date) (entity.LedgerRecord, bool, error) {
	var rows []RecordModel
	err := r.db.WithContext(ctx).
		Where("portfolio_id = ? AND asset_id = ? AND day = ?", portfolioID, assetID, date.String()).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return entity.LedgerRecord{}, false, db.Classify(err)
	}
	if len(rows) == 0 {
		return entity.LedgerRecord{}, false, nil
	}
	out, err := toEntities(rows)
	if err != nil {
		return entity.LedgerRecord{}, false, err
	}
	return out[0], true, nil
}

// Upsert writes rec atomically on (portfolio_id, asset_id, day).
func (r *recordGorm) Upsert(ctx context.Context, rec entity.LedgerRecord) error {
	m := toModel(rec)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "portfolio_id"}, {Name: "asset_id"}, {Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{"change", "result", "price", "unit", "memo", "updated_at"}),
	}).Create(&m).Error
	return db.Classify(err)
}

// CountByAsset reports how many records reference assetID.
func (r *recordGorm) CountByAsset(ctx context.Context, assetID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&RecordModel{}).Where("asset_id = ?", assetID).Count(&n).Error
	return n, db.Classify(err)
}
