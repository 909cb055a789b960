package adapters

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"portfolio_backend/internal/feature/valuation/domain/entity"
	"portfolio_backend/internal/feature/valuation/usecase"
	"portfolio_backend/internal/platform/db"
	"portfolio_backend/internal/shared/caldate"
)

type snapshotGorm struct {
	db *gorm.DB
}

var _ usecase.SnapshotStore = (*snapshotGorm)(nil)

func NewSnapshotRepository(db *gorm.DB) *snapshotGorm {
	return &snapshotGorm{db: db}
}

// SnapshotModel is the portfolio_snapshots row. Holdings are kept as one
// JSON document; only the totals are queried.
type SnapshotModel struct {
	ID          uint   `gorm:"primaryKey"`
	PortfolioID uint   `gorm:"not null;uniqueIndex:snapshot_pf_day,priority:1"`
	Date        string `gorm:"column:day;size:10;not null;uniqueIndex:snapshot_pf_day,priority:2"`

	Total     float64                              `gorm:"not null;default:0"`
	TotalUnit string                               `gorm:"size:8;not null;default:''"`
	Holdings  datatypes.JSONType[[]entity.Holding] `gorm:"not null"`
	TakenAt   time.Time                            `gorm:"not null"`
}

func (SnapshotModel) TableName() string {
	return "portfolio_snapshots"
}

func toSnapshotModel(s entity.Snapshot) SnapshotModel {
	holdings := s.Holdings
	if holdings == nil {
		holdings = []entity.Holding{}
	}
	return SnapshotModel{
		PortfolioID: s.PortfolioID,
		Date:        s.Date.String(),
		Total:       s.Total,
		TotalUnit:   s.TotalUnit,
		Holdings:    datatypes.NewJSONType(holdings),
		TakenAt:     s.TakenAt,
	}
}

func toSnapshots(rows []SnapshotModel) ([]entity.Snapshot, error) {
	out := make([]entity.Snapshot, 0, len(rows))
	for _, m := range rows {
		d, err := caldate.Parse(m.Date)
		if err != nil {
			return nil, fmt.Errorf("portfolio snapshot %d: %w", m.ID, err)
		}
		out = append(out, entity.Snapshot{
			PortfolioID: m.PortfolioID,
			Date:        d,
			Holdings:    m.Holdings.Data(),
			Total:       m.Total,
			TotalUnit:   m.TotalUnit,
			TakenAt:     m.TakenAt,
		})
	}
	return out, nil
}

// Upsert writes snap atomically on (portfolio_id, day).
func (r *snapshotGorm) Upsert(ctx context.Context, snap entity.Snapshot) error {
	m := toSnapshotModel(snap)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "portfolio_id"}, {Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{"total", "total_unit", "holdings", "taken_at"}),
	}).Create(&m).Error
	return db.Classify(err)
}

// List returns the portfolio's snapshots in [start, end) ordered by date.
// A zero bound leaves that side open.
func (r *snapshotGorm) List(ctx context.Context, portfolioID uint, start, end caldate.Date) ([]entity.Snapshot, error) {
	q := r.db.WithContext(ctx).Where("portfolio_id = ?", portfolioID)
	if !start.IsZero() {
		q = q.Where("day >= ?", start.String())
	}
	if !end.IsZero() {
		q = q.Where("day < ?", end.String())
	}

	var rows []SnapshotModel
	if err := q.Order("day ASC").Find(&rows).Error; err != nil {
		return nil, db.Classify(err)
	}
	return toSnapshots(rows)
}
