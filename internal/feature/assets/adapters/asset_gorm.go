// Package adapters はassetsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"portfolio_backend/internal/feature/assets/domain"
	"portfolio_backend/internal/feature/assets/domain/entity"
	"portfolio_backend/internal/feature/assets/usecase"
	"portfolio_backend/internal/platform/db"
)

// assetGorm はAssetRepositoryインターフェースのgorm実装です。
type assetGorm struct {
	db *gorm.DB
}

var _ usecase.AssetRepository = (*assetGorm)(nil)

// NewAssetRepository は指定されたDB接続でassetGormリポジトリの新しいインスタンスを生成します。
func NewAssetRepository(db *gorm.DB) *assetGorm {
	return &assetGorm{db: db}
}

// AssetModel is the assets row. (category, symbol) is unique.
type AssetModel struct {
	ID          uint   `gorm:"primaryKey"`
	Category    string `gorm:"size:16;not null;uniqueIndex:asset_category_symbol,priority:1"`
	Symbol      string `gorm:"size:32;not null;uniqueIndex:asset_category_symbol,priority:2"`
	DisplayName string `gorm:"size:128;not null"`
	Unit        string `gorm:"size:8;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (AssetModel) TableName() string {
	return "assets"
}

func toModel(a entity.Asset) AssetModel {
	return AssetModel{
		ID:          a.ID,
		Category:    string(a.Category),
		Symbol:      a.Symbol,
		DisplayName: a.DisplayName,
		Unit:        a.Unit,
	}
}

func toEntity(m AssetModel) entity.Asset {
	return entity.Asset{
		ID:          m.ID,
		Category:    entity.Category(m.Category),
		Symbol:      m.Symbol,
		DisplayName: m.DisplayName,
		Unit:        m.Unit,
	}
}

// ListAll はカテゴリ・シンボル順にすべての資産を返します。
func (r *assetGorm) ListAll(ctx context.Context) ([]entity.Asset, error) {
	var rows []AssetModel
	if err := r.db.WithContext(ctx).
		Order("category ASC").
		Order("symbol ASC").
		Find(&rows).Error; err != nil {
		return nil, db.Classify(err)
	}
	out := make([]entity.Asset, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}

// Get はIDで資産を取得します。存在しない場合は ErrAssetNotFound を返します。
func (r *assetGorm) Get(ctx context.Context, id uint) (entity.Asset, error) {
	var m AssetModel
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.Asset{}, fmt.Errorf("%w: id %d", domain.ErrAssetNotFound, id)
	}
	if err != nil {
		return entity.Asset{}, db.Classify(err)
	}
	return toEntity(m), nil
}

// FindBySymbol は(category, symbol)で資産を検索します。
func (r *assetGorm) FindBySymbol(ctx context.Context, category entity.Category, symbol string) (entity.Asset, bool, error) {
	var rows []AssetModel
	if err := r.db.WithContext(ctx).
		Where("category = ? AND symbol = ?", string(category), symbol).
		Limit(1).
		Find(&rows).Error; err != nil {
		return entity.Asset{}, false, db.Classify(err)
	}
	if len(rows) == 0 {
		return entity.Asset{}, false, nil
	}
	return toEntity(rows[0]), true, nil
}

// Create は資産を登録し、採番されたIDを含めて返します。
func (r *assetGorm) Create(ctx context.Context, a entity.Asset) (entity.Asset, error) {
	m := toModel(a)
	m.ID = 0
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return entity.Asset{}, domain.ErrDuplicateAsset
		}
		return entity.Asset{}, db.Classify(err)
	}
	return toEntity(m), nil
}

// Update は資産の全項目を上書きします。
func (r *assetGorm) Update(ctx context.Context, a entity.Asset) error {
	res := r.db.WithContext(ctx).Model(&AssetModel{}).Where("id = ?", a.ID).Updates(map[string]any{
		"category":     string(a.Category),
		"symbol":       a.Symbol,
		"display_name": a.DisplayName,
		"unit":         a.Unit,
		"updated_at":   time.Now(),
	})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateAsset
		}
		return db.Classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", domain.ErrAssetNotFound, a.ID)
	}
	return nil
}
