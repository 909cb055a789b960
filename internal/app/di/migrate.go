package di

import (
	"fmt"

	"gorm.io/gorm"

	assetadapters "portfolio_backend/internal/feature/assets/adapters"
	ledgeradapters "portfolio_backend/internal/feature/ledger/adapters"
	portfolioadapters "portfolio_backend/internal/feature/portfolios/adapters"
	priceadapters "portfolio_backend/internal/feature/prices/adapters"
	valuationadapters "portfolio_backend/internal/feature/valuation/adapters"
)

// Migrate creates or updates every table the application owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&assetadapters.AssetModel{},
		&portfolioadapters.PortfolioModel{},
		&ledgeradapters.RecordModel{},
		&priceadapters.PriceModel{},
		&valuationadapters.SnapshotModel{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
