package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	priceadapters "portfolio_backend/internal/feature/prices/adapters"
	"portfolio_backend/internal/feature/prices/usecase"
	"portfolio_backend/internal/platform/cache"
)

// NewPriceRepository creates a PriceRepository implementation.
// If Redis is available, reads go through a Redis cache that expires at the
// daily refresh hour. Otherwise the database is used directly.
func NewPriceRepository(rdb *redis.Client, db *gorm.DB, refreshHour int, loc *time.Location) usecase.PriceRepository {
	store := priceadapters.NewPriceRepository(db)
	if rdb != nil {
		return cache.NewCachingPriceRepository(rdb, cache.DailyRefreshTTL(refreshHour, loc), store, "prices")
	}
	return store
}
