package di

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	assetentity "portfolio_backend/internal/feature/assets/domain/entity"
	priceentity "portfolio_backend/internal/feature/prices/domain/entity"
	"portfolio_backend/internal/platform/cache"
	"portfolio_backend/internal/platform/config"
	"portfolio_backend/internal/shared/caldate"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Valuation: config.ValuationConfig{ReferenceTimezone: "Asia/Seoul", Cron: "0 1 * * *", CacheRefreshHour: 8},
		Providers: config.ProvidersConfig{Timeout: time.Second, RateLimitPerMinute: 8},
	}
}

func TestMigrate_CreatesTables(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)

	require.NoError(t, Migrate(db))
	for _, table := range []string{"assets", "portfolios", "ledger_records", "price_points", "portfolio_snapshots"} {
		assert.True(t, db.Migrator().HasTable(table), "table %s", table)
	}
	// 2回目も成功する
	assert.NoError(t, Migrate(db))
}

func TestBuild_WithoutRedis(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	require.NoError(t, Migrate(db))

	c, err := Build(testConfig(), db, nil, zerolog.Nop())
	require.NoError(t, err)

	assert.NotNil(t, c.Scheduler)
	assert.NotNil(t, c.Valuator)
	assert.Equal(t, "daily_valuation", c.DailyJob.Name())
	assert.NotNil(t, c.Handlers.Assets)
	assert.NotNil(t, c.Handlers.Portfolios)
	assert.NotNil(t, c.Handlers.Ledger)
	assert.NotNil(t, c.Handlers.Valuation)
	assert.NotNil(t, c.Handlers.Prices)
	assert.NotNil(t, c.Handlers.Readiness)

	// 空のDBでは全件実行しても何も起きない
	assert.Empty(t, c.Scheduler.RunAll(context.Background(), caldate.Date{}, false))
	assert.NoError(t, c.DailyJob.Run(context.Background()))
}

func TestBuild_BadTimezone(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.Valuation.ReferenceTimezone = "Nowhere/City"

	_, err := Build(cfg, setupTestDB(t), nil, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewPriceRepository_SelectsImplementation(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)

	direct := NewPriceRepository(nil, db, 8, time.UTC)
	_, isCache := direct.(*cache.CachingPriceRepository)
	assert.False(t, isCache)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cached := NewPriceRepository(rdb, db, 8, time.UTC)
	_, isCache = cached.(*cache.CachingPriceRepository)
	assert.True(t, isCache)
}

func TestNewGateway_Routes(t *testing.T) {
	t.Parallel()

	gw, err := NewGateway(testConfig(), zerolog.Nop())
	require.NoError(t, err)

	_, err = gw.Fetch(context.Background(), assetentity.Category("FOREX"), "EURUSD", caldate.MustParse("2024-01-02"))
	require.Error(t, err)
	assert.Equal(t, priceentity.KindInvalidCategory, priceentity.KindOf(err))
}
