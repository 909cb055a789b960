package di

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	assetadapters "portfolio_backend/internal/feature/assets/adapters"
	assethandler "portfolio_backend/internal/feature/assets/transport/handler"
	assetusecase "portfolio_backend/internal/feature/assets/usecase"
	ledgeradapters "portfolio_backend/internal/feature/ledger/adapters"
	ledgerhandler "portfolio_backend/internal/feature/ledger/transport/handler"
	ledgerusecase "portfolio_backend/internal/feature/ledger/usecase"
	portfolioadapters "portfolio_backend/internal/feature/portfolios/adapters"
	portfoliohandler "portfolio_backend/internal/feature/portfolios/transport/handler"
	portfoliousecase "portfolio_backend/internal/feature/portfolios/usecase"
	pricehandler "portfolio_backend/internal/feature/prices/transport/handler"
	priceusecase "portfolio_backend/internal/feature/prices/usecase"
	valuationadapters "portfolio_backend/internal/feature/valuation/adapters"
	valuationhandler "portfolio_backend/internal/feature/valuation/transport/handler"
	valuationusecase "portfolio_backend/internal/feature/valuation/usecase"
	"portfolio_backend/internal/platform/config"
	healthhandler "portfolio_backend/internal/platform/http/handler"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Assets     *assethandler.AssetHandler
	Portfolios *portfoliohandler.PortfolioHandler
	Ledger     *ledgerhandler.LedgerHandler
	Valuation  *valuationhandler.ValuationHandler
	Prices     *pricehandler.PriceHandler
	Readiness  *healthhandler.Readiness
}

// Container is the wired application graph shared by the server and the CLI.
type Container struct {
	Scheduler *valuationusecase.Scheduler
	Valuator  *valuationusecase.Valuator
	DailyJob  *valuationusecase.DailyJob
	Handlers  Handlers
}

// Build wires repositories, use cases and handlers. rdb may be nil.
func Build(cfg *config.Config, db *gorm.DB, rdb *redis.Client, log zerolog.Logger) (*Container, error) {
	loc, err := cfg.Valuation.Location()
	if err != nil {
		return nil, err
	}
	gw, err := NewGateway(cfg, log)
	if err != nil {
		return nil, err
	}

	assetRepo := assetadapters.NewAssetRepository(db)
	portfolioRepo := portfolioadapters.NewPortfolioRepository(db)
	recordRepo := ledgeradapters.NewRecordRepository(db)
	priceRepo := NewPriceRepository(rdb, db, cfg.Valuation.CacheRefreshHour, loc)

	assets := assetusecase.NewAssetUsecase(assetRepo, recordRepo)
	portfolios := portfoliousecase.NewPortfolioUsecase(portfolioRepo)
	ledger := ledgerusecase.NewLedgerUsecase(recordRepo, portfolios, assets)
	prices := priceusecase.NewPriceCache(priceRepo, gw, assets)

	scheduler := valuationusecase.NewScheduler(portfolioRepo, assetRepo, recordRepo, prices, gw, log)
	valuator := valuationusecase.NewValuator(portfolioRepo, assetRepo, recordRepo, prices, log)
	snapshots := valuationusecase.NewSnapshotBook(valuator, valuationadapters.NewSnapshotRepository(db), portfolioRepo)

	readiness := healthhandler.NewReadiness(2 * time.Second).Add("db", healthhandler.PingFunc(func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}))
	if rdb != nil {
		readiness.Add("redis", healthhandler.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}))
	}

	return &Container{
		Scheduler: scheduler,
		Valuator:  valuator,
		DailyJob:  valuationusecase.NewDailyJob(scheduler, snapshots),
		Handlers: Handlers{
			Assets:     assethandler.NewAssetHandler(assets),
			Portfolios: portfoliohandler.NewPortfolioHandler(portfolios),
			Ledger:     ledgerhandler.NewLedgerHandler(ledger),
			Valuation:  valuationhandler.NewValuationHandler(scheduler, valuator, snapshots),
			Prices:     pricehandler.NewPriceHandler(prices, gw),
			Readiness:  readiness,
		},
	}, nil
}
