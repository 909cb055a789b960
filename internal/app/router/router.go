package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"portfolio_backend/internal/app/di"
	"portfolio_backend/internal/platform/http/handler"
)

func NewRouter(h di.Handlers, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(log))

	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.GET("/readyz", h.Readiness.Handle)

	r.GET("/assets", h.Assets.List)
	r.POST("/assets", h.Assets.Create)
	r.PUT("/assets/:id", h.Assets.Update)
	r.GET("/assets/:id/prices/:date", h.Prices.Price)

	// キャッシュを通さずプロバイダーへ直接問い合わせる
	r.GET("/quotes/:category/:symbol/:date", h.Prices.Quote)

	portfolios := r.Group("/portfolios")
	{
		portfolios.GET("", h.Portfolios.List)
		portfolios.POST("", h.Portfolios.Upsert)
		portfolios.GET("/:id/records", h.Ledger.List)
		portfolios.POST("/:id/records", h.Ledger.RecordChange)
		portfolios.GET("/:id/valuation", h.Valuation.Snapshot)
		portfolios.GET("/:id/snapshots", h.Valuation.History)
		portfolios.POST("/:id/snapshots", h.Valuation.TakeSnapshot)
	}

	// 再計算は冪等なので何度呼び出してもよい
	valuations := r.Group("/valuations")
	{
		valuations.POST("/run", h.Valuation.Run)
		valuations.POST("/backfill", h.Valuation.Backfill)
	}

	return r
}
