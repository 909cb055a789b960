// Package handler はpricesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	assetentity "portfolio_backend/internal/feature/assets/domain/entity"
	"portfolio_backend/internal/feature/prices/domain/entity"
	"portfolio_backend/internal/feature/prices/transport/http/dto"
	"portfolio_backend/internal/shared/caldate"
)

// PriceLookup はキャッシュ経由の価格取得を抽象化します。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type PriceLookup interface {
	GetOrFetch(ctx context.Context, assetID uint, date caldate.Date, force bool) (entity.PricePoint, error)
}

// QuoteFetcher はキャッシュを通さないプロバイダー問い合わせを抽象化します。
type QuoteFetcher interface {
	Fetch(ctx context.Context, category assetentity.Category, symbol string, date caldate.Date) (entity.Quote, error)
}

// PriceHandler は価格照会のHTTPリクエストを処理します。
type PriceHandler struct {
	prices PriceLookup
	quotes QuoteFetcher
}

// NewPriceHandler は新しい PriceHandler を作成します。
func NewPriceHandler(prices PriceLookup, quotes QuoteFetcher) *PriceHandler {
	return &PriceHandler{prices: prices, quotes: quotes}
}

// Price は登録済み資産の指定日の価格を返します。キャッシュに無ければプロバイダーから取得して保存します。
//
// エンドポイント例:
// GET /assets/1/prices/2024-01-31?force=true
func (h *PriceHandler) Price(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid asset id"})
		return
	}
	date, ok := dateParam(c)
	if !ok {
		return
	}
	force := false
	if v := c.Query("force"); v != "" {
		if force, err = strconv.ParseBool(v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "force must be a boolean"})
			return
		}
	}

	p, err := h.prices.GetOrFetch(c.Request.Context(), uint(id), date, force)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PriceResponse{
		AssetID:     p.AssetID,
		Date:        p.Date.API(),
		Value:       p.Value,
		Unit:        p.Unit,
		ObservedAt:  p.ObservedAt,
		Approximate: p.Approximate,
	})
}

// Quote は未登録の銘柄も含めてプロバイダーに直接問い合わせます。結果はキャッシュしません。
//
// エンドポイント例:
// GET /quotes/NASDAQ/AAPL/2024-01-31
func (h *PriceHandler) Quote(c *gin.Context) {
	category, err := assetentity.ParseCategory(c.Param("category"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	symbol := c.Param("symbol")
	date, ok := dateParam(c)
	if !ok {
		return
	}

	q, err := h.quotes.Fetch(c.Request.Context(), category, symbol, date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.QuoteResponse{
		Category:    string(category),
		Symbol:      symbol,
		Date:        date.API(),
		Value:       q.Value,
		Unit:        q.Unit,
		Timestamp:   q.Timestamp,
		Approximate: q.Approximate,
	})
}

func dateParam(c *gin.Context) (caldate.Date, bool) {
	d, err := caldate.Parse(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return caldate.Date{}, false
	}
	return d, true
}

// writeError はゲートウェイの失敗種別をHTTPステータスに対応付けます。
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch entity.KindOf(err) {
	case entity.KindNotFound:
		status = http.StatusNotFound
	case entity.KindInvalidCategory:
		status = http.StatusBadRequest
	case entity.KindRateLimited:
		status = http.StatusTooManyRequests
	case entity.KindTransient:
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
