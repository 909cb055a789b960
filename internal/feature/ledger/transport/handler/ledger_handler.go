// Package handler はledgerフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	assetdomain "portfolio_backend/internal/feature/assets/domain"
	"portfolio_backend/internal/feature/ledger/domain"
	"portfolio_backend/internal/feature/ledger/domain/entity"
	"portfolio_backend/internal/feature/ledger/transport/http/dto"
	portfoliodomain "portfolio_backend/internal/feature/portfolios/domain"
	"portfolio_backend/internal/shared/caldate"
)

// LedgerUsecase は台帳操作のユースケースインターフェースを定義します。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type LedgerUsecase interface {
	RecordChange(ctx context.Context, portfolioID, assetID uint, date caldate.Date, change float64, memo string) (entity.LedgerRecord, error)
	List(ctx context.Context, portfolioID uint, date caldate.Date, mode entity.BoundaryMode) ([]entity.LedgerRecord, error)
}

// LedgerHandler は台帳のHTTPリクエストを処理します。
type LedgerHandler struct {
	uc LedgerUsecase
}

// NewLedgerHandler は新しい LedgerHandler を作成します。
func NewLedgerHandler(uc LedgerUsecase) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

// List はポートフォリオの台帳レコードを返します。
//
// エンドポイント例:
// GET /portfolios/1/records?date=2024-01-31&mode=as_of_or_before
func (h *LedgerHandler) List(c *gin.Context) {
	pid, ok := portfolioID(c)
	if !ok {
		return
	}
	date, err := caldate.Parse(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	mode, ok := entity.ParseBoundaryMode(c.Query("mode"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be exact, as_of_or_before or on_or_after"})
		return
	}

	recs, err := h.uc.List(c.Request.Context(), pid, date, mode)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]dto.RecordItem, 0, len(recs))
	for _, r := range recs {
		out = append(out, toItem(r))
	}
	c.JSON(http.StatusOK, out)
}

// RecordChange は資産の増減を台帳に記録します。
// 残高と価格は次回のバリュエーションで再計算されます。
func (h *LedgerHandler) RecordChange(c *gin.Context) {
	pid, ok := portfolioID(c)
	if !ok {
		return
	}
	var req dto.RecordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	rec, err := h.uc.RecordChange(c.Request.Context(), pid, req.AssetID, caldate.FromAPI(req.Date), req.Change, req.Memo)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toItem(rec))
}

func portfolioID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid portfolio id"})
		return 0, false
	}
	return uint(id), true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRecord), errors.Is(err, domain.ErrZeroChange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, portfoliodomain.ErrPortfolioNotFound), errors.Is(err, assetdomain.ErrAssetNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func toItem(r entity.LedgerRecord) dto.RecordItem {
	return dto.RecordItem{
		PortfolioID: r.PortfolioID,
		AssetID:     r.AssetID,
		Date:        r.Date.API(),
		Change:      r.Change,
		Result:      r.Result,
		Price:       r.Price,
		Unit:        r.Unit,
		Memo:        r.Memo,
	}
}
