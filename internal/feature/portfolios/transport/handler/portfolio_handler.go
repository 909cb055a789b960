package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio_backend/internal/feature/portfolios/domain"
	"portfolio_backend/internal/feature/portfolios/domain/entity"
	"portfolio_backend/internal/feature/portfolios/transport/http/dto"
)

// PortfolioUsecase はポートフォリオに関するユースケースのインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type PortfolioUsecase interface {
	List(ctx context.Context) ([]entity.Portfolio, error)
	Upsert(ctx context.Context, name, currency, timezone string) (entity.Portfolio, error)
}

// PortfolioHandler はポートフォリオに関するHTTPリクエストを処理します。
type PortfolioHandler struct {
	uc PortfolioUsecase
}

// NewPortfolioHandler は新しい PortfolioHandler を作成します。
func NewPortfolioHandler(uc PortfolioUsecase) *PortfolioHandler {
	return &PortfolioHandler{uc: uc}
}

// List は登録済みポートフォリオの一覧を返します。
func (h *PortfolioHandler) List(c *gin.Context) {
	ps, err := h.uc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]dto.PortfolioItem, 0, len(ps))
	for _, p := range ps {
		out = append(out, toItem(p))
	}
	c.JSON(http.StatusOK, out)
}

// Upsert は名前をキーにポートフォリオを登録または更新します。
// 入力不備は400、それ以外のエラーは500を返します。
func (h *PortfolioHandler) Upsert(c *gin.Context) {
	var req dto.UpsertPortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	p, err := h.uc.Upsert(c.Request.Context(), req.Name, req.Currency, req.Timezone)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPortfolio) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toItem(p))
}

func toItem(p entity.Portfolio) dto.PortfolioItem {
	return dto.PortfolioItem{ID: p.ID, Name: p.Name, Currency: p.ReferenceCurrency, Timezone: p.Timezone}
}
