package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"portfolio_backend/internal/feature/assets/domain"
	"portfolio_backend/internal/feature/assets/domain/entity"
	"portfolio_backend/internal/feature/assets/transport/http/dto"
)

// AssetUsecase は資産に関するユースケースのインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type AssetUsecase interface {
	List(ctx context.Context) ([]entity.Asset, error)
	Create(ctx context.Context, category, symbol, displayName, unit string) (entity.Asset, error)
	Update(ctx context.Context, id uint, category, symbol, displayName, unit string) (entity.Asset, error)
}

// AssetHandler は資産に関するHTTPリクエストを処理します。
type AssetHandler struct {
	uc AssetUsecase
}

// NewAssetHandler は新しい AssetHandler を作成します。
func NewAssetHandler(uc AssetUsecase) *AssetHandler {
	return &AssetHandler{uc: uc}
}

// List は登録済み資産の一覧を返します。
func (h *AssetHandler) List(c *gin.Context) {
	assets, err := h.uc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]dto.AssetItem, 0, len(assets))
	for _, a := range assets {
		out = append(out, toItem(a))
	}
	c.JSON(http.StatusOK, out)
}

// Create は資産を登録します。
//
// エンドポイント例:
// POST /assets {"category":"NASDAQ","symbol":"AAPL"}
func (h *AssetHandler) Create(c *gin.Context) {
	var req dto.AssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	a, err := h.uc.Create(c.Request.Context(), req.Category, req.Symbol, req.DisplayName, req.Unit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toItem(a))
}

// Update は資産を更新します。台帳から参照されている資産は表示名のみ変更できます。
func (h *AssetHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid asset id"})
		return
	}
	var req dto.AssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	a, err := h.uc.Update(c.Request.Context(), uint(id), req.Category, req.Symbol, req.DisplayName, req.Unit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toItem(a))
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAsset):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrAssetNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrDuplicateAsset), errors.Is(err, domain.ErrAssetReferenced):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func toItem(a entity.Asset) dto.AssetItem {
	return dto.AssetItem{
		ID:          a.ID,
		Category:    string(a.Category),
		Symbol:      a.Symbol,
		DisplayName: a.DisplayName,
		Unit:        a.Unit,
	}
}
