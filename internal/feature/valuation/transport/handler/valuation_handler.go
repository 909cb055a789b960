// Package handler はvaluationフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	assetdomain "portfolio_backend/internal/feature/assets/domain"
	portfoliodomain "portfolio_backend/internal/feature/portfolios/domain"
	priceentity "portfolio_backend/internal/feature/prices/domain/entity"
	"portfolio_backend/internal/feature/valuation/domain"
	"portfolio_backend/internal/feature/valuation/domain/entity"
	"portfolio_backend/internal/feature/valuation/transport/http/dto"
	"portfolio_backend/internal/shared/caldate"
)

// ValuationScheduler は再計算の実行を抽象化します。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type ValuationScheduler interface {
	RunAll(ctx context.Context, target caldate.Date, force bool) []entity.Outcome
	Run(ctx context.Context, portfolioID uint, target caldate.Date, force bool) (entity.Outcome, error)
	BackfillRange(ctx context.Context, portfolioID, assetID uint, start, end caldate.Date) (entity.BackfillResult, error)
}

// Valuator はスナップショットの算出を抽象化します。
type Valuator interface {
	Valuate(ctx context.Context, portfolioID uint, date caldate.Date) (entity.Snapshot, error)
}

// SnapshotBook は保存済みスナップショットの記録と参照を抽象化します。
type SnapshotBook interface {
	Take(ctx context.Context, portfolioID uint, date caldate.Date) (entity.Snapshot, error)
	History(ctx context.Context, portfolioID uint, start, end caldate.Date) ([]entity.Snapshot, error)
}

// ValuationHandler はバリュエーション関連のHTTPリクエストを処理します。
type ValuationHandler struct {
	scheduler ValuationScheduler
	valuator  Valuator
	book      SnapshotBook
}

// NewValuationHandler は新しい ValuationHandler を作成します。
func NewValuationHandler(s ValuationScheduler, v Valuator, b SnapshotBook) *ValuationHandler {
	return &ValuationHandler{scheduler: s, valuator: v, book: b}
}

// Run は全ポートフォリオ（または指定された1件）の再計算を実行します。
// 個々のポートフォリオの失敗は outcomes の status で返し、HTTPステータスは200のままです。
//
// エンドポイント例:
// POST /valuations/run {"date":"2024-01-31","force":true}
func (h *ValuationHandler) Run(c *gin.Context) {
	var req dto.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	var target caldate.Date
	if req.Date != nil {
		target = caldate.FromAPI(*req.Date)
	}

	var outs []entity.Outcome
	if req.PortfolioID != 0 {
		o, err := h.scheduler.Run(c.Request.Context(), req.PortfolioID, target, req.Force)
		if err != nil {
			writeError(c, err)
			return
		}
		outs = []entity.Outcome{o}
	} else {
		outs = h.scheduler.RunAll(c.Request.Context(), target, req.Force)
	}

	resp := dto.RunResponse{Outcomes: make([]dto.OutcomeItem, 0, len(outs))}
	for _, o := range outs {
		resp.Outcomes = append(resp.Outcomes, dto.OutcomeItem{
			RunID:       o.RunID,
			PortfolioID: o.PortfolioID,
			Target:      o.Target.API(),
			Status:      string(o.Status),
			Details:     o.Details,
			Checked:     o.Checked,
			Updated:     o.Updated,
			Failed:      o.Failed,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// Backfill は1資産の期間 [start, end) の価格を一括取得し、差分のみ書き込みます。
func (h *ValuationHandler) Backfill(c *gin.Context) {
	var req dto.BackfillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	res, err := h.scheduler.BackfillRange(c.Request.Context(), req.PortfolioID, req.AssetID, caldate.FromAPI(req.Start), caldate.FromAPI(req.End))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BackfillResponse{
		Fetched:        res.Fetched,
		PricesWritten:  res.PricesWritten,
		RecordsWritten: res.RecordsWritten,
	})
}

// Snapshot は指定日時点のポートフォリオ評価額を返します。
//
// エンドポイント例:
// GET /portfolios/1/valuation?date=2024-01-31
func (h *ValuationHandler) Snapshot(c *gin.Context) {
	id, ok := portfolioID(c)
	if !ok {
		return
	}
	date, err := caldate.Parse(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	snap, err := h.valuator.Valuate(c.Request.Context(), id, date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSnapshotResponse(snap))
}

// TakeSnapshot は指定日の評価額を算出して保存します。同日の既存スナップショットは置き換えます。
//
// エンドポイント例:
// POST /portfolios/1/snapshots {"date":"2024-01-31"}
func (h *ValuationHandler) TakeSnapshot(c *gin.Context) {
	id, ok := portfolioID(c)
	if !ok {
		return
	}
	var req dto.TakeSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	snap, err := h.book.Take(c.Request.Context(), id, caldate.FromAPI(req.Date))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSnapshotResponse(snap))
}

// History は保存済みスナップショットを日付順に返します。start/end は省略可能で、期間は [start, end) です。
//
// エンドポイント例:
// GET /portfolios/1/snapshots?start=2024-01-01&end=2024-02-01
func (h *ValuationHandler) History(c *gin.Context) {
	id, ok := portfolioID(c)
	if !ok {
		return
	}
	var bounds [2]caldate.Date
	for i, key := range []string{"start", "end"} {
		v := c.Query(key)
		if v == "" {
			continue
		}
		d, err := caldate.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": key + " must be YYYY-MM-DD"})
			return
		}
		bounds[i] = d
	}

	snaps, err := h.book.History(c.Request.Context(), id, bounds[0], bounds[1])
	if err != nil {
		writeError(c, err)
		return
	}
	resp := dto.SnapshotHistoryResponse{Snapshots: make([]dto.SnapshotResponse, 0, len(snaps))}
	for _, s := range snaps {
		resp.Snapshots = append(resp.Snapshots, toSnapshotResponse(s))
	}
	c.JSON(http.StatusOK, resp)
}

func portfolioID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid portfolio id"})
		return 0, false
	}
	return uint(id), true
}

func toSnapshotResponse(snap entity.Snapshot) dto.SnapshotResponse {
	resp := dto.SnapshotResponse{
		PortfolioID: snap.PortfolioID,
		Date:        snap.Date.API(),
		Holdings:    make([]dto.HoldingItem, 0, len(snap.Holdings)),
		Total:       snap.Total,
		TotalUnit:   snap.TotalUnit,
	}
	if !snap.TakenAt.IsZero() {
		t := snap.TakenAt
		resp.TakenAt = &t
	}
	for _, x := range snap.Holdings {
		item := dto.HoldingItem{
			AssetID:        x.AssetID,
			Symbol:         x.Symbol,
			Quantity:       x.Quantity,
			Price:          x.Price,
			Unit:           x.Unit,
			Value:          x.Value,
			ConvertedValue: x.ConvertedValue,
			Converted:      x.Converted,
			Priced:         x.Priced,
			Approximate:    x.Approximate,
		}
		if !x.PriceDate.IsZero() {
			pd := x.PriceDate.API()
			item.PriceDate = &pd
		}
		resp.Holdings = append(resp.Holdings, item)
	}
	return resp
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRange), errors.Is(err, domain.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, portfoliodomain.ErrPortfolioNotFound), errors.Is(err, assetdomain.ErrAssetNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case priceentity.KindOf(err) != "":
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
