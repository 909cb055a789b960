// Package dto defines data transfer objects for the valuation HTTP API.
package dto

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// RunRequest is the body of POST /valuations/run. A missing date means today
// in each portfolio's timezone; a missing portfolio id means all portfolios.
type RunRequest struct {
	PortfolioID uint                `json:"portfolio_id"`
	Date        *openapi_types.Date `json:"date"`
	Force       bool                `json:"force"`
}

type OutcomeItem struct {
	RunID       string             `json:"run_id"`
	PortfolioID uint               `json:"portfolio_id"`
	Target      openapi_types.Date `json:"target"`
	Status      string             `json:"status"`
	Details     []string           `json:"details,omitempty"`
	Checked     int                `json:"checked"`
	Updated     int                `json:"updated"`
	Failed      int                `json:"failed"`
}

type RunResponse struct {
	Outcomes []OutcomeItem `json:"outcomes"`
}

// BackfillRequest is the body of POST /valuations/backfill. The window is
// [start, end).
type BackfillRequest struct {
	PortfolioID uint               `json:"portfolio_id" binding:"required"`
	AssetID     uint               `json:"asset_id" binding:"required"`
	Start       openapi_types.Date `json:"start"`
	End         openapi_types.Date `json:"end"`
}

type BackfillResponse struct {
	Fetched        int `json:"fetched"`
	PricesWritten  int `json:"prices_written"`
	RecordsWritten int `json:"records_written"`
}

type HoldingItem struct {
	AssetID        uint                `json:"asset_id"`
	Symbol         string              `json:"symbol"`
	Quantity       float64             `json:"quantity"`
	PriceDate      *openapi_types.Date `json:"price_date,omitempty"`
	Price          float64             `json:"price"`
	Unit           string              `json:"unit"`
	Value          float64             `json:"value"`
	ConvertedValue float64             `json:"converted_value"`
	Converted      bool                `json:"converted"`
	Priced         bool                `json:"priced"`
	Approximate    bool                `json:"approximate"`
}

type SnapshotResponse struct {
	PortfolioID uint               `json:"portfolio_id"`
	Date        openapi_types.Date `json:"date"`
	Holdings    []HoldingItem      `json:"holdings"`
	Total       float64            `json:"total"`
	TotalUnit   string             `json:"total_unit"`
	TakenAt     *time.Time         `json:"taken_at,omitempty"`
}

// TakeSnapshotRequest is the body of POST /portfolios/:id/snapshots. A
// missing date is rejected by the valuator.
type TakeSnapshotRequest struct {
	Date openapi_types.Date `json:"date"`
}

type SnapshotHistoryResponse struct {
	Snapshots []SnapshotResponse `json:"snapshots"`
}
