// Package dto defines data transfer objects for the ledger HTTP API.
package dto

import openapi_types "github.com/oapi-codegen/runtime/types"

// RecordItem is one ledger record in API responses.
type RecordItem struct {
	PortfolioID uint               `json:"portfolio_id"`
	AssetID     uint               `json:"asset_id"`
	Date        openapi_types.Date `json:"date"`
	Change      float64            `json:"change"`
	Result      float64            `json:"result"`
	Price       float64            `json:"price"`
	Unit        string             `json:"unit"`
	Memo        string             `json:"memo,omitempty"`
}

// RecordChangeRequest is the body of POST /portfolios/:id/records.
type RecordChangeRequest struct {
	AssetID uint               `json:"asset_id" binding:"required"`
	Date    openapi_types.Date `json:"date"`
	Change  float64            `json:"change"`
	Memo    string             `json:"memo"`
}
