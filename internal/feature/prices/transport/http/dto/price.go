// Package dto defines data transfer objects for the price lookup HTTP API.
package dto

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// PriceResponse is a cached (or freshly fetched and cached) price point.
type PriceResponse struct {
	AssetID     uint               `json:"asset_id"`
	Date        openapi_types.Date `json:"date"`
	Value       float64            `json:"value"`
	Unit        string             `json:"unit"`
	ObservedAt  time.Time          `json:"observed_at"`
	Approximate bool               `json:"approximate"`
}

// QuoteResponse is a provider answer that was not written to the cache.
type QuoteResponse struct {
	Category    string             `json:"category"`
	Symbol      string             `json:"symbol"`
	Date        openapi_types.Date `json:"date"`
	Value       float64            `json:"value"`
	Unit        string             `json:"unit"`
	Timestamp   time.Time          `json:"timestamp"`
	Approximate bool               `json:"approximate"`
}
