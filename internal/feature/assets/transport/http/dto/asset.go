// Package dto defines data transfer objects for the assets HTTP API.
package dto

// AssetItem represents an asset in the API response.
type AssetItem struct {
	ID          uint   `json:"id"`
	Category    string `json:"category"`
	Symbol      string `json:"symbol"`
	DisplayName string `json:"display_name"`
	Unit        string `json:"unit"`
}

// AssetRequest is the body of asset create and update calls.
// Unit may be omitted and is then derived from category and symbol.
type AssetRequest struct {
	Category    string `json:"category" binding:"required"`
	Symbol      string `json:"symbol" binding:"required"`
	DisplayName string `json:"display_name"`
	Unit        string `json:"unit"`
}
