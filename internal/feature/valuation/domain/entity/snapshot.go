package entity

import (
	"time"

	"portfolio_backend/internal/shared/caldate"
)

// MixedUnit is reported as the total's unit when some holding could not be
// converted into the reference currency.
const MixedUnit = "Mixed"

// Holding is one asset's position in a snapshot. Value is Quantity × Price
// in Unit; ConvertedValue is Value in the portfolio's reference currency and
// only meaningful when Converted is set. Approximate marks a price taken from
// an earlier day than the snapshot date.
type Holding struct {
	AssetID        uint         `json:"asset_id"`
	Symbol         string       `json:"symbol"`
	Quantity       float64      `json:"quantity"`
	PriceDate      caldate.Date `json:"price_date"`
	Price          float64      `json:"price"`
	Unit           string       `json:"unit"`
	Value          float64      `json:"value"`
	ConvertedValue float64      `json:"converted_value"`
	Converted      bool         `json:"converted"`
	Priced         bool         `json:"priced"`
	Approximate    bool         `json:"approximate"`
}

// Snapshot is a portfolio's valuation as of one day. TakenAt is set only on
// snapshots that were persisted.
type Snapshot struct {
	PortfolioID uint         `json:"portfolio_id"`
	Date        caldate.Date `json:"date"`
	Holdings    []Holding    `json:"holdings"`
	Total       float64      `json:"total"`
	TotalUnit   string       `json:"total_unit"`
	TakenAt     time.Time    `json:"taken_at,omitempty"`
}
