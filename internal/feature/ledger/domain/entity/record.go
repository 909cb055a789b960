// Package entity defines ledger records.
package entity

import "portfolio_backend/internal/shared/caldate"

// LedgerRecord is one dated balance change of an asset inside a portfolio.
// Result is the running balance after Change; Price and Unit cache the price
// point used to value Result on Date.
type LedgerRecord struct {
	PortfolioID uint         `json:"portfolio_id"`
	AssetID     uint         `json:"asset_id"`
	Date        caldate.Date `json:"date"`
	Change      float64      `json:"change"`
	Result      float64      `json:"result"`
	Price       float64      `json:"price"`
	Unit        string       `json:"unit"`
	Memo        string       `json:"memo,omitempty"`
}

// Priced reports whether the record carries a cached price.
func (r LedgerRecord) Priced() bool { return r.Unit != "" }

// BoundaryMode selects records relative to a date.
type BoundaryMode int

const (
	Exact        BoundaryMode = iota // date == d
	AsOfOrBefore                     // date <= d
	OnOrAfter                        // date >= d
)

func (m BoundaryMode) String() string {
	switch m {
	case Exact:
		return "exact"
	case AsOfOrBefore:
		return "as_of_or_before"
	case OnOrAfter:
		return "on_or_after"
	}
	return "unknown"
}

// ParseBoundaryMode maps the query-string form of a mode. Empty means Exact.
func ParseBoundaryMode(s string) (BoundaryMode, bool) {
	switch s {
	case "", "exact":
		return Exact, true
	case "as_of_or_before", "before":
		return AsOfOrBefore, true
	case "on_or_after", "after":
		return OnOrAfter, true
	}
	return Exact, false
}
