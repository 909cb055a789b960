// Package entity defines the results reported by valuation runs.
package entity

import "portfolio_backend/internal/shared/caldate"

// Status summarizes one portfolio's reconciliation.
type Status string

const (
	StatusOK      Status = "ok"      // every stale record was refreshed
	StatusPartial Status = "partial" // some price lookups failed; the rest were written
	StatusFailed  Status = "failed"  // the store failed or the run panicked; processing stopped
)

// Outcome is the per-portfolio result of a valuation run.
type Outcome struct {
	RunID       string       `json:"run_id,omitempty"`
	PortfolioID uint         `json:"portfolio_id"`
	Target      caldate.Date `json:"target"`
	Status      Status       `json:"status"`
	Details     []string     `json:"details,omitempty"`
	Checked     int          `json:"checked"`
	Updated     int          `json:"updated"`
	Failed      int          `json:"failed"`
}

// BackfillResult counts what one backfill call did.
type BackfillResult struct {
	Fetched        int `json:"fetched"`
	PricesWritten  int `json:"prices_written"`
	RecordsWritten int `json:"records_written"`
}

// Writes is the total number of store writes.
func (r BackfillResult) Writes() int { return r.PricesWritten + r.RecordsWritten }
