// Package entity defines portfolios.
package entity

import (
	"time"

	"portfolio_backend/internal/shared/caldate"
)

// Portfolio is a named set of holdings valued in ReferenceCurrency.
// Timezone decides which calendar day "today" is for the portfolio.
type Portfolio struct {
	ID                uint
	Name              string
	ReferenceCurrency string
	Timezone          string
}

// Location loads Timezone, falling back to UTC when it is empty.
func (p Portfolio) Location() (*time.Location, error) {
	if p.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(p.Timezone)
}

// Today returns the current calendar day in the portfolio's timezone.
func (p Portfolio) Today(now time.Time) (caldate.Date, error) {
	loc, err := p.Location()
	if err != nil {
		return caldate.Date{}, err
	}
	return caldate.FromTime(now, loc), nil
}
