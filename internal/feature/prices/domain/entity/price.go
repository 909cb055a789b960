// Package entity defines price values exchanged between the cache, the
// gateway and provider adapters.
package entity

import (
	"sort"
	"time"

	"portfolio_backend/internal/shared/caldate"
)

// PricePoint is the memoized price of one asset on one calendar day.
// Value is per unit of the asset, expressed in Unit.
type PricePoint struct {
	AssetID     uint         `json:"asset_id"`
	Date        caldate.Date `json:"date"`
	Value       float64      `json:"value"`
	Unit        string       `json:"unit"`
	ObservedAt  time.Time    `json:"observed_at"`
	Approximate bool         `json:"approximate"`
}

// Quote is a single provider answer for (symbol, day).
type Quote struct {
	Value       float64
	Unit        string
	Timestamp   time.Time
	Approximate bool // no sample on or after the requested day; latest earlier sample used
}

// Sample is one daily observation returned by a ranged provider request.
type Sample struct {
	Date      caldate.Date
	Value     float64
	Unit      string
	Timestamp time.Time
}

// Snap picks the quote for target from samples: the earliest sample dated on
// or after target, otherwise the latest sample before it marked Approximate.
// ok is false when samples is empty.
func Snap(samples []Sample, target caldate.Date) (q Quote, ok bool) {
	if len(samples) == 0 {
		return Quote{}, false
	}
	sorted := make([]Sample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	for _, s := range sorted {
		if !s.Date.Before(target) {
			return s.quote(false), true
		}
	}
	return sorted[len(sorted)-1].quote(true), true
}

func (s Sample) quote(approx bool) Quote {
	return Quote{Value: s.Value, Unit: s.Unit, Timestamp: s.Timestamp, Approximate: approx}
}
