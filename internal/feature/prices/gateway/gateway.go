// Package gateway routes price requests to the provider that serves an
// asset's category.
package gateway

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	assetentity "portfolio_backend/internal/feature/assets/domain/entity"
	"portfolio_backend/internal/feature/prices/domain/entity"
	"portfolio_backend/internal/platform/externalapi"
	"portfolio_backend/internal/shared/caldate"
)

// Source is implemented by each provider client.
// Following Go convention: interfaces are defined by the consumer (gateway), not the provider (externalapi).
type Source interface {
	// Quote returns the price for one calendar day.
	Quote(ctx context.Context, symbol string, day caldate.Date) (entity.Quote, error)
	// Series returns daily samples in [start, end].
	Series(ctx context.Context, symbol string, start, end caldate.Date) ([]entity.Sample, error)
}

// Gateway dispatches on a closed Category -> Source table. It never caches.
// Rate limits are enforced per HTTP request by each source's client.
type Gateway struct {
	sources map[assetentity.Category]Source
	names   map[assetentity.Category]string
	log     zerolog.Logger
}

// Route binds one category to a provider.
type Route struct {
	Category assetentity.Category
	Name     string
	Source   Source
}

// New builds a Gateway.
func New(routes []Route, log zerolog.Logger) *Gateway {
	g := &Gateway{
		sources: make(map[assetentity.Category]Source, len(routes)),
		names:   make(map[assetentity.Category]string, len(routes)),
		log:     log.With().Str("component", "price_gateway").Logger(),
	}
	for _, r := range routes {
		g.sources[r.Category] = r.Source
		g.names[r.Category] = r.Name
	}
	return g
}

// Fetch returns the price of symbol on date.
func (g *Gateway) Fetch(ctx context.Context, category assetentity.Category, symbol string, date caldate.Date) (entity.Quote, error) {
	src, name, err := g.route(category, symbol)
	if err != nil {
		return entity.Quote{}, err
	}
	q, err := src.Quote(ctx, symbol, date)
	if err != nil {
		g.log.Debug().Err(err).Str("provider", name).Str("symbol", symbol).Str("date", date.String()).Msg("quote failed")
		return entity.Quote{}, externalapi.FromTransport(name, symbol, err)
	}
	if err := normalize(&q.Value, &q.Unit); err != nil {
		return entity.Quote{}, entity.NewGatewayError(entity.KindTransient, name, symbol, err)
	}
	if q.Timestamp.IsZero() {
		q.Timestamp = time.Now()
	}
	return q, nil
}

// FetchRange returns daily samples for the half-open range [start, end),
// sorted by date.
func (g *Gateway) FetchRange(ctx context.Context, category assetentity.Category, symbol string, start, end caldate.Date) ([]entity.Sample, error) {
	if !start.Before(end) {
		return nil, nil
	}
	src, name, err := g.route(category, symbol)
	if err != nil {
		return nil, err
	}
	samples, err := src.Series(ctx, symbol, start, end.AddDays(-1))
	if err != nil {
		g.log.Debug().Err(err).Str("provider", name).Str("symbol", symbol).Msg("series failed")
		return nil, externalapi.FromTransport(name, symbol, err)
	}

	out := make([]entity.Sample, 0, len(samples))
	for _, s := range samples {
		if s.Date.Before(start) || !s.Date.Before(end) {
			continue
		}
		if err := normalize(&s.Value, &s.Unit); err != nil {
			return nil, entity.NewGatewayError(entity.KindTransient, name, symbol, fmt.Errorf("%s: %w", s.Date, err))
		}
		out = append(out, s)
	}
	sortSamples(out)
	return out, nil
}

func (g *Gateway) route(category assetentity.Category, symbol string) (Source, string, error) {
	src, ok := g.sources[category]
	if !ok {
		return nil, "", entity.NewGatewayError(entity.KindInvalidCategory, "gateway", symbol,
			fmt.Errorf("category %q", category))
	}
	return src, g.names[category], nil
}

func normalize(value *float64, unit *string) error {
	if math.IsNaN(*value) || math.IsInf(*value, 0) || *value <= 0 {
		return fmt.Errorf("invalid price %v", *value)
	}
	u, err := externalapi.NormalizeUnit(*unit)
	if err != nil {
		return err
	}
	*unit = u
	return nil
}

func sortSamples(s []entity.Sample) {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Date.Before(s[j].Date) })
}
