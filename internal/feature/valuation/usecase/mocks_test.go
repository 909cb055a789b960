package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	assetdomain "portfolio_backend/internal/feature/assets/domain"
	assetentity "portfolio_backend/internal/feature/assets/domain/entity"
	ledgerentity "portfolio_backend/internal/feature/ledger/domain/entity"
	portfoliodomain "portfolio_backend/internal/feature/portfolios/domain"
	portfolioentity "portfolio_backend/internal/feature/portfolios/domain/entity"
	priceentity "portfolio_backend/internal/feature/prices/domain/entity"
	priceusecase "portfolio_backend/internal/feature/prices/usecase"
	"portfolio_backend/internal/platform/db"
	"portfolio_backend/internal/shared/caldate"
)

var nopLog = zerolog.Nop()

func d(s string) caldate.Date { return caldate.MustParse(s) }

// memRecords is an in-memory RecordStore keeping upserts in order.
type memRecords struct {
	recs        map[string]ledgerentity.LedgerRecord
	UpsertErr   error
	FailOn      uint
	PanicOn     uint
	Upserts     []ledgerentity.LedgerRecord
	ListedDates []caldate.Date
}

func newMemRecords(recs ...ledgerentity.LedgerRecord) *memRecords {
	m := &memRecords{recs: map[string]ledgerentity.LedgerRecord{}}
	for _, r := range recs {
		m.recs[recKey(r.PortfolioID, r.AssetID, r.Date)] = r
	}
	return m
}

func recKey(pid, aid uint, day caldate.Date) string {
	return fmt.Sprintf("%d#%d#%s", pid, aid, day)
}

func (m *memRecords) sorted(keep func(ledgerentity.LedgerRecord) bool) []ledgerentity.LedgerRecord {
	var out []ledgerentity.LedgerRecord
	for _, r := range m.recs {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].AssetID < out[j].AssetID
	})
	return out
}

func (m *memRecords) ListByPortfolio(ctx context.Context, portfolioID uint, date caldate.Date, mode ledgerentity.BoundaryMode) ([]ledgerentity.LedgerRecord, error) {
	if m.PanicOn != 0 && m.PanicOn == portfolioID {
		panic("corrupt ledger")
	}
	if m.FailOn != 0 && m.FailOn == portfolioID {
		return nil, db.ErrStoreUnavailable
	}
	m.ListedDates = append(m.ListedDates, date)
	return m.sorted(func(r ledgerentity.LedgerRecord) bool {
		return r.PortfolioID == portfolioID && !r.Date.After(date)
	}), nil
}

func (m *memRecords) ListRange(ctx context.Context, portfolioID, assetID uint, start, end caldate.Date) ([]ledgerentity.LedgerRecord, error) {
	return m.sorted(func(r ledgerentity.LedgerRecord) bool {
		return r.PortfolioID == portfolioID && r.AssetID == assetID && !r.Date.Before(start) && r.Date.Before(end)
	}), nil
}

func (m *memRecords) Upsert(ctx context.Context, rec ledgerentity.LedgerRecord) error {
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	m.Upserts = append(m.Upserts, rec)
	m.recs[recKey(rec.PortfolioID, rec.AssetID, rec.Date)] = rec
	return nil
}

func (m *memRecords) get(pid, aid uint, day string) ledgerentity.LedgerRecord {
	return m.recs[recKey(pid, aid, d(day))]
}

// memPrices is an in-memory price repository placed behind the real PriceCache.
type memPrices struct {
	points      map[string]priceentity.PricePoint
	FindErr     error
	UpsertCalls int
}

func newMemPrices() *memPrices { return &memPrices{points: map[string]priceentity.PricePoint{}} }

func priceKey(aid uint, day caldate.Date) string { return fmt.Sprintf("%d#%s", aid, day) }

func (m *memPrices) Find(ctx context.Context, assetID uint, date caldate.Date) (priceentity.PricePoint, bool, error) {
	if m.FindErr != nil {
		return priceentity.PricePoint{}, false, m.FindErr
	}
	p, ok := m.points[priceKey(assetID, date)]
	return p, ok, nil
}

func (m *memPrices) Upsert(ctx context.Context, p priceentity.PricePoint) error {
	m.UpsertCalls++
	m.points[priceKey(p.AssetID, p.Date)] = p
	return nil
}

func (m *memPrices) ListRange(ctx context.Context, assetID uint, start, end caldate.Date) ([]priceentity.PricePoint, error) {
	var out []priceentity.PricePoint
	for day := start; day.Before(end); day = day.AddDays(1) {
		if p, ok := m.points[priceKey(assetID, day)]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// mockGateway is a function-field gateway counting calls.
type mockGateway struct {
	FetchFunc       func(ctx context.Context, category assetentity.Category, symbol string, date caldate.Date) (priceentity.Quote, error)
	FetchRangeFunc  func(ctx context.Context, category assetentity.Category, symbol string, start, end caldate.Date) ([]priceentity.Sample, error)
	FetchCalls      int
	FetchRangeCalls int
}

func (m *mockGateway) Fetch(ctx context.Context, category assetentity.Category, symbol string, date caldate.Date) (priceentity.Quote, error) {
	m.FetchCalls++
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, category, symbol, date)
	}
	return priceentity.Quote{}, errors.New("FetchFunc is not implemented")
}

func (m *mockGateway) FetchRange(ctx context.Context, category assetentity.Category, symbol string, start, end caldate.Date) ([]priceentity.Sample, error) {
	m.FetchRangeCalls++
	if m.FetchRangeFunc != nil {
		return m.FetchRangeFunc(ctx, category, symbol, start, end)
	}
	return nil, errors.New("FetchRangeFunc is not implemented")
}

// pricePerDay quotes 100 + day of month in unit.
func pricePerDay(unit string) func(ctx context.Context, category assetentity.Category, symbol string, date caldate.Date) (priceentity.Quote, error) {
	return func(ctx context.Context, category assetentity.Category, symbol string, date caldate.Date) (priceentity.Quote, error) {
		return priceentity.Quote{Value: float64(100 + date.Day()), Unit: unit, Timestamp: time.Unix(0, 0)}, nil
	}
}

type stubAssets map[uint]assetentity.Asset

func (s stubAssets) Get(ctx context.Context, id uint) (assetentity.Asset, error) {
	a, ok := s[id]
	if !ok {
		return assetentity.Asset{}, fmt.Errorf("asset %d: %w", id, assetdomain.ErrAssetNotFound)
	}
	return a, nil
}

func (s stubAssets) FindBySymbol(ctx context.Context, category assetentity.Category, symbol string) (assetentity.Asset, bool, error) {
	for _, a := range s {
		if a.Category == category && a.Symbol == symbol {
			return a, true, nil
		}
	}
	return assetentity.Asset{}, false, nil
}

type stubPortfolios struct {
	list    []portfolioentity.Portfolio
	ListErr error
}

func (s stubPortfolios) ListAll(ctx context.Context) ([]portfolioentity.Portfolio, error) {
	return s.list, s.ListErr
}

func (s stubPortfolios) Get(ctx context.Context, id uint) (portfolioentity.Portfolio, error) {
	for _, p := range s.list {
		if p.ID == id {
			return p, nil
		}
	}
	return portfolioentity.Portfolio{}, portfoliodomain.ErrPortfolioNotFound
}

var testAssets = stubAssets{
	1: {ID: 1, Category: assetentity.CategoryNASDAQ, Symbol: "AAPL", Unit: "USD"},
	2: {ID: 2, Category: assetentity.CategoryKOSPI, Symbol: "005930.KS", Unit: "KRW"},
	3: {ID: 3, Category: assetentity.CategoryCurrency, Symbol: "USDKRW", Unit: "KRW"},
}

// fixture wires a real PriceCache over in-memory stores.
type fixture struct {
	records *memRecords
	prices  *memPrices
	gw      *mockGateway
	cache   *priceusecase.PriceCache
}

func newFixture(recs ...ledgerentity.LedgerRecord) *fixture {
	f := &fixture{records: newMemRecords(recs...), prices: newMemPrices(), gw: &mockGateway{}}
	f.cache = priceusecase.NewPriceCache(f.prices, f.gw, testAssets)
	return f
}

func rec(pid, aid uint, day string, change float64) ledgerentity.LedgerRecord {
	return ledgerentity.LedgerRecord{PortfolioID: pid, AssetID: aid, Date: d(day), Change: change}
}
