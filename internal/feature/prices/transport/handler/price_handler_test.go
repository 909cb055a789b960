package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	assetdomain "portfolio_backend/internal/feature/assets/domain"
	assetentity "portfolio_backend/internal/feature/assets/domain/entity"
	"portfolio_backend/internal/feature/prices/domain/entity"
	"portfolio_backend/internal/feature/prices/transport/handler"
	"portfolio_backend/internal/shared/caldate"
)

type mockPrices struct {
	GetOrFetchFunc func(ctx context.Context, assetID uint, date caldate.Date, force bool) (entity.PricePoint, error)
	Calls          int
}

func (m *mockPrices) GetOrFetch(ctx context.Context, assetID uint, date caldate.Date, force bool) (entity.PricePoint, error) {
	m.Calls++
	return m.GetOrFetchFunc(ctx, assetID, date, force)
}

type mockQuotes struct {
	FetchFunc func(ctx context.Context, category assetentity.Category, symbol string, date caldate.Date) (entity.Quote, error)
	Calls     int
}

func (m *mockQuotes) Fetch(ctx context.Context, category assetentity.Category, symbol string, date caldate.Date) (entity.Quote, error) {
	m.Calls++
	return m.FetchFunc(ctx, category, symbol, date)
}

func newRouter(p handler.PriceLookup, q handler.QuoteFetcher) *gin.Engine {
	h := handler.NewPriceHandler(p, q)
	r := gin.New()
	r.GET("/assets/:id/prices/:date", h.Price)
	r.GET("/quotes/:category/:symbol/:date", h.Quote)
	return r
}

func get(r *gin.Engine, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	return w
}

var observed = time.Date(2024, 1, 31, 21, 0, 0, 0, time.UTC)

func TestPriceHandler_Price(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var gotForce bool
	p := &mockPrices{GetOrFetchFunc: func(ctx context.Context, assetID uint, date caldate.Date, force bool) (entity.PricePoint, error) {
		gotForce = force
		return entity.PricePoint{AssetID: assetID, Date: date, Value: 185.5, Unit: "USD", ObservedAt: observed}, nil
	}}
	r := newRouter(p, nil)

	w := get(r, "/assets/1/prices/2024-01-31")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"asset_id":1,"date":"2024-01-31","value":185.5,"unit":"USD","observed_at":"2024-01-31T21:00:00Z","approximate":false}`, w.Body.String())
	assert.False(t, gotForce)

	w = get(r, "/assets/1/prices/2024-01-31?force=true")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gotForce)

	assert.Equal(t, http.StatusBadRequest, get(r, "/assets/0/prices/2024-01-31").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/assets/1/prices/31-01-2024").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/assets/1/prices/2024-01-31?force=maybe").Code)
	assert.Equal(t, 2, p.Calls, "invalid requests never reach the cache")
}

func TestPriceHandler_Price_Errors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"unknown asset", entity.NewGatewayError(entity.KindNotFound, "assets", "#9", assetdomain.ErrAssetNotFound), http.StatusNotFound},
		{"no price", entity.NewGatewayError(entity.KindNotFound, "twelvedata", "AAPL", nil), http.StatusNotFound},
		{"rate limited", entity.NewGatewayError(entity.KindRateLimited, "twelvedata", "AAPL", nil), http.StatusTooManyRequests},
		{"transient", entity.NewGatewayError(entity.KindTransient, "upbit", "KRW-BTC", errors.New("EOF")), http.StatusBadGateway},
		{"no provider", entity.NewGatewayError(entity.KindInvalidCategory, "gateway", "X", nil), http.StatusBadRequest},
		{"store down", errors.New("store unavailable"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &mockPrices{GetOrFetchFunc: func(ctx context.Context, assetID uint, date caldate.Date, force bool) (entity.PricePoint, error) {
				return entity.PricePoint{}, tt.err
			}}
			w := get(newRouter(p, nil), "/assets/9/prices/2024-01-31")

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, `{"error":"`+tt.err.Error()+`"}`, w.Body.String())
		})
	}
}

func TestPriceHandler_Quote(t *testing.T) {
	gin.SetMode(gin.TestMode)

	q := &mockQuotes{FetchFunc: func(ctx context.Context, category assetentity.Category, symbol string, date caldate.Date) (entity.Quote, error) {
		if symbol == "NOPE" {
			return entity.Quote{}, entity.NewGatewayError(entity.KindNotFound, "twelvedata", symbol, nil)
		}
		assert.Equal(t, assetentity.CategoryNASDAQ, category)
		return entity.Quote{Value: 185.5, Unit: "USD", Timestamp: observed, Approximate: true}, nil
	}}
	r := newRouter(nil, q)

	w := get(r, "/quotes/nasdaq/AAPL/2024-01-31")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"category":"NASDAQ","symbol":"AAPL","date":"2024-01-31","value":185.5,"unit":"USD","timestamp":"2024-01-31T21:00:00Z","approximate":true}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, get(r, "/quotes/NASDAQ/NOPE/2024-01-31").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/quotes/stocks/AAPL/2024-01-31").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/quotes/NASDAQ/AAPL/yesterday").Code)
	assert.Equal(t, 2, q.Calls)
}
