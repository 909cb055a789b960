package cryptocompare

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio_backend/internal/feature/prices/domain/entity"
	"portfolio_backend/internal/shared/caldate"
)

func seoul(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	return loc
}

// histoday builds a response with one candle per day at 00:00 UTC.
func histoday(first string, closes ...float64) string {
	d := caldate.MustParse(first)
	parts := make([]string, 0, len(closes))
	for i, c := range closes {
		ts := d.AddDays(i).StartIn(time.UTC).Unix()
		parts = append(parts, fmt.Sprintf(`{"time":%d,"close":%g}`, ts, c))
	}
	return `{"Response":"Success","Data":{"Data":[` + strings.Join(parts, ",") + `]}}`
}

func TestClient_Series(t *testing.T) {
	t.Parallel()

	loc := seoul(t)
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/v2/histoday", r.URL.Path)
		q := r.URL.Query()
		gotQuery = map[string]string{"fsym": q.Get("fsym"), "tsym": q.Get("tsym"), "limit": q.Get("limit"), "toTs": q.Get("toTs"), "api_key": q.Get("api_key")}
		_, _ = w.Write([]byte(histoday("2023-12-31", 0, 42000, 43000, 44000)))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL, Location: loc}, srv.Client())
	samples, err := c.Series(context.Background(), "BTC", caldate.MustParse("2024-01-01"), caldate.MustParse("2024-01-03"))
	require.NoError(t, err)

	assert.Equal(t, "BTC", gotQuery["fsym"])
	assert.Equal(t, "USD", gotQuery["tsym"])
	assert.Equal(t, "3", gotQuery["limit"])
	assert.Equal(t, "k", gotQuery["api_key"])
	wantTo := caldate.MustParse("2024-01-04").StartIn(loc).Unix() - 1
	assert.Equal(t, fmt.Sprint(wantTo), gotQuery["toTs"])

	require.Len(t, samples, 3)
	assert.Equal(t, "2024-01-01", samples[0].Date.String())
	assert.Equal(t, 42000.0, samples[0].Value)
	assert.Equal(t, "USD", samples[0].Unit)
	assert.Equal(t, "2024-01-03", samples[2].Date.String())
}

func TestClient_Quote_KRWPair(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "KRW", r.URL.Query().Get("tsym"))
		_, _ = w.Write([]byte(histoday("2024-01-01", 55000000, 56000000)))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Location: seoul(t)}, srv.Client())
	q, err := c.Quote(context.Background(), "btc-krw", caldate.MustParse("2024-01-02"))
	require.NoError(t, err)
	assert.Equal(t, 56000000.0, q.Value)
	assert.Equal(t, "KRW", q.Unit)
	assert.False(t, q.Approximate)
}

func TestClient_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		symbol string
		want   error
	}{
		{name: "rate limit message", body: `{"Response":"Error","Message":"You are over your rate limit please upgrade your account!"}`, symbol: "BTC", want: entity.ErrRateLimited},
		{name: "unknown pair", body: `{"Response":"Error","Message":"fsym ZZZ does not exist."}`, symbol: "ZZZ", want: entity.ErrNotFound},
		{name: "other error", body: `{"Response":"Error","Message":"Server busy"}`, symbol: "BTC", want: entity.ErrTransient},
		{name: "http 429", status: http.StatusTooManyRequests, symbol: "BTC", want: entity.ErrRateLimited},
		{name: "broken json", body: `{`, symbol: "BTC", want: entity.ErrTransient},
		{name: "empty series", body: histoday("2024-01-01"), symbol: "BTC", want: entity.ErrNotFound},
		{name: "bad quote currency", body: histoday("2024-01-01", 1), symbol: "BTC-XXX1", want: entity.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.status != 0 {
					w.WriteHeader(tt.status)
					return
				}
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(Config{BaseURL: srv.URL}, srv.Client())
			_, err := c.Quote(context.Background(), tt.symbol, caldate.MustParse("2024-01-02"))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClient_Series_Timeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := srv.Client()
	client.Timeout = 20 * time.Millisecond
	c := NewClient(Config{BaseURL: srv.URL}, client)
	_, err := c.Series(context.Background(), "BTC", caldate.MustParse("2024-01-01"), caldate.MustParse("2024-01-02"))
	assert.ErrorIs(t, err, entity.ErrTransient)
}
