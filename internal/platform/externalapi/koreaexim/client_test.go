package koreaexim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio_backend/internal/feature/prices/domain/entity"
	infrahttp "portfolio_backend/internal/platform/http"
	"portfolio_backend/internal/shared/caldate"
)

// fakeBank serves canned tables keyed by searchdate and records requests.
type fakeBank struct {
	mu     sync.Mutex
	tables map[string]string
	status int
	asked  []string
}

func (f *fakeBank) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := r.URL.Query()
	f.asked = append(f.asked, q.Get("searchdate"))
	if q.Get("authkey") != "test-key" || q.Get("data") != "AP01" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}
	body, ok := f.tables[q.Get("searchdate")]
	if !ok {
		body = `[]`
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

const table = `[
	{"result":1,"cur_unit":"JPY(100)","cur_nm":"일본 옌","deal_bas_r":"905.12"},
	{"result":1,"cur_unit":"USD","cur_nm":"미국 달러","deal_bas_r":"1,379.3"}
]`

func newTestClient(t *testing.T, bank *fakeBank, today string) *Client {
	t.Helper()
	srv := httptest.NewServer(bank)
	t.Cleanup(srv.Close)

	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Location: seoul}, srv.Client())
	c.now = func() time.Time { return caldate.MustParse(today).StartIn(seoul).Add(12 * time.Hour) }
	return c
}

func TestClient_Quote_ExactDay(t *testing.T) {
	t.Parallel()

	bank := &fakeBank{tables: map[string]string{"20240105": table}}
	c := newTestClient(t, bank, "2024-01-10")

	q, err := c.Quote(context.Background(), "USDKRW", caldate.MustParse("2024-01-05"))
	require.NoError(t, err)
	assert.Equal(t, 1379.3, q.Value)
	assert.Equal(t, "KRW", q.Unit)
	assert.False(t, q.Approximate)
	assert.Equal(t, []string{"20240105"}, bank.asked)
}

func TestClient_Quote_PerHundredUnits(t *testing.T) {
	t.Parallel()

	bank := &fakeBank{tables: map[string]string{"20240105": table}}
	c := newTestClient(t, bank, "2024-01-10")

	q, err := c.Quote(context.Background(), "JPY", caldate.MustParse("2024-01-05"))
	require.NoError(t, err)
	assert.InDelta(t, 9.0512, q.Value, 1e-9)
}

func TestClient_Quote_WeekendSnapsForward(t *testing.T) {
	t.Parallel()

	// 2024-01-06/07 is a weekend; Monday's table is used.
	bank := &fakeBank{tables: map[string]string{"20240108": table}}
	c := newTestClient(t, bank, "2024-01-10")

	q, err := c.Quote(context.Background(), "USDKRW", caldate.MustParse("2024-01-06"))
	require.NoError(t, err)
	assert.Equal(t, 1379.3, q.Value)
	assert.False(t, q.Approximate)
	assert.Equal(t, []string{"20240106", "20240107", "20240108"}, bank.asked)
}

func TestClient_Quote_TodayFallsBackToEarlierDay(t *testing.T) {
	t.Parallel()

	// Today's table is not published yet; yesterday's is used and flagged.
	bank := &fakeBank{tables: map[string]string{"20240109": table}}
	c := newTestClient(t, bank, "2024-01-10")

	q, err := c.Quote(context.Background(), "USD", caldate.MustParse("2024-01-10"))
	require.NoError(t, err)
	assert.True(t, q.Approximate)
	assert.Equal(t, []string{"20240110", "20240109"}, bank.asked)
}

func TestClient_Quote_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		bank   *fakeBank
		symbol string
		want   error
	}{
		{name: "nothing published", bank: &fakeBank{}, symbol: "USDKRW", want: entity.ErrNotFound},
		{name: "currency missing from table", bank: &fakeBank{tables: map[string]string{"20240105": table}}, symbol: "EURKRW", want: entity.ErrNotFound},
		{name: "non KRW pair", bank: &fakeBank{}, symbol: "USDJPY", want: entity.ErrNotFound},
		{name: "daily limit", bank: &fakeBank{tables: map[string]string{"20240105": `[{"result":4}]`}}, symbol: "USD", want: entity.ErrRateLimited},
		{name: "http 429", bank: &fakeBank{status: http.StatusTooManyRequests}, symbol: "USD", want: entity.ErrRateLimited},
		{name: "http 500", bank: &fakeBank{status: http.StatusInternalServerError}, symbol: "USD", want: entity.ErrTransient},
		{name: "garbage number", bank: &fakeBank{tables: map[string]string{"20240105": `[{"result":1,"cur_unit":"USD","deal_bas_r":"-"}]`}}, symbol: "USD", want: entity.ErrTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, tt.bank, "2024-01-10")
			_, err := c.Quote(context.Background(), tt.symbol, caldate.MustParse("2024-01-05"))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClient_Series(t *testing.T) {
	t.Parallel()

	bank := &fakeBank{tables: map[string]string{
		"20240104": `[{"result":1,"cur_unit":"USD","deal_bas_r":"1,300"}]`,
		"20240105": `[{"result":1,"cur_unit":"USD","deal_bas_r":"1,310.5"}]`,
	}}
	c := newTestClient(t, bank, "2024-01-10")

	samples, err := c.Series(context.Background(), "USDKRW", caldate.MustParse("2024-01-04"), caldate.MustParse("2024-01-07"))
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, "2024-01-04", samples[0].Date.String())
	assert.Equal(t, 1300.0, samples[0].Value)
	assert.Equal(t, 1310.5, samples[1].Value)
	assert.Len(t, bank.asked, 4)
}

type tokenCounter struct{ taken int32 }

func (c *tokenCounter) Wait(context.Context) error {
	atomic.AddInt32(&c.taken, 1)
	return nil
}

// 日ごとに1リクエストを送るため、レート制限もリクエスト単位で効く必要がある
func TestClient_Series_RateLimitedPerRequest(t *testing.T) {
	t.Parallel()

	bank := &fakeBank{tables: map[string]string{"20240102": table, "20240103": table}}
	srv := httptest.NewServer(bank)
	t.Cleanup(srv.Close)

	lim := &tokenCounter{}
	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, infrahttp.WithLimiter(srv.Client(), lim))

	samples, err := c.Series(context.Background(), "USDKRW", caldate.MustParse("2024-01-01"), caldate.MustParse("2024-01-30"))
	require.NoError(t, err)
	assert.Len(t, samples, 2)

	bank.mu.Lock()
	requests := len(bank.asked)
	bank.mu.Unlock()
	assert.Equal(t, 30, requests)
	assert.Equal(t, int32(requests), atomic.LoadInt32(&lim.taken))
}
