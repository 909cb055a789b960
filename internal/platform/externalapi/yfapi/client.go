// Package yfapi reads daily closes for Korean equities from the yfapi.net
// spark endpoint.
package yfapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"portfolio_backend/internal/feature/prices/domain/entity"
	"portfolio_backend/internal/platform/externalapi"
	"portfolio_backend/internal/shared/caldate"
)

const (
	providerName = "yfapi"

	// spark only serves trailing ranges measured back from today.
	maxRangeDays = 365
	minRangeDays = 7
)

// Config holds configuration for the yfapi client.
type Config struct {
	APIKey   string // sent as x-api-key
	BaseURL  string // e.g. https://yfapi.net
	Location *time.Location
}

// Client fetches spark series.
type Client struct {
	cfg    Config
	client *http.Client
	now    func() time.Time
}

// NewClient returns a Client. A nil Location defaults to UTC.
func NewClient(cfg Config, client *http.Client) *Client {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Client{cfg: cfg, client: client, now: time.Now}
}

type sparkSeries struct {
	Symbol    string     `json:"symbol"`
	Timestamp []int64    `json:"timestamp"`
	Close     []*float64 `json:"close"`
}

// Quote returns the close for day, snapping to the next trading day.
func (c *Client) Quote(ctx context.Context, symbol string, day caldate.Date) (entity.Quote, error) {
	samples, err := c.Series(ctx, symbol, day, caldate.FromTime(c.now(), c.cfg.Location))
	if err != nil {
		return entity.Quote{}, err
	}
	q, ok := entity.Snap(samples, day)
	if !ok {
		return entity.Quote{}, entity.NewGatewayError(entity.KindNotFound, providerName, symbol,
			fmt.Errorf("no data for %s", day))
	}
	return q, nil
}

// Series returns daily closes in [start, end]. start must lie within the
// last year; older requests fail with NotFound.
func (c *Client) Series(ctx context.Context, symbol string, start, end caldate.Date) ([]entity.Sample, error) {
	today := caldate.FromTime(c.now(), c.cfg.Location)
	days := start.DaysUntil(today) + 1
	if days > maxRangeDays {
		return nil, entity.NewGatewayError(entity.KindNotFound, providerName, symbol,
			fmt.Errorf("%s is more than %d days ago", start, maxRangeDays))
	}
	if days < minRangeDays {
		days = minRangeDays
	}

	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("range", fmt.Sprintf("%dd", days))
	q.Set("symbols", symbol)
	u := fmt.Sprintf("%s/v8/finance/spark?%s", c.cfg.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, externalapi.FromTransport(providerName, symbol, err)
	}
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, externalapi.FromTransport(providerName, symbol, err)
	}
	defer func() { _ = res.Body.Close() }()

	if err := externalapi.FromStatus(providerName, symbol, res); err != nil {
		return nil, err
	}

	var body map[string]sparkSeries
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, externalapi.FromTransport(providerName, symbol, fmt.Errorf("decode: %w", err))
	}
	series, ok := body[symbol]
	if !ok || len(series.Timestamp) == 0 {
		return nil, entity.NewGatewayError(entity.KindNotFound, providerName, symbol, fmt.Errorf("symbol missing from response"))
	}

	unit := TickerCurrency(symbol)
	out := make([]entity.Sample, 0, len(series.Timestamp))
	for i, sec := range series.Timestamp {
		if i >= len(series.Close) || series.Close[i] == nil {
			continue
		}
		ts := time.Unix(sec, 0)
		d := caldate.FromTime(ts, c.cfg.Location)
		if d.Before(start) || d.After(end) {
			continue
		}
		out = append(out, entity.Sample{Date: d, Value: *series.Close[i], Unit: unit, Timestamp: ts})
	}
	return out, nil
}

// suffixCurrency maps ticker suffixes to the currency they trade in.
// Order matters: the first matching suffix wins.
var suffixCurrency = []struct {
	suffix   string
	currency string
}{
	{"KRW=X", "KRW"},
	{"-KRW", "KRW"},
	{".KS", "KRW"},
	{".KQ", "KRW"},
	{"-USD", "USD"},
	{"JPY=X", "JPY"},
	{".T", "JPY"},
	{"-HKD", "HKD"},
	{".HK", "HKD"},
	{"-EUR", "EUR"},
	{"-CNY", "CNY"},
	{"-GBP", "GBP"},
}

// TickerCurrency infers the quote currency of a ticker from its suffix,
// defaulting to USD.
func TickerCurrency(ticker string) string {
	t := strings.ToUpper(ticker)
	for _, s := range suffixCurrency {
		if strings.HasSuffix(t, s.suffix) {
			return s.currency
		}
	}
	return "USD"
}
