// Package koreaexim reads daily exchange rates published by the Export-Import
// Bank of Korea. Every rate is quoted in KRW.
package koreaexim

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
	providerName = "koreaexim"
	quoteUnit    = "KRW"

	// probeDays bounds how far Quote walks away from the requested day
	// to get past weekends and bank holidays.
	probeDays = 4
)

// result codes in the response body
const (
	resultOK         = 1
	resultDataError  = 2
	resultAuthError  = 3
	resultLimitError = 4
)

// Config holds configuration for the exchange-rate client.
type Config struct {
	APIKey   string
	BaseURL  string // full endpoint, e.g. https://www.koreaexim.go.kr/site/program/financial/exchangeJSON
	Location *time.Location
}

// Client fetches one day's exchange table per request.
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

type row struct {
	Result   int    `json:"result"`
	CurUnit  string `json:"cur_unit"`
	CurName  string `json:"cur_nm"`
	DealBasR string `json:"deal_bas_r"`
}

// Quote returns the KRW rate of symbol for day. Symbols are either a bare
// currency ("USD") or a pair quoted in KRW ("USDKRW").
//
// When the bank publishes nothing for day, the following days up to today are
// tried, then earlier days; a rate taken from an earlier day is Approximate.
func (c *Client) Quote(ctx context.Context, symbol string, day caldate.Date) (entity.Quote, error) {
	base, err := baseCurrency(symbol)
	if err != nil {
		return entity.Quote{}, err
	}
	today := caldate.FromTime(c.now(), c.cfg.Location)

	for i := 0; i <= probeDays; i++ {
		d := day.AddDays(i)
		if d.After(today) {
			break
		}
		s, ok, err := c.rateOn(ctx, symbol, base, d)
		if err != nil {
			return entity.Quote{}, err
		}
		if ok {
			return entity.Quote{Value: s.Value, Unit: s.Unit, Timestamp: s.Timestamp}, nil
		}
	}
	for i := 1; i <= probeDays; i++ {
		s, ok, err := c.rateOn(ctx, symbol, base, day.AddDays(-i))
		if err != nil {
			return entity.Quote{}, err
		}
		if ok {
			return entity.Quote{Value: s.Value, Unit: s.Unit, Timestamp: s.Timestamp, Approximate: true}, nil
		}
	}
	return entity.Quote{}, entity.NewGatewayError(entity.KindNotFound, providerName, symbol,
		fmt.Errorf("no rate published around %s", day))
}

// Series returns one sample per published day in [start, end].
func (c *Client) Series(ctx context.Context, symbol string, start, end caldate.Date) ([]entity.Sample, error) {
	base, err := baseCurrency(symbol)
	if err != nil {
		return nil, err
	}
	var out []entity.Sample
	for d := start; !d.After(end); d = d.AddDays(1) {
		s, ok, err := c.rateOn(ctx, symbol, base, d)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// rateOn fetches the table for d and picks base from it. ok is false when the
// bank published no table that day.
func (c *Client) rateOn(ctx context.Context, symbol, base string, d caldate.Date) (entity.Sample, bool, error) {
	rows, err := c.table(ctx, symbol, d)
	if err != nil {
		return entity.Sample{}, false, err
	}
	if len(rows) == 0 {
		return entity.Sample{}, false, nil
	}
	for _, r := range rows {
		switch r.Result {
		case resultLimitError:
			return entity.Sample{}, false, entity.NewGatewayError(entity.KindRateLimited, providerName, symbol,
				fmt.Errorf("daily request limit exceeded"))
		case resultAuthError, resultDataError:
			return entity.Sample{}, false, entity.NewGatewayError(entity.KindTransient, providerName, symbol,
				fmt.Errorf("result code %d", r.Result))
		}
		unit, per := splitUnit(r.CurUnit)
		if unit != base {
			continue
		}
		v, err := externalapi.ParseNumber(r.DealBasR)
		if err != nil {
			return entity.Sample{}, false, entity.NewGatewayError(entity.KindTransient, providerName, symbol, err)
		}
		return entity.Sample{
			Date:      d,
			Value:     v / per,
			Unit:      quoteUnit,
			Timestamp: d.StartIn(c.cfg.Location),
		}, true, nil
	}
	return entity.Sample{}, false, entity.NewGatewayError(entity.KindNotFound, providerName, symbol,
		fmt.Errorf("currency %s not in table", base))
}

func (c *Client) table(ctx context.Context, symbol string, d caldate.Date) ([]row, error) {
	q := url.Values{}
	q.Set("authkey", c.cfg.APIKey)
	q.Set("searchdate", d.Compact())
	q.Set("data", "AP01")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, externalapi.FromTransport(providerName, symbol, err)
	}
	res, err := c.client.Do(req)
	if err != nil {
		return nil, externalapi.FromTransport(providerName, symbol, err)
	}
	defer func() { _ = res.Body.Close() }()

	if err := externalapi.FromStatus(providerName, symbol, res); err != nil {
		return nil, err
	}

	var rows []row
	if err := json.NewDecoder(res.Body).Decode(&rows); err != nil {
		return nil, externalapi.FromTransport(providerName, symbol, fmt.Errorf("decode: %w", err))
	}
	return rows, nil
}

// baseCurrency extracts the priced currency from "USD" or "USDKRW".
func baseCurrency(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	switch {
	case len(s) == 3:
	case len(s) == 6 && s[3:] == quoteUnit:
		s = s[:3]
	default:
		return "", entity.NewGatewayError(entity.KindNotFound, providerName, symbol,
			fmt.Errorf("only KRW pairs are published"))
	}
	if _, err := externalapi.NormalizeUnit(s); err != nil {
		return "", entity.NewGatewayError(entity.KindNotFound, providerName, symbol, err)
	}
	return s, nil
}

// splitUnit parses cur_unit values such as "USD" and "JPY(100)". Rates for
// the latter are quoted per 100 units.
func splitUnit(curUnit string) (string, float64) {
	u := strings.TrimSpace(curUnit)
	if i := strings.IndexByte(u, '('); i > 0 && strings.HasSuffix(u, ")") {
		if n, err := externalapi.ParseNumber(u[i+1 : len(u)-1]); err == nil && n > 0 {
			return u[:i], n
		}
		return u[:i], 1
	}
	return u, 1
}
