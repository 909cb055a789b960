// Package cryptocompare reads daily crypto closes from the CryptoCompare
// histoday endpoint.
package cryptocompare

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"portfolio_backend/internal/feature/prices/domain/entity"
	"portfolio_backend/internal/platform/externalapi"
	"portfolio_backend/internal/shared/caldate"
)

const (
	providerName = "cryptocompare"
	defaultQuote = "USD"

	// quoteWindow is how many days around the requested day Quote asks for.
	quoteWindow = 7
	maxLimit    = 2000
)

// Config holds configuration for the CryptoCompare client.
type Config struct {
	APIKey   string
	BaseURL  string // e.g. https://min-api.cryptocompare.com
	Location *time.Location
}

// Client fetches histoday series.
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient returns a Client. A nil Location defaults to UTC.
func NewClient(cfg Config, client *http.Client) *Client {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Client{cfg: cfg, client: client}
}

type histodayResponse struct {
	Response string `json:"Response"`
	Message  string `json:"Message"`
	Data     struct {
		Data []struct {
			Time  int64   `json:"time"`
			Close float64 `json:"close"`
		} `json:"Data"`
	} `json:"Data"`
}

// Quote returns the close for day. "BTC" is quoted in USD, "BTC-KRW" in KRW.
func (c *Client) Quote(ctx context.Context, symbol string, day caldate.Date) (entity.Quote, error) {
	samples, err := c.Series(ctx, symbol, day.AddDays(-quoteWindow), day.AddDays(quoteWindow))
	if err != nil {
		return entity.Quote{}, err
	}
	q, ok := entity.Snap(samples, day)
	if !ok {
		return entity.Quote{}, entity.NewGatewayError(entity.KindNotFound, providerName, symbol,
			fmt.Errorf("no data around %s", day))
	}
	return q, nil
}

// Series returns daily closes in [start, end]. Days are assigned in the
// configured location.
func (c *Client) Series(ctx context.Context, symbol string, start, end caldate.Date) ([]entity.Sample, error) {
	fsym, tsym, err := splitSymbol(symbol)
	if err != nil {
		return nil, err
	}
	limit := start.DaysUntil(end) + 1
	if limit < 1 {
		return nil, nil
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	toTs := end.AddDays(1).StartIn(c.cfg.Location).Unix() - 1

	q := url.Values{}
	q.Set("fsym", fsym)
	q.Set("tsym", tsym)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("toTs", strconv.FormatInt(toTs, 10))
	if c.cfg.APIKey != "" {
		q.Set("api_key", c.cfg.APIKey)
	}
	u := fmt.Sprintf("%s/data/v2/histoday?%s", c.cfg.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
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

	var body histodayResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, externalapi.FromTransport(providerName, symbol, fmt.Errorf("decode: %w", err))
	}
	if body.Response == "Error" {
		return nil, classifyMessage(symbol, body.Message)
	}

	out := make([]entity.Sample, 0, len(body.Data.Data))
	for _, p := range body.Data.Data {
		// zero closes pad the series before the coin was listed
		if p.Close <= 0 {
			continue
		}
		ts := time.Unix(p.Time, 0)
		d := caldate.FromTime(ts, c.cfg.Location)
		if d.Before(start) || d.After(end) {
			continue
		}
		out = append(out, entity.Sample{Date: d, Value: p.Close, Unit: tsym, Timestamp: ts})
	}
	return out, nil
}

func classifyMessage(symbol, msg string) error {
	lower := strings.ToLower(msg)
	cause := fmt.Errorf("cryptocompare: %s", msg)
	switch {
	case strings.Contains(lower, "rate limit"):
		return entity.NewGatewayError(entity.KindRateLimited, providerName, symbol, cause)
	case strings.Contains(lower, "does not exist"), strings.Contains(lower, "no data"):
		return entity.NewGatewayError(entity.KindNotFound, providerName, symbol, cause)
	default:
		return entity.NewGatewayError(entity.KindTransient, providerName, symbol, cause)
	}
}

// splitSymbol parses "BTC" or "BTC-KRW".
func splitSymbol(symbol string) (fsym, tsym string, err error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	fsym, tsym, found := strings.Cut(s, "-")
	if !found {
		tsym = defaultQuote
	}
	if fsym == "" {
		return "", "", entity.NewGatewayError(entity.KindNotFound, providerName, symbol, fmt.Errorf("empty symbol"))
	}
	tsym, uerr := externalapi.NormalizeUnit(tsym)
	if uerr != nil {
		return "", "", entity.NewGatewayError(entity.KindNotFound, providerName, symbol, uerr)
	}
	return fsym, tsym, nil
}
