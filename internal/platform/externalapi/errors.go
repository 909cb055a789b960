// Package externalapi holds helpers shared by the price provider clients.
package externalapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"portfolio_backend/internal/feature/prices/domain/entity"
)

// FromStatus maps an HTTP status to a gateway failure. It returns nil for 2xx/3xx.
func FromStatus(provider, symbol string, res *http.Response) error {
	if res.StatusCode < 400 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	cause := fmt.Errorf("%s http %d: %s", provider, res.StatusCode, strings.TrimSpace(string(body)))
	switch {
	case res.StatusCode == http.StatusTooManyRequests:
		return entity.NewGatewayError(entity.KindRateLimited, provider, symbol, cause)
	case res.StatusCode == http.StatusNotFound:
		return entity.NewGatewayError(entity.KindNotFound, provider, symbol, cause)
	default:
		return entity.NewGatewayError(entity.KindTransient, provider, symbol, cause)
	}
}

// FromTransport wraps a failed round trip or decode. Timeouts, resets and
// cancellations are all transient from the caller's point of view.
func FromTransport(provider, symbol string, err error) error {
	if err == nil {
		return nil
	}
	var ge *entity.GatewayError
	if errors.As(err, &ge) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		err = fmt.Errorf("request canceled: %w", err)
	}
	return entity.NewGatewayError(entity.KindTransient, provider, symbol, err)
}

// ParseNumber parses provider numeric text such as "1,379.3".
func ParseNumber(s string) (float64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", s, err)
	}
	f, _ := d.Float64()
	return f, nil
}

// NormalizeUnit upper-cases code and checks it is a known ISO 4217 currency.
func NormalizeUnit(code string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c == "" || money.GetCurrency(c) == nil {
		return "", fmt.Errorf("unknown currency %q", code)
	}
	return c, nil
}
