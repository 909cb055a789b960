// Package di provides dependency injection factories for creating application components.
package di

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	assetentity "portfolio_backend/internal/feature/assets/domain/entity"
	"portfolio_backend/internal/feature/prices/gateway"
	"portfolio_backend/internal/platform/config"
	"portfolio_backend/internal/platform/externalapi/cryptocompare"
	"portfolio_backend/internal/platform/externalapi/koreaexim"
	"portfolio_backend/internal/platform/externalapi/twelvedata"
	"portfolio_backend/internal/platform/externalapi/yfapi"
	infrahttp "portfolio_backend/internal/platform/http"
	"portfolio_backend/internal/shared/ratelimiter"
)

// NewGateway creates the price gateway with one provider client per
// category. The clients share one HTTP transport; each provider gets its own
// per-minute limiter applied to every HTTP request it sends.
func NewGateway(cfg *config.Config, log zerolog.Logger) (*gateway.Gateway, error) {
	loc, err := cfg.Valuation.Location()
	if err != nil {
		return nil, fmt.Errorf("reference timezone: %w", err)
	}
	p := cfg.Providers
	httpClient := infrahttp.NewHTTPClient(p.Timeout, log)
	limited := func(provider string) *http.Client {
		if p.RateLimitPerMinute <= 0 {
			return httpClient
		}
		return infrahttp.WithLimiter(httpClient,
			ratelimiter.NewRateLimiter(p.RateLimitPerMinute, time.Minute, log.With().Str("provider", provider).Logger()))
	}

	exim := koreaexim.NewClient(koreaexim.Config{APIKey: p.KoreaEximAPIKey, BaseURL: p.KoreaEximBaseURL, Location: loc}, limited("koreaexim"))
	crypto := cryptocompare.NewClient(cryptocompare.Config{APIKey: p.CryptoCompareAPIKey, BaseURL: p.CryptoCompareBaseURL, Location: loc}, limited("cryptocompare"))
	spark := yfapi.NewClient(yfapi.Config{APIKey: p.YFAPIKey, BaseURL: p.YFBaseURL, Location: loc}, limited("yfapi"))
	market := twelvedata.NewTwelveDataMarket(twelvedata.Config{TwelveDataAPIKey: p.TwelveDataAPIKey, BaseURL: p.TwelveDataBaseURL, Location: loc}, limited("twelvedata"))

	routes := []gateway.Route{
		{Category: assetentity.CategoryCurrency, Name: "koreaexim", Source: exim},
		{Category: assetentity.CategoryCrypto, Name: "cryptocompare", Source: crypto},
		{Category: assetentity.CategoryKOSPI, Name: "yfapi", Source: spark},
		{Category: assetentity.CategoryKOSDAQ, Name: "yfapi", Source: spark},
		{Category: assetentity.CategoryNASDAQ, Name: "twelvedata", Source: market},
		{Category: assetentity.CategoryNYSE, Name: "twelvedata", Source: market},
	}

	return gateway.New(routes, log), nil
}
