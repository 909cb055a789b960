package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"portfolio_backend/internal/feature/prices/domain/entity"
	"portfolio_backend/internal/platform/externalapi"
	"portfolio_backend/internal/platform/externalapi/twelvedata/dto"
	"portfolio_backend/internal/shared/caldate"
)

const (
	providerName = "twelvedata"
	maxOutput    = 5000
	// quoteLookback は Quote が遡って取得する日数です（週末・祝日対策）。
	quoteLookback = 7
)

// TwelveDataMarket はTwelve Data外部APIから米国株の日足終値を取得します。
type TwelveDataMarket struct {
	cfg    Config
	client *http.Client
	now    func() time.Time
}

// NewTwelveDataMarket は指定された設定とHTTPクライアントでTwelveDataMarketの新しいインスタンスを生成します。
func NewTwelveDataMarket(cfg Config, client *http.Client) *TwelveDataMarket {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &TwelveDataMarket{cfg: cfg, client: client, now: time.Now}
}

// Quote は指定日の終値を返します。指定日以降に取引日がない場合は
// 直前の終値を Approximate として返します。
func (t *TwelveDataMarket) Quote(ctx context.Context, symbol string, day caldate.Date) (entity.Quote, error) {
	end := day.AddDays(quoteLookback)
	if today := caldate.FromTime(t.now(), t.cfg.Location); end.After(today) {
		end = today
	}
	samples, err := t.Series(ctx, symbol, day.AddDays(-quoteLookback), end)
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

// Series は [start, end] の日足終値を取得します。
func (t *TwelveDataMarket) Series(ctx context.Context, symbol string, start, end caldate.Date) ([]entity.Sample, error) {
	q := url.Values{}
	// クエリパラメータを追加
	q.Set("symbol", symbol)
	q.Set("interval", "1day")
	q.Set("start_date", start.String())
	// end_date は排他的に扱われるため翌日を指定
	q.Set("end_date", end.AddDays(1).String())
	q.Set("outputsize", fmt.Sprint(maxOutput))
	q.Set("order", "ASC")
	q.Set("apikey", t.cfg.TwelveDataAPIKey)

	u := fmt.Sprintf("%s/time_series?%s", t.cfg.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, externalapi.FromTransport(providerName, symbol, err)
	}

	res, err := t.client.Do(req)
	if err != nil {
		return nil, externalapi.FromTransport(providerName, symbol, err)
	}
	defer func() { _ = res.Body.Close() }()

	if err := externalapi.FromStatus(providerName, symbol, res); err != nil {
		return nil, err
	}

	// JSONレスポンスをDTOにデコード
	var body dto.TimeSeriesResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, externalapi.FromTransport(providerName, symbol, fmt.Errorf("decode: %w", err))
	}
	if body.Status == "error" {
		return nil, classifyError(symbol, body.Code, body.Message)
	}

	unit, err := externalapi.NormalizeUnit(body.Meta.Currency)
	if err != nil {
		return nil, entity.NewGatewayError(entity.KindTransient, providerName, symbol, err)
	}

	out := make([]entity.Sample, 0, len(body.Values))
	for _, v := range body.Values {
		// 日足は "2006-01-02"、分足混在時は先頭10文字を使う
		ds := v.Datetime
		if len(ds) > len(caldate.Layout) {
			ds = ds[:len(caldate.Layout)]
		}
		d, err := caldate.Parse(ds)
		if err != nil {
			return nil, entity.NewGatewayError(entity.KindTransient, providerName, symbol,
				fmt.Errorf("parse time %q: %w", v.Datetime, err))
		}
		if d.Before(start) || d.After(end) {
			continue
		}
		c, err := externalapi.ParseNumber(v.Close)
		if err != nil {
			return nil, entity.NewGatewayError(entity.KindTransient, providerName, symbol,
				fmt.Errorf("parse close %q: %w", v.Close, err))
		}
		out = append(out, entity.Sample{
			Date:      d,
			Value:     c,
			Unit:      unit,
			Timestamp: d.StartIn(t.cfg.Location),
		})
	}
	return out, nil
}

// classifyError はレスポンス本文のエラーコードを失敗種別に変換します。
func classifyError(symbol string, code int, msg string) error {
	cause := fmt.Errorf("twelvedata %d: %s", code, msg)
	switch code {
	case http.StatusTooManyRequests:
		return entity.NewGatewayError(entity.KindRateLimited, providerName, symbol, cause)
	case http.StatusBadRequest, http.StatusNotFound:
		return entity.NewGatewayError(entity.KindNotFound, providerName, symbol, cause)
	default:
		return entity.NewGatewayError(entity.KindTransient, providerName, symbol, cause)
	}
}
