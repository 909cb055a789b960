package http

import (
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// NewHTTPClient は価格プロバイダ呼び出し用に設定されたHTTPクライアントを作成します。
//
// http.DefaultClient にはタイムアウトがないため使用しません。
// timeout はリクエスト全体の上限で、超過はプロバイダ側で一時的な失敗として扱われます。
func NewHTTPClient(timeout time.Duration, log zerolog.Logger) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &loggingTransport{next: t, log: log.With().Str("component", "httpclient").Logger()},
	}
}

// loggingTransport は外部APIへのリクエストをデバッグログに記録します。
// APIキーが含まれるためクエリ文字列は出力しません。
type loggingTransport struct {
	next http.RoundTripper
	log  zerolog.Logger
}

func (l *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	res, err := l.next.RoundTrip(req)
	ev := l.log.Debug().
		Str("method", req.Method).
		Str("host", req.URL.Host).
		Str("path", req.URL.Path).
		Dur("elapsed", time.Since(start))
	if err != nil {
		ev.Err(err).Msg("provider request failed")
		return nil, err
	}
	ev.Int("status", res.StatusCode).Msg("provider request")
	return res, nil
}
