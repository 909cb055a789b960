package http

import (
	"net/http"

	"portfolio_backend/internal/shared/ratelimiter"
)

// WithLimiter は c のコピーを返し、そのクライアントの各リクエストは送信前に l を待ちます。
// 1回の価格取得で複数リクエストを送るプロバイダでも上限が守られます。
// l が nil の場合は c をそのまま返します。
func WithLimiter(c *http.Client, l ratelimiter.Limiter) *http.Client {
	if l == nil {
		return c
	}
	next := c.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	limited := *c
	limited.Transport = &limitedTransport{next: next, limiter: l}
	return &limited
}

type limitedTransport struct {
	next    http.RoundTripper
	limiter ratelimiter.Limiter
}

func (l *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := l.limiter.Wait(req.Context()); err != nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, err
	}
	return l.next.RoundTrip(req)
}
