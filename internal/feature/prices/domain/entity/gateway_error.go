package entity

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a provider could not answer.
type FailureKind string

const (
	KindRateLimited     FailureKind = "rate_limited"
	KindNotFound        FailureKind = "not_found"
	KindTransient       FailureKind = "transient"
	KindInvalidCategory FailureKind = "invalid_category"
)

// Sentinels matched by *GatewayError through errors.Is.
var (
	ErrRateLimited     = errors.New("gateway rate limited")
	ErrNotFound        = errors.New("gateway: price not found")
	ErrTransient       = errors.New("gateway transient failure")
	ErrInvalidCategory = errors.New("gateway: no provider for category")
)

// GatewayError is the only error type returned by the price gateway.
type GatewayError struct {
	Kind     FailureKind
	Provider string
	Symbol   string
	Err      error
}

// NewGatewayError builds a GatewayError. err may be nil.
func NewGatewayError(kind FailureKind, provider, symbol string, err error) *GatewayError {
	return &GatewayError{Kind: kind, Provider: provider, Symbol: symbol, Err: err}
}

func (e *GatewayError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Provider, e.Symbol, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Is matches the sentinel for e.Kind.
func (e *GatewayError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (k FailureKind) sentinel() error {
	switch k {
	case KindRateLimited:
		return ErrRateLimited
	case KindNotFound:
		return ErrNotFound
	case KindTransient:
		return ErrTransient
	case KindInvalidCategory:
		return ErrInvalidCategory
	}
	return nil
}

// KindOf returns the failure kind carried by err, or "" if err is not a
// gateway failure.
func KindOf(err error) FailureKind {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}
