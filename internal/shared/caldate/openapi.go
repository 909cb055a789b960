package caldate

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// FromAPI converts a request date. The zero value maps to the zero Date.
func FromAPI(d openapi_types.Date) Date {
	if d.Time.IsZero() {
		return Date{}
	}
	return New(d.Year(), d.Month(), d.Day())
}

// API converts d for a response body.
func (d Date) API() openapi_types.Date {
	if d.IsZero() {
		return openapi_types.Date{}
	}
	return openapi_types.Date{Time: time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC)}
}
