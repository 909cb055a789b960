package domain

import "errors"

var (
	ErrInvalidRange = errors.New("range must satisfy start < end")
	ErrInvalidDate  = errors.New("valuation date is required")
)
