package domain

import "errors"

var (
	ErrInvalidRecord = errors.New("invalid ledger record")
	ErrZeroChange    = errors.New("ledger change must not be zero")
)
