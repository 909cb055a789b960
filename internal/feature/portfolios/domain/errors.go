package domain

import "errors"

var (
	ErrPortfolioNotFound = errors.New("portfolio not found")
	ErrInvalidPortfolio  = errors.New("invalid portfolio")
)
