// Package entity defines the asset registry's domain types.
package entity

import (
	"errors"
	"fmt"
	"strings"
)

// Category selects which price provider serves an asset.
type Category string

const (
	CategoryCurrency Category = "currency"
	CategoryCrypto   Category = "crypto"
	CategoryKOSPI    Category = "KOSPI"
	CategoryKOSDAQ   Category = "KOSDAQ"
	CategoryNASDAQ   Category = "NASDAQ"
	CategoryNYSE     Category = "NYSE"
)

// Categories lists every supported category.
var Categories = []Category{
	CategoryCurrency,
	CategoryCrypto,
	CategoryKOSPI,
	CategoryKOSDAQ,
	CategoryNASDAQ,
	CategoryNYSE,
}

// ErrUnknownCategory is returned by ParseCategory.
var ErrUnknownCategory = errors.New("unknown asset category")

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// ParseCategory matches s case-insensitively against Categories.
func ParseCategory(s string) (Category, error) {
	for _, k := range Categories {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Asset describes something that can be held and priced.
// Category and Symbol together identify it at the provider.
type Asset struct {
	ID          uint
	Category    Category
	DisplayName string
	Symbol      string
	Unit        string // ISO currency the provider quotes in
}

// DefaultUnit guesses the quote currency for symbol when none is given.
// Currency pairs such as USDKRW quote in their second half, crypto pairs
// such as BTC-KRW in their suffix.
func DefaultUnit(c Category, symbol string) string {
	s := strings.ToUpper(symbol)
	switch c {
	case CategoryCurrency:
		if len(s) == 6 {
			return s[3:]
		}
		return "KRW"
	case CategoryCrypto:
		if i := strings.LastIndex(s, "-"); i >= 0 && i < len(s)-1 {
			return s[i+1:]
		}
		return "USD"
	case CategoryKOSPI, CategoryKOSDAQ:
		return "KRW"
	case CategoryNASDAQ, CategoryNYSE:
		return "USD"
	}
	return ""
}
