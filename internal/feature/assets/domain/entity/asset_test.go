package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{in: "currency", want: CategoryCurrency},
		{in: "CRYPTO", want: CategoryCrypto},
		{in: "kospi", want: CategoryKOSPI},
		{in: "KOSDAQ", want: CategoryKOSDAQ},
		{in: "Nasdaq", want: CategoryNASDAQ},
		{in: "NYSE", want: CategoryNYSE},
		{in: "TSE", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseCategory(tt.in)
		if tt.wantErr {
			require.ErrorIs(t, err, ErrUnknownCategory, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		assert.True(t, got.Valid())
	}
	assert.False(t, Category("bonds").Valid())
}

func TestDefaultUnit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		category Category
		symbol   string
		want     string
	}{
		{CategoryCurrency, "USDKRW", "KRW"},
		{CategoryCurrency, "usdjpy", "JPY"},
		{CategoryCurrency, "USD", "KRW"},
		{CategoryCrypto, "BTC", "USD"},
		{CategoryCrypto, "BTC-KRW", "KRW"},
		{CategoryCrypto, "BTC-", "USD"},
		{CategoryKOSPI, "005930.KS", "KRW"},
		{CategoryKOSDAQ, "035720.KQ", "KRW"},
		{CategoryNASDAQ, "AAPL", "USD"},
		{CategoryNYSE, "KO", "USD"},
		{Category("TSE"), "7203", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DefaultUnit(tt.category, tt.symbol), "%s %s", tt.category, tt.symbol)
	}
}
