package fx

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/hostledger/internal/models"
)

// Rates observed on 2021-06-23.
var testRates = StaticRates{
	"USD": {"EUR": 0.84, "JPY": 110.94},
	"EUR": {"USD": 1.19, "JPY": 132.45},
	"JPY": {"EUR": 0.0075, "USD": 0.009},
}

func TestConvert(t *testing.T) {
	conv := NewConverter(testRates)
	asOf := time.Date(2021, 6, 23, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		amount   int64
		from, to string
		want     int64
	}{
		{name: "same currency is untouched", amount: 12345, from: "USD", to: "USD", want: 12345},
		{name: "case insensitive codes", amount: 100, from: "usd", to: "USD", want: 100},
		{name: "rounds up above half", amount: 1068, from: "EUR", to: "USD", want: 1271},
		{name: "exact product", amount: 100000000, from: "JPY", to: "EUR", want: 750000},
		{name: "fraction below half rounds down", amount: 50, from: "JPY", to: "EUR", want: 0},
		{name: "negative amounts mirror positive", amount: -1068, from: "EUR", to: "USD", want: -1271},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := conv.Convert(context.Background(), tt.amount, tt.from, tt.to, asOf)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvert_MissingRate(t *testing.T) {
	conv := NewConverter(testRates)

	_, err := conv.Convert(context.Background(), 100, "USD", "GBP", time.Now())
	require.ErrorIs(t, err, models.ErrCurrencyConversionUnavailable)

	_, err = conv.Convert(context.Background(), 100, "CHF", "USD", time.Now())
	require.ErrorIs(t, err, models.ErrCurrencyConversionUnavailable)
}

func TestRound(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"67.5", 68},
		{"-67.5", -68},
		{"2.4999", 2},
		{"1270.92", 1271},
		{"0.5", 1},
		{"-0.5", -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Round(decimal.RequireFromString(tt.in)), tt.in)
	}
}

func TestParseStaticRates(t *testing.T) {
	rates, err := ParseStaticRates("usd:eur=0.84, EUR:USD=1.19,")
	require.NoError(t, err)
	assert.Equal(t, StaticRates{
		"USD": {"EUR": 0.84},
		"EUR": {"USD": 1.19},
	}, rates)

	empty, err := ParseStaticRates("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, bad := range []string{"USD:EUR", "USDEUR=1", "USD:EUR=abc", "USD:EUR=-1"} {
		_, err := ParseStaticRates(bad)
		assert.Error(t, err, bad)
	}
}
