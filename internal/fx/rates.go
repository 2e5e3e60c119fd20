// Package fx converts amounts between currencies using injected rate sources.
package fx

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/hostledger/internal/models"
)

// RateProvider returns the rate to multiply an amount in from by to obtain
// the amount in to, valid at asOf.
type RateProvider interface {
	GetRate(ctx context.Context, from, to string, asOf time.Time) (decimal.Decimal, error)
}

// StaticRates is a fixed rate table keyed by base then quote currency.
// Only listed pairs resolve; inverse rates are not derived.
type StaticRates map[string]map[string]float64

// GetRate looks the pair up in the table.
func (r StaticRates) GetRate(_ context.Context, from, to string, _ time.Time) (decimal.Decimal, error) {
	quotes, ok := r[strings.ToUpper(from)]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no rates for %s", models.ErrCurrencyConversionUnavailable, from)
	}
	rate, ok := quotes[strings.ToUpper(to)]
	if !ok || rate <= 0 {
		return decimal.Zero, fmt.Errorf("%w: no rate for %s/%s", models.ErrCurrencyConversionUnavailable, from, to)
	}
	return decimal.NewFromFloat(rate), nil
}

// ParseStaticRates reads a table written as "USD:EUR=0.84,EUR:USD=1.19".
func ParseStaticRates(s string) (StaticRates, error) {
	rates := make(StaticRates)
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		pair, value, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("invalid rate %q: missing '='", item)
		}
		from, to, ok := strings.Cut(pair, ":")
		if !ok || from == "" || to == "" {
			return nil, fmt.Errorf("invalid rate %q: expected FROM:TO", item)
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || rate <= 0 {
			return nil, fmt.Errorf("invalid rate %q: not a positive number", item)
		}
		from, to = strings.ToUpper(strings.TrimSpace(from)), strings.ToUpper(strings.TrimSpace(to))
		if rates[from] == nil {
			rates[from] = make(map[string]float64)
		}
		rates[from][to] = rate
	}
	return rates, nil
}
