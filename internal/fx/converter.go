package fx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/hostledger/internal/models"
)

// Converter turns minor-unit amounts from one currency into another.
type Converter struct {
	rates RateProvider
}

// NewConverter creates a Converter reading rates from the given provider.
func NewConverter(rates RateProvider) *Converter {
	return &Converter{rates: rates}
}

// Convert returns amount expressed in to, using the rate valid at asOf.
// Identical currencies short-circuit without a lookup or rounding.
// Results are rounded half away from zero to whole minor units.
func (c *Converter) Convert(ctx context.Context, amount int64, from, to string, asOf time.Time) (int64, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return amount, nil
	}
	rate, err := c.rates.GetRate(ctx, from, to, asOf)
	if err != nil {
		if !errors.Is(err, models.ErrCurrencyConversionUnavailable) {
			err = fmt.Errorf("%w: %w", models.ErrCurrencyConversionUnavailable, err)
		}
		return 0, fmt.Errorf("failed to convert %s to %s: %w", from, to, err)
	}
	if !rate.IsPositive() {
		return 0, fmt.Errorf("%w: non-positive rate %s for %s/%s", models.ErrCurrencyConversionUnavailable, rate, from, to)
	}
	return Round(decimal.NewFromInt(amount).Mul(rate)), nil
}

// Round rounds to the nearest integer, halves away from zero.
// Every currency boundary and percentage in the ledger goes through it.
func Round(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
