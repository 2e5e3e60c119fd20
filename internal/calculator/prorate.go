package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/hostledger/internal/fx"
	"github.com/mmynk/hostledger/internal/models"
)

// Share is the portion of an original amount a partial operation covers.
type Share struct {
	// Amount is the part being processed now; Total is the original amount.
	Amount int64
	Total  int64

	// Final marks the share that exhausts the original. Final shares use exact
	// remaining amounts so rounding never leaves a residue.
	Final bool
}

// NewShare describes refunding amount out of total when already has been
// refunded. amount == 0 means everything that remains.
func NewShare(amount, total, already int64) (Share, error) {
	remaining := total - already
	if remaining <= 0 {
		return Share{}, fmt.Errorf("%w: nothing left to refund", models.ErrOverRefund)
	}
	if amount == 0 {
		amount = remaining
	}
	if amount < 0 {
		return Share{}, fmt.Errorf("%w: refund amount %d is negative", models.ErrOverRefund, amount)
	}
	if amount > remaining {
		return Share{}, fmt.Errorf("%w: %d requested, %d remaining", models.ErrOverRefund, amount, remaining)
	}
	return Share{Amount: amount, Total: total, Final: amount == remaining}, nil
}

// Of applies the share to a component of the original. When the share is
// final the caller-supplied remainder is returned untouched.
//
//	part = round(value * amount / total)
func (s Share) Of(value, remainder int64) int64 {
	if s.Final {
		return remainder
	}
	if s.Total == 0 {
		return 0
	}
	ratio := decimal.NewFromInt(s.Amount).Div(decimal.NewFromInt(s.Total))
	part := fx.Round(decimal.NewFromInt(value).Mul(ratio))
	if part > remainder {
		part = remainder
	}
	return part
}
