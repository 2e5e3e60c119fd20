// Package calculator holds the pure arithmetic of the ledger: fee
// derivation, proportional refunds and folds over entry snapshots.
package calculator

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/mmynk/hostledger/internal/fx"
	"github.com/mmynk/hostledger/internal/models"
)

// FeeInput carries the order amounts and host configuration fees are derived from.
type FeeInput struct {
	// TotalAmount is what the payer was charged, in order currency.
	TotalAmount int64

	// PlatformTip only counts when IsFeesOnTop is set.
	PlatformTip int64
	IsFeesOnTop bool

	HostFeePercent      float64
	HostFeeSharePercent float64
}

// Fees is the breakdown of one contribution.
type Fees struct {
	// Order currency.
	PlatformTip int64
	NetAmount   int64

	// Host currency.
	NetAmountInHostCurrency int64
	HostFee                 int64
	HostFeeShare            int64
	HostProfit              int64
}

// ToHostCurrency converts an order-currency amount into the host's currency.
type ToHostCurrency func(amount int64) (int64, error)

// ComputeFees derives tip, host fee and host fee share for an order.
//
//	net          = total - tip
//	hostFee      = round(net_in_host * hostFeePercent / 100)
//	hostFeeShare = round(hostFee * hostFeeSharePercent / 100)
//
// A nil toHost means order and host share a currency.
func ComputeFees(in FeeInput, toHost ToHostCurrency) (Fees, error) {
	if err := ValidatePercent("host fee percent", in.HostFeePercent); err != nil {
		return Fees{}, err
	}
	if err := ValidatePercent("host fee share percent", in.HostFeeSharePercent); err != nil {
		return Fees{}, err
	}
	if in.TotalAmount < 0 || in.PlatformTip < 0 {
		return Fees{}, fmt.Errorf("%w: amounts must not be negative", models.ErrInvalidFeeConfiguration)
	}

	var fees Fees
	if in.IsFeesOnTop {
		fees.PlatformTip = in.PlatformTip
	}
	if fees.PlatformTip > in.TotalAmount {
		return Fees{}, fmt.Errorf("%w: platform tip %d exceeds total %d",
			models.ErrInvalidFeeConfiguration, fees.PlatformTip, in.TotalAmount)
	}
	fees.NetAmount = in.TotalAmount - fees.PlatformTip

	fees.NetAmountInHostCurrency = fees.NetAmount
	if toHost != nil {
		converted, err := toHost(fees.NetAmount)
		if err != nil {
			return Fees{}, err
		}
		fees.NetAmountInHostCurrency = converted
	}

	fees.HostFee = Percent(fees.NetAmountInHostCurrency, in.HostFeePercent)
	fees.HostFeeShare = Percent(fees.HostFee, in.HostFeeSharePercent)
	fees.HostProfit = fees.HostFee - fees.HostFeeShare
	return fees, nil
}

// ValidatePercent rejects percentages outside [0,100].
func ValidatePercent(name string, p float64) error {
	if math.IsNaN(p) || p < 0 || p > 100 {
		return fmt.Errorf("%w: %s %v is outside [0,100]", models.ErrInvalidFeeConfiguration, name, p)
	}
	return nil
}

// Percent returns round(amount * pct / 100).
func Percent(amount int64, pct float64) int64 {
	return fx.Round(decimal.NewFromInt(amount).Mul(decimal.NewFromFloat(pct)).Div(decimal.NewFromInt(100)))
}
