package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/hostledger/internal/calculator"
	"github.com/mmynk/hostledger/internal/events"
	"github.com/mmynk/hostledger/internal/metrics"
	"github.com/mmynk/hostledger/internal/models"
	"github.com/mmynk/hostledger/internal/storage"
)

// OrderResult is what ExecuteOrder recorded.
type OrderResult struct {
	Group *models.Group
	Fees  calculator.Fees
}

// ExecuteOrder records a paid contribution and the fees, tips and debts it
// gives rise to as one group:
//
//	CONTRIBUTION        payer      -> collective  net amount, carries the processor fee
//	HOST_FEE            collective -> host        when the host fee is positive
//	HOST_FEE_SHARE      host       -> platform    when the host fee share is positive
//	HOST_FEE_SHARE_DEBT platform   -> host        OWED, same amount
//	PLATFORM_TIP        payer      -> platform    when a tip is paid on top
//	PLATFORM_TIP_DEBT   platform   -> host        OWED, when the tip lands in the host's account
//
// Nothing is written if any conversion or validation fails.
func (e *Engine) ExecuteOrder(ctx context.Context, order *models.Order) (result *OrderResult, err error) {
	start := time.Now()
	defer func() { metrics.Observe("execute_order", start, err) }()

	if !order.PaymentMethod.Paid {
		return nil, fmt.Errorf("%w: order %s", models.ErrInsufficientAuthorization, order.ID)
	}
	if order.TotalAmount <= 0 {
		return nil, fmt.Errorf("%w: total amount must be positive", models.ErrInvalidFeeConfiguration)
	}
	if order.PaymentProcessorFeeInHostCurrency < 0 {
		return nil, fmt.Errorf("%w: negative processor fee", models.ErrInvalidFeeConfiguration)
	}
	order.Currency = strings.ToUpper(order.Currency)
	if !currencyCode.MatchString(order.Currency) {
		return nil, fmt.Errorf("%w: invalid currency %q", models.ErrInvalidRequest, order.Currency)
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.CreatedAt == 0 {
		order.CreatedAt = e.now().Unix()
	}

	parties, err := LoadParties(ctx, e.store, order.FromEntityID, order.CollectiveID, e.platformID)
	if err != nil {
		return nil, err
	}
	payer := parties[order.FromEntityID]
	collective := parties[order.CollectiveID]
	platform := parties[e.platformID]
	if collective.Role != models.RoleCollective || !collective.IsHosted() {
		return nil, fmt.Errorf("%w: %s is not a hosted collective", models.ErrInvalidRequest, collective.ID)
	}
	if platform.Role != models.RolePlatform {
		return nil, fmt.Errorf("%w: %s is not the platform", models.ErrInvalidRequest, platform.ID)
	}
	host := parties[collective.HostID]
	asOf := time.Unix(order.CreatedAt, 0).UTC()

	hostFeePercent := collective.HostFeePercent
	if order.HostFeePercent != nil {
		hostFeePercent = *order.HostFeePercent
	}
	fees, err := calculator.ComputeFees(calculator.FeeInput{
		TotalAmount:         order.TotalAmount,
		PlatformTip:         order.PlatformTip,
		IsFeesOnTop:         order.IsFeesOnTop,
		HostFeePercent:      hostFeePercent,
		HostFeeSharePercent: host.HostFeeSharePercent,
	}, func(amount int64) (int64, error) {
		return e.conv.Convert(ctx, amount, order.Currency, host.Currency, asOf)
	})
	if err != nil {
		return nil, err
	}

	b := NewBuilder(e.conv, parties, asOf, models.Entry{
		OrderID:     order.ID,
		Description: order.Description,
		CreatedAt:   order.CreatedAt,
	})
	legs := []Leg{{
		Kind: models.KindContribution, From: payer.ID, To: collective.ID,
		Amount: fees.NetAmount, Currency: order.Currency,
		ProcessorFee: order.PaymentProcessorFeeInHostCurrency,
	}, {
		Kind: models.KindHostFee, From: collective.ID, To: host.ID,
		Amount: fees.HostFee, Currency: host.Currency,
	}, {
		Kind: models.KindHostFeeShare, From: host.ID, To: platform.ID,
		Amount: fees.HostFeeShare, Currency: host.Currency,
	}, {
		Kind: models.KindHostFeeShareDebt, From: platform.ID, To: host.ID,
		Amount: fees.HostFeeShare, Currency: host.Currency, Status: models.StatusOwed,
	}, {
		Kind: models.KindPlatformTip, From: payer.ID, To: platform.ID,
		Amount: fees.PlatformTip, Currency: order.Currency,
	}}
	if order.PaymentMethod.RoutesTipThroughHost() {
		legs = append(legs, Leg{
			Kind: models.KindPlatformTipDebt, From: platform.ID, To: host.ID,
			Amount: fees.PlatformTip, Currency: order.Currency, Status: models.StatusOwed,
		})
	}
	for _, leg := range legs {
		if _, err := b.Add(ctx, leg); err != nil {
			return nil, err
		}
	}

	group := b.Group()
	err = e.commit(ctx, group, func(tx storage.Tx) error {
		existing, err := tx.ListEntries(ctx, storage.EntryFilter{OrderID: order.ID, Limit: 1})
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return fmt.Errorf("%w: %s", models.ErrDuplicateOrder, order.ID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record order %s: %w", order.ID, err)
	}

	slog.Info("Order recorded",
		"order_id", order.ID,
		"group_id", group.ID,
		"collective_id", collective.ID,
		"amount", fees.NetAmount,
		"currency", order.Currency,
		"host_fee", fees.HostFee,
		"host_fee_share", fees.HostFeeShare,
		"platform_tip", fees.PlatformTip,
	)
	e.publish(ctx, events.Event{
		Type:     events.TypeContributionRecorded,
		GroupID:  group.ID,
		EntityID: collective.ID,
		OrderID:  order.ID,
		Amount:   fees.NetAmount,
		Currency: order.Currency,
	})

	return &OrderResult{Group: group, Fees: fees}, nil
}
