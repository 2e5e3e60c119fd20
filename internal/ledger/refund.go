package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/mmynk/hostledger/internal/calculator"
	"github.com/mmynk/hostledger/internal/events"
	"github.com/mmynk/hostledger/internal/metrics"
	"github.com/mmynk/hostledger/internal/models"
	"github.com/mmynk/hostledger/internal/storage"
)

// RefundRequest describes a full or partial reversal of a contribution.
type RefundRequest struct {
	// EntryID is the collective's CONTRIBUTION credit.
	EntryID int64

	// Amount is in the contribution's currency. Zero refunds whatever remains.
	Amount int64

	// RefundedProcessorFee is the part of the processor fee the processor
	// gave back, in host currency. The host absorbs the rest.
	RefundedProcessorFee int64

	// Kind defaults to models.RefundKindRefund.
	Kind     models.RefundKind
	Metadata map[string]string
}

// RefundResult is what CreateRefundTransaction recorded.
type RefundResult struct {
	Group *models.Group

	// Amount is the contribution amount reversed by this refund.
	Amount int64

	// Final is set when the contribution is now fully refunded.
	Final bool
}

// refunded sums what earlier refunds reversed on one side of a pair.
type refunded struct {
	amount, inHost, net, fee int64
}

type sideKey struct {
	kind  models.Kind
	owner string
	dir   models.Direction
}

// CreateRefundTransaction reverses every pair of the contribution's group in
// proportion to the refunded amount. The refund that exhausts the
// contribution reverses exact remainders. Reversed debts are always OWED,
// so a debt that was already settled turns into a negative pending amount
// for the next settlement run rather than a clawback.
//
// The original entry is locked for the duration so concurrent refunds of the
// same contribution cannot exceed it.
func (e *Engine) CreateRefundTransaction(ctx context.Context, req RefundRequest) (result *RefundResult, err error) {
	start := time.Now()
	defer func() { metrics.Observe("refund", start, err) }()

	if req.Kind == "" {
		req.Kind = models.RefundKindRefund
	}
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown refund kind %q", models.ErrInvalidRequest, req.Kind)
	}
	if req.RefundedProcessorFee < 0 {
		return nil, fmt.Errorf("%w: negative refunded processor fee", models.ErrInvalidFeeConfiguration)
	}

	var (
		target *models.Entry
		group  *models.Group
		share  calculator.Share
	)
	err = e.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		target, err = tx.LockEntry(ctx, req.EntryID)
		if err != nil {
			return err
		}
		if target.Direction != models.Credit || target.IsRefund || target.Kind != models.KindContribution {
			return fmt.Errorf("%w: entry %d is a %s %s", models.ErrNotRefundable, target.ID, target.Kind, target.Direction)
		}

		original, err := tx.ListEntries(ctx, storage.EntryFilter{GroupID: target.GroupID})
		if err != nil {
			return err
		}
		prior, err := tx.ListEntries(ctx, storage.EntryFilter{RefundOfGroupID: target.GroupID})
		if err != nil {
			return err
		}

		group, share, err = e.buildRefund(ctx, tx, req, target, original, prior)
		if err != nil {
			return err
		}
		return tx.InsertGroup(ctx, group)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to refund entry %d: %w", req.EntryID, err)
	}
	recordEntries(group)

	slog.Info("Refund recorded",
		"entry_id", target.ID,
		"group_id", group.ID,
		"refund_of", target.GroupID,
		"amount", share.Amount,
		"final", share.Final,
		"kind", req.Kind,
	)

	metadata := maps.Clone(req.Metadata)
	if metadata == nil {
		metadata = make(map[string]string, 1)
	}
	metadata["refund_kind"] = string(req.Kind)
	e.publish(ctx, events.Event{
		Type:     events.TypeRefundRecorded,
		GroupID:  group.ID,
		EntityID: target.ToEntityID,
		OrderID:  target.OrderID,
		Amount:   share.Amount,
		Currency: target.Currency,
		Metadata: metadata,
	})

	return &RefundResult{Group: group, Amount: share.Amount, Final: share.Final}, nil
}

func (e *Engine) buildRefund(ctx context.Context, r storage.Reader, req RefundRequest, target *models.Entry, original, prior []*models.Entry) (*models.Group, calculator.Share, error) {
	done := make(map[sideKey]refunded)
	for _, p := range prior {
		k := sideKey{p.Kind, p.Owner(), p.Direction}
		d := done[k]
		d.amount += p.Amount
		d.inHost += p.AmountInHostCurrency
		d.net += p.NetAmountInAccountCurrency
		d.fee += p.PaymentProcessorFeeInHostCurrency
		done[k] = d
	}

	collectiveID, hostID := target.ToEntityID, target.HostEntityID
	mainKey := sideKey{models.KindContribution, collectiveID, models.Debit}
	absorbedKey := sideKey{models.KindPaymentProcessorFee, collectiveID, models.Credit}

	// The collective's reversal debits also paid back the processor fees the
	// host absorbed; only the rest reverses the original net.
	main := done[mainKey]
	main.net -= done[absorbedKey].net
	done[mainKey] = main

	share, err := calculator.NewShare(req.Amount, target.Amount, main.amount)
	if err != nil {
		return nil, share, err
	}

	fee := target.PaymentProcessorFeeInHostCurrency
	feePart := share.Of(fee, fee-main.fee-done[absorbedKey].amount)
	if req.RefundedProcessorFee > feePart {
		return nil, share, fmt.Errorf("%w: refunded processor fee %d exceeds the %d charged on this part",
			models.ErrInvalidFeeConfiguration, req.RefundedProcessorFee, feePart)
	}
	absorbed := feePart - req.RefundedProcessorFee

	ids := []string{collectiveID}
	byID := make(map[int64]*models.Entry, len(original))
	for _, o := range original {
		byID[o.ID] = o
		ids = append(ids, o.FromEntityID, o.ToEntityID)
	}
	parties, err := LoadParties(ctx, r, ids...)
	if err != nil {
		return nil, share, err
	}

	// Conversions reuse the original date so the reversal mirrors it.
	b := NewBuilder(e.conv, parties, time.Unix(target.CreatedAt, 0).UTC(), models.Entry{
		OrderID:         target.OrderID,
		Description:     fmt.Sprintf("Refund (%s) of order %s", req.Kind, target.OrderID),
		IsRefund:        true,
		RefundOfGroupID: target.GroupID,
		CreatedAt:       e.now().Unix(),
	})

	var mainDebit *models.Entry
	for _, credit := range original {
		if credit.Direction != models.Credit {
			continue
		}
		debit, ok := byID[credit.CounterpartEntryID]
		if !ok {
			return nil, share, fmt.Errorf("%w: entry %d has no counterpart", models.ErrUnbalancedGroup, credit.ID)
		}

		// The receiver of the original pays it back.
		reversedCredit := reverse(b, debit, share, done)
		reversedDebit := reverse(b, credit, share, done)
		if reversedCredit.Amount == 0 {
			continue
		}
		if credit.ID == target.ID {
			reversedDebit.PaymentProcessorFeeInHostCurrency = req.RefundedProcessorFee
			mainDebit = reversedDebit
		}
		b.Append(models.Pair{Credit: reversedCredit, Debit: reversedDebit})
	}
	if mainDebit == nil {
		return nil, share, fmt.Errorf("%w: contribution %d is missing from its group", models.ErrUnbalancedGroup, target.ID)
	}

	if absorbed > 0 {
		host, ok := parties[hostID]
		if !ok {
			return nil, share, fmt.Errorf("%w: host %s", models.ErrEntityNotFound, hostID)
		}
		p, err := b.Add(ctx, Leg{
			Kind:     models.KindPaymentProcessorFee,
			From:     hostID,
			To:       collectiveID,
			Amount:   absorbed,
			Currency: host.Currency,
		})
		if err != nil {
			return nil, share, err
		}
		mainDebit.NetAmountInAccountCurrency += p.Credit.NetAmountInAccountCurrency
	}

	return b.Group(), share, nil
}

// reverse builds the opposite side of o for share of its amounts, given what
// earlier refunds already reversed. Owner and currencies are preserved.
func reverse(b *Builder, o *models.Entry, share calculator.Share, done map[sideKey]refunded) *models.Entry {
	d := done[sideKey{o.Kind, o.Owner(), o.Direction.Opposite()}]

	r := b.Entry()
	r.Kind = o.Kind
	r.Direction = o.Direction.Opposite()
	r.FromEntityID, r.ToEntityID = o.ToEntityID, o.FromEntityID
	r.Amount = share.Of(o.Amount, o.Amount-d.amount)
	r.Currency = o.Currency
	r.AmountInHostCurrency = share.Of(o.AmountInHostCurrency, o.AmountInHostCurrency-d.inHost)
	r.HostCurrency = o.HostCurrency
	r.NetAmountInAccountCurrency = share.Of(o.NetAmountInAccountCurrency, o.NetAmountInAccountCurrency-d.net)
	r.AccountCurrency = o.AccountCurrency
	r.HostEntityID = o.HostEntityID
	if o.Kind.IsDebt() {
		r.SettlementStatus = models.StatusOwed
	}
	return &r
}
