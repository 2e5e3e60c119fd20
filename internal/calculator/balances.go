package calculator

import "github.com/mmynk/hostledger/internal/models"

// HostMetrics aggregates a host's fee and settlement position, in the host's
// currency. Pending amounts are OWED or INVOICED, settled amounts are
// SETTLED, and the unprefixed totals cover both.
type HostMetrics struct {
	HostFees int64

	// PlatformFees and PendingPlatformFees are kept for API compatibility.
	// No entry kind produces platform fees, so both always fold to zero.
	PlatformFees        int64
	PendingPlatformFees int64

	PlatformTips        int64
	PendingPlatformTips int64

	HostFeeShare        int64
	PendingHostFeeShare int64
	SettledHostFeeShare int64
	HostFeeSharePercent float64

	TotalMoneyManaged int64
}

// visible reports whether e existed at asOf. Zero means no bound.
func visible(e *models.Entry, asOf int64) bool {
	return asOf == 0 || e.CreatedAt <= asOf
}

// Balance returns the entity's balance in its own currency: the signed net
// amount of every entry on its books.
func Balance(entries []*models.Entry, entityID string, asOf int64) int64 {
	var balance int64
	for _, e := range entries {
		if visible(e, asOf) && e.Owner() == entityID {
			balance += e.SignedNetAmount()
		}
	}
	return balance
}

// BalanceWithBlockedFunds returns the balance the entity would have once
// every debt entry still OWED or INVOICED on its books has settled, i.e.
// with the amounts it owes (or is owed) through settlement taken out.
// It equals Balance when nothing is pending.
func BalanceWithBlockedFunds(entries []*models.Entry, entityID string, asOf int64) int64 {
	balance := Balance(entries, entityID, asOf)
	for _, e := range entries {
		if !visible(e, asOf) || e.Owner() != entityID {
			continue
		}
		if e.Kind.IsDebt() && e.SettlementStatus.IsPending() {
			balance -= e.SignedNetAmount()
		}
	}
	return balance
}

// TotalMoneyManaged returns what the host holds on behalf of itself and its
// collectives, net of processor fees and of anything already paid out.
func TotalMoneyManaged(entries []*models.Entry, hostID string, asOf int64) int64 {
	var total int64
	for _, e := range entries {
		if visible(e, asOf) && e.HostEntityID == hostID {
			total += e.SignedNetAmountInHostCurrency()
		}
	}
	return total
}

// ComputeHostMetrics folds the host's own entries into a HostMetrics.
// entries must contain at least every entry attributed to the host.
func ComputeHostMetrics(entries []*models.Entry, host *models.Entity, asOf int64) HostMetrics {
	m := HostMetrics{
		HostFeeSharePercent: host.HostFeeSharePercent,
		TotalMoneyManaged:   TotalMoneyManaged(entries, host.ID, asOf),
	}

	for _, e := range entries {
		if !visible(e, asOf) || e.Owner() != host.ID {
			continue
		}
		amount := e.Direction.Sign() * e.AmountInHostCurrency

		switch e.Kind {
		case models.KindHostFee:
			m.HostFees += amount
		case models.KindPlatformTipDebt:
			m.PlatformTips += amount
			if e.SettlementStatus.IsPending() {
				m.PendingPlatformTips += amount
			}
		case models.KindHostFeeShareDebt:
			m.HostFeeShare += amount
			switch {
			case e.SettlementStatus.IsPending():
				m.PendingHostFeeShare += amount
			case e.SettlementStatus == models.StatusSettled:
				m.SettledHostFeeShare += amount
			}
		}
	}
	return m
}

// PendingDebt returns the net amount, in host currency, of debt entries on
// the host's books that are still OWED and were created strictly before
// cutoff. A positive result is owed to the platform.
func PendingDebt(entries []*models.Entry, hostID string, cutoff int64) (int64, []*models.Entry) {
	var net int64
	var gathered []*models.Entry
	for _, e := range entries {
		if e.CreatedAt >= cutoff || e.Owner() != hostID {
			continue
		}
		if e.Kind.IsDebt() && e.SettlementStatus == models.StatusOwed {
			net += e.Direction.Sign() * e.AmountInHostCurrency
			gathered = append(gathered, e)
		}
	}
	return net, gathered
}

// ValidateLedger re-checks the double-entry invariant over a snapshot.
func ValidateLedger(entries []*models.Entry) error {
	return models.ValidateEntries(entries)
}
