package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/hostledger/internal/models"
)

const (
	contributor = "contributor"
	collective  = "collective"
	host        = "host"
	platform    = "platform"
)

// ledgerBuilder writes same-currency pairs the way the engine lays them out.
type ledgerBuilder struct {
	nextID  int64
	entries []*models.Entry
	hostOf  map[string]string
}

func newLedgerBuilder() *ledgerBuilder {
	return &ledgerBuilder{hostOf: map[string]string{
		collective: host,
		host:       host,
		platform:   platform,
	}}
}

func (b *ledgerBuilder) pair(group string, kind models.Kind, from, to string, amount, fee int64, status models.SettlementStatus, at int64) {
	b.nextID += 2
	credit := &models.Entry{
		ID: b.nextID - 1, GroupID: group, Kind: kind, Direction: models.Credit,
		Amount: amount, Currency: "USD", AmountInHostCurrency: amount, HostCurrency: "USD",
		PaymentProcessorFeeInHostCurrency: fee,
		NetAmountInAccountCurrency:        amount - fee, AccountCurrency: "USD",
		FromEntityID: from, ToEntityID: to, HostEntityID: b.hostOf[to],
		SettlementStatus: status, CounterpartEntryID: b.nextID, CreatedAt: at,
	}
	debit := &models.Entry{
		ID: b.nextID, GroupID: group, Kind: kind, Direction: models.Debit,
		Amount: amount, Currency: "USD", AmountInHostCurrency: amount, HostCurrency: "USD",
		NetAmountInAccountCurrency: amount, AccountCurrency: "USD",
		FromEntityID: from, ToEntityID: to, HostEntityID: b.hostOf[from],
		SettlementStatus: status, CounterpartEntryID: b.nextID - 1, CreatedAt: at,
	}
	b.entries = append(b.entries, credit, debit)
}

func (b *ledgerBuilder) settle() {
	for _, e := range b.entries {
		if e.Kind.IsDebt() && e.SettlementStatus == models.StatusOwed {
			e.SettlementStatus = models.StatusSettled
		}
	}
}

// contributionWithTip records 10000 total, 1000 tip on top, 5% host fee and
// a 15% host fee share.
func contributionWithTip(b *ledgerBuilder, at int64) {
	b.pair("g1", models.KindContribution, contributor, collective, 9000, 0, "", at)
	b.pair("g1", models.KindHostFee, collective, host, 450, 0, "", at)
	b.pair("g1", models.KindHostFeeShare, host, platform, 68, 0, "", at)
	b.pair("g1", models.KindHostFeeShareDebt, platform, host, 68, 0, models.StatusOwed, at)
	b.pair("g1", models.KindPlatformTip, contributor, platform, 1000, 0, "", at)
	b.pair("g1", models.KindPlatformTipDebt, platform, host, 1000, 0, models.StatusOwed, at)
}

func TestBalances_Unsettled(t *testing.T) {
	b := newLedgerBuilder()
	contributionWithTip(b, 100)

	require.NoError(t, ValidateLedger(b.entries))

	assert.Equal(t, int64(8550), Balance(b.entries, collective, 0))
	assert.Equal(t, int64(1450), Balance(b.entries, host, 0))
	assert.Equal(t, int64(0), Balance(b.entries, platform, 0))
	assert.Equal(t, int64(10000), TotalMoneyManaged(b.entries, host, 0))

	// Projected: tip and fee share leave once settled.
	assert.Equal(t, int64(382), BalanceWithBlockedFunds(b.entries, host, 0))
	assert.Equal(t, int64(8550), BalanceWithBlockedFunds(b.entries, collective, 0))

	owed, gathered := PendingDebt(b.entries, host, 101)
	assert.Equal(t, int64(1068), owed)
	assert.Len(t, gathered, 2)

	// Entries stamped exactly at the cutoff wait for the next period.
	owed, gathered = PendingDebt(b.entries, host, 100)
	assert.Zero(t, owed)
	assert.Empty(t, gathered)

	m := ComputeHostMetrics(b.entries, &models.Entity{ID: host, HostFeeSharePercent: 15}, 0)
	assert.Equal(t, HostMetrics{
		HostFees:            450,
		PlatformTips:        1000,
		PendingPlatformTips: 1000,
		HostFeeShare:        68,
		PendingHostFeeShare: 68,
		HostFeeSharePercent: 15,
		TotalMoneyManaged:   10000,
	}, m)
}

func TestBalances_Settled(t *testing.T) {
	b := newLedgerBuilder()
	contributionWithTip(b, 100)
	b.settle()
	b.pair("g2", models.KindSettlement, host, platform, 1068, 0, "", 200)

	require.NoError(t, ValidateLedger(b.entries))

	assert.Equal(t, int64(8550), Balance(b.entries, collective, 0))
	assert.Equal(t, int64(382), Balance(b.entries, host, 0))
	assert.Equal(t, int64(382), BalanceWithBlockedFunds(b.entries, host, 0))
	assert.Equal(t, int64(1068), Balance(b.entries, platform, 0))
	assert.Equal(t, int64(1068), BalanceWithBlockedFunds(b.entries, platform, 0))
	assert.Equal(t, int64(8932), TotalMoneyManaged(b.entries, host, 0))

	m := ComputeHostMetrics(b.entries, &models.Entity{ID: host, HostFeeSharePercent: 15}, 0)
	assert.Equal(t, m.PendingHostFeeShare+m.SettledHostFeeShare, m.HostFeeShare)
	assert.Equal(t, int64(68), m.SettledHostFeeShare)
	assert.Equal(t, int64(0), m.PendingPlatformTips)

	owed, gathered := PendingDebt(b.entries, host, 300)
	assert.Zero(t, owed)
	assert.Empty(t, gathered)
}

func TestBalances_AsOf(t *testing.T) {
	b := newLedgerBuilder()
	contributionWithTip(b, 100)
	b.settle()
	b.pair("g2", models.KindSettlement, host, platform, 1068, 0, "", 200)

	assert.Equal(t, int64(1450), Balance(b.entries, host, 150))
	assert.Equal(t, int64(0), Balance(b.entries, host, 50))
	assert.Equal(t, int64(10000), TotalMoneyManaged(b.entries, host, 199))
}

func TestTotalMoneyManaged_ProcessorFee(t *testing.T) {
	b := newLedgerBuilder()
	b.pair("g1", models.KindContribution, contributor, collective, 9000, 200, "", 1)
	b.pair("g1", models.KindHostFee, collective, host, 450, 0, "", 1)

	assert.Equal(t, int64(8350), Balance(b.entries, collective, 0))
	assert.Equal(t, int64(8800), TotalMoneyManaged(b.entries, host, 0))
}

func TestValidateLedger_Unbalanced(t *testing.T) {
	b := newLedgerBuilder()
	b.pair("g1", models.KindContribution, contributor, collective, 9000, 0, "", 1)
	b.entries[1].Amount = 8999

	require.ErrorIs(t, ValidateLedger(b.entries), models.ErrUnbalancedGroup)
}
