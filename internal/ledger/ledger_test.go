package ledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/hostledger/internal/calculator"
	"github.com/mmynk/hostledger/internal/fx"
	"github.com/mmynk/hostledger/internal/models"
	"github.com/mmynk/hostledger/internal/storage"
	"github.com/mmynk/hostledger/internal/storage/sqlite"
)

var testRates = fx.StaticRates{
	"USD": {"EUR": 0.84},
	"EUR": {"USD": 1.19},
}

type fixture struct {
	t       *testing.T
	ctx     context.Context
	store   *sqlite.SQLiteStore
	engine  *Engine
	queries *Queries
	clock   atomic.Int64

	platform, host, collective, contributor *models.Entity
}

func newFixture(t *testing.T, hostCurrency string, hostFeePercent, hostFeeSharePercent float64) *fixture {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "hostledger-ledger-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	f := &fixture{t: t, ctx: context.Background(), store: store}
	f.clock.Store(1_700_000_000)
	f.platform = &models.Entity{Name: "Platform", Role: models.RolePlatform, Currency: "USD"}
	f.engine = NewEngine(store, fx.NewConverter(testRates), "", WithClock(f.now))
	f.register(f.platform)
	f.engine.platformID = f.platform.ID
	f.queries = NewQueries(store)

	f.host = f.register(&models.Entity{Name: "OSC", Role: models.RoleHost, Currency: hostCurrency, HostFeeSharePercent: hostFeeSharePercent})
	f.collective = f.register(&models.Entity{Name: "Babel", Role: models.RoleCollective, Currency: hostCurrency, HostID: f.host.ID, HostFeePercent: hostFeePercent})
	f.contributor = f.register(&models.Entity{Name: "Alice", Role: models.RoleContributor, Currency: hostCurrency})
	return f
}

func (f *fixture) now() time.Time {
	return time.Unix(f.clock.Add(1), 0)
}

func (f *fixture) register(e *models.Entity) *models.Entity {
	f.t.Helper()
	require.NoError(f.t, f.engine.RegisterEntity(f.ctx, e))
	return e
}

func (f *fixture) order(total, tip, processorFee int64, service string) *OrderResult {
	f.t.Helper()
	result, err := f.engine.ExecuteOrder(f.ctx, &models.Order{
		FromEntityID:                      f.contributor.ID,
		CollectiveID:                      f.collective.ID,
		TotalAmount:                       total,
		Currency:                          f.collective.Currency,
		IsFeesOnTop:                       tip > 0,
		PlatformTip:                       tip,
		PaymentProcessorFeeInHostCurrency: processorFee,
		PaymentMethod:                     models.PaymentMethod{Service: service, Type: models.TypeManual, Paid: true},
	})
	require.NoError(f.t, err)
	return result
}

func (f *fixture) balance(e *models.Entity) int64 {
	f.t.Helper()
	b, err := f.queries.GetBalance(f.ctx, e.ID, 0)
	require.NoError(f.t, err)
	return b.Balance
}

func (f *fixture) assertBalances(collective, host, platform int64) {
	f.t.Helper()
	assert.Equal(f.t, collective, f.balance(f.collective), "collective balance")
	assert.Equal(f.t, host, f.balance(f.host), "host balance")
	assert.Equal(f.t, platform, f.balance(f.platform), "platform balance")
	require.NoError(f.t, f.queries.ValidateLedger(f.ctx))
}

func contributionEntry(t *testing.T, result *OrderResult) *models.Entry {
	t.Helper()
	for _, p := range result.Group.Pairs {
		if p.Credit.Kind == models.KindContribution {
			return p.Credit
		}
	}
	t.Fatal("no contribution in group")
	return nil
}

func TestExecuteOrder_FeeSplits(t *testing.T) {
	tests := []struct {
		name           string
		hostFeePercent float64
		tip            int64
		service        string
		wantCollective int64
		wantHost       int64
		wantPlatform   int64
		wantPairs      int
	}{
		{
			name:           "no host fee",
			wantCollective: 10000,
			wantPairs:      1,
		},
		{
			name:           "five percent host fee",
			hostFeePercent: 5,
			wantCollective: 9500,
			wantHost:       500,
			wantPairs:      4,
		},
		{
			name:           "tip pooled by host",
			hostFeePercent: 5,
			tip:            1000,
			service:        models.ServiceOpenCollective,
			wantCollective: 8550,
			wantHost:       1450,
			wantPlatform:   0,
			wantPairs:      6,
		},
		{
			name:           "tip collected by platform",
			hostFeePercent: 5,
			tip:            1000,
			service:        models.ServiceStripe,
			wantCollective: 8550,
			wantHost:       450,
			wantPlatform:   1000,
			wantPairs:      5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			share := 15.0
			if tt.hostFeePercent == 0 {
				share = 0
			}
			f := newFixture(t, "USD", tt.hostFeePercent, share)

			result := f.order(10000, tt.tip, 0, tt.service)

			assert.Len(t, result.Group.Pairs, tt.wantPairs)
			f.assertBalances(tt.wantCollective, tt.wantHost, tt.wantPlatform)
			assert.Equal(t, int64(-10000), f.balance(f.contributor))
		})
	}
}

func TestExecuteOrder_HostMetricsBeforeSettlement(t *testing.T) {
	f := newFixture(t, "USD", 5, 15)
	result := f.order(10000, 1000, 0, models.ServiceOpenCollective)

	assert.Equal(t, int64(9000), result.Fees.NetAmount)
	assert.Equal(t, int64(450), result.Fees.HostFee)
	assert.Equal(t, int64(68), result.Fees.HostFeeShare)
	assert.Equal(t, int64(382), result.Fees.HostProfit)

	b, err := f.queries.GetBalance(f.ctx, f.host.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1450), b.Balance)
	assert.Equal(t, int64(382), b.BalanceWithBlockedFunds)

	m, err := f.queries.HostMetrics(f.ctx, f.host.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(450), m.HostFees)
	assert.Equal(t, int64(1000), m.PlatformTips)
	assert.Equal(t, int64(1000), m.PendingPlatformTips)
	assert.Equal(t, int64(68), m.HostFeeShare)
	assert.Equal(t, int64(68), m.PendingHostFeeShare)
	assert.Equal(t, int64(0), m.SettledHostFeeShare)
	assert.Equal(t, 15.0, m.HostFeeSharePercent)
	assert.Equal(t, int64(10000), m.TotalMoneyManaged)

	for _, p := range result.Group.Pairs {
		assert.NotZero(t, p.Credit.ID)
		assert.Equal(t, p.Debit.ID, p.Credit.CounterpartEntryID)
		assert.Equal(t, p.Credit.ID, p.Debit.CounterpartEntryID)
		if p.Credit.Kind.IsDebt() {
			assert.Equal(t, models.StatusOwed, p.Credit.SettlementStatus)
			assert.Equal(t, models.StatusOwed, p.Debit.SettlementStatus)
		}
	}
}

func TestExecuteOrder_ProcessorFee(t *testing.T) {
	f := newFixture(t, "USD", 5, 15)
	result := f.order(10000, 1000, 200, models.ServiceStripe)

	credit := contributionEntry(t, result)
	assert.Equal(t, int64(200), credit.PaymentProcessorFeeInHostCurrency)
	assert.Equal(t, int64(8800), credit.NetAmountInAccountCurrency)
	assert.Equal(t, int64(8350), f.balance(f.collective))

	tmm, err := f.queries.TotalMoneyManaged(f.ctx, f.host.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(8800), tmm)
}

func TestExecuteOrder_HostFeeOverride(t *testing.T) {
	f := newFixture(t, "USD", 5, 0)
	override := 10.0
	_, err := f.engine.ExecuteOrder(f.ctx, &models.Order{
		FromEntityID:   f.contributor.ID,
		CollectiveID:   f.collective.ID,
		TotalAmount:    10000,
		Currency:       "usd",
		HostFeePercent: &override,
		PaymentMethod:  models.PaymentMethod{Service: models.ServiceStripe, Paid: true},
	})
	require.NoError(t, err)
	f.assertBalances(9000, 1000, 0)
}

func TestExecuteOrder_Rejected(t *testing.T) {
	f := newFixture(t, "USD", 5, 15)
	badPercent := 120.0

	tests := []struct {
		name    string
		mutate  func(o *models.Order)
		wantErr error
	}{
		{"not paid", func(o *models.Order) { o.PaymentMethod.Paid = false }, models.ErrInsufficientAuthorization},
		{"tip above total", func(o *models.Order) { o.PlatformTip = 20000 }, models.ErrInvalidFeeConfiguration},
		{"host fee above 100", func(o *models.Order) { o.HostFeePercent = &badPercent }, models.ErrInvalidFeeConfiguration},
		{"zero total", func(o *models.Order) { o.TotalAmount = 0 }, models.ErrInvalidFeeConfiguration},
		{"unknown collective", func(o *models.Order) { o.CollectiveID = "missing" }, models.ErrEntityNotFound},
		{"no rate", func(o *models.Order) { o.Currency = "GBP" }, models.ErrCurrencyConversionUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &models.Order{
				FromEntityID:  f.contributor.ID,
				CollectiveID:  f.collective.ID,
				TotalAmount:   10000,
				Currency:      "USD",
				IsFeesOnTop:   true,
				PlatformTip:   1000,
				PaymentMethod: models.PaymentMethod{Service: models.ServiceOpenCollective, Paid: true},
			}
			tt.mutate(order)

			_, err := f.engine.ExecuteOrder(f.ctx, order)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}

	entries, err := f.store.ListEntries(f.ctx, storage.EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries, "failed orders must not write anything")
}

func TestExecuteOrder_Duplicate(t *testing.T) {
	f := newFixture(t, "USD", 5, 15)
	order := &models.Order{
		ID:            "order-1",
		FromEntityID:  f.contributor.ID,
		CollectiveID:  f.collective.ID,
		TotalAmount:   10000,
		Currency:      "USD",
		PaymentMethod: models.PaymentMethod{Service: models.ServiceStripe, Paid: true},
	}
	_, err := f.engine.ExecuteOrder(f.ctx, order)
	require.NoError(t, err)

	_, err = f.engine.ExecuteOrder(f.ctx, order)
	assert.ErrorIs(t, err, models.ErrDuplicateOrder)
	assert.Equal(t, int64(9500), f.balance(f.collective))
}

func TestExecuteOrder_MultiCurrency(t *testing.T) {
	f := newFixture(t, "EUR", 5, 15)
	result := f.order(10000, 1000, 0, models.ServiceOpenCollective)

	f.assertBalances(8550, 1450, 0)

	var tip *models.Entry
	for _, p := range result.Group.Pairs {
		if p.Credit.Kind == models.KindPlatformTip {
			tip = p.Credit
		}
	}
	require.NotNil(t, tip)
	assert.Equal(t, int64(1000), tip.Amount)
	assert.Equal(t, "EUR", tip.Currency)
	assert.Equal(t, int64(1190), tip.AmountInHostCurrency)
	assert.Equal(t, "USD", tip.HostCurrency)
	assert.Equal(t, int64(1190), tip.NetAmountInAccountCurrency)
}

func TestExecuteOrder_CrossHostPayer(t *testing.T) {
	f := newFixture(t, "USD", 5, 15)
	otherHost := f.register(&models.Entity{Name: "Other Host", Role: models.RoleHost, Currency: "USD", HostFeeSharePercent: 15})
	payer := f.register(&models.Entity{Name: "Webpack", Role: models.RoleCollective, Currency: "USD", HostID: otherHost.ID})

	_, err := f.engine.ExecuteOrder(f.ctx, &models.Order{
		FromEntityID:  f.contributor.ID,
		CollectiveID:  payer.ID,
		TotalAmount:   10000,
		Currency:      "USD",
		PaymentMethod: models.PaymentMethod{Service: models.ServiceStripe, Paid: true},
	})
	require.NoError(t, err)
	funded, err := f.queries.TotalMoneyManaged(f.ctx, otherHost.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), funded)

	// The money leaves the paying host's books in the same group it lands on
	// the receiving host's; no receivable is kept between the two hosts.
	_, err = f.engine.ExecuteOrder(f.ctx, &models.Order{
		FromEntityID:  payer.ID,
		CollectiveID:  f.collective.ID,
		TotalAmount:   10000,
		Currency:      "USD",
		IsFeesOnTop:   true,
		PlatformTip:   1000,
		PaymentMethod: models.PaymentMethod{Service: models.ServiceOpenCollective, Type: models.TypeCollective, Paid: true},
	})
	require.NoError(t, err)

	received, err := f.queries.HostMetrics(f.ctx, f.host.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), received.PendingPlatformTips)
	assert.Equal(t, int64(10000), received.TotalMoneyManaged)

	paying, err := f.queries.HostMetrics(f.ctx, otherHost.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), paying.PendingPlatformTips)
	assert.Equal(t, int64(0), paying.TotalMoneyManaged)

	assert.Equal(t, int64(0), f.balance(payer))
	assert.Equal(t, int64(0), f.balance(otherHost))
	f.assertBalances(8550, 1450, 0)
}

func TestExecuteExpense(t *testing.T) {
	f := newFixture(t, "USD", 0, 0)
	payee := f.register(&models.Entity{Name: "Bob", Role: models.RoleContributor, Currency: "EUR"})
	f.order(10000, 0, 0, models.ServiceStripe)

	group, err := f.engine.ExecuteExpense(f.ctx, &models.Expense{
		CollectiveID: f.collective.ID,
		PayeeID:      payee.ID,
		Amount:       4000,
		Description:  "Conference travel",
	})
	require.NoError(t, err)
	require.Len(t, group.Pairs, 1)
	assert.Equal(t, int64(3360), group.Pairs[0].Credit.NetAmountInAccountCurrency)

	assert.Equal(t, int64(6000), f.balance(f.collective))
	assert.Equal(t, int64(3360), f.balance(payee))

	_, err = f.engine.ExecuteExpense(f.ctx, &models.Expense{
		CollectiveID: f.collective.ID,
		PayeeID:      payee.ID,
		Amount:       6001,
	})
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)
	assert.Equal(t, int64(6000), f.balance(f.collective))
}

func TestRegisterEntity(t *testing.T) {
	f := newFixture(t, "USD", 0, 0)

	assert.Equal(t, f.host.ID, f.host.HostID)
	assert.Equal(t, f.platform.ID, f.platform.HostID)
	assert.Empty(t, f.contributor.HostID)

	tests := []struct {
		name   string
		entity *models.Entity
	}{
		{"unknown role", &models.Entity{Name: "X", Role: "BANK", Currency: "USD"}},
		{"bad currency", &models.Entity{Name: "X", Role: models.RoleContributor, Currency: "dollars"}},
		{"collective without host", &models.Entity{Name: "X", Role: models.RoleCollective, Currency: "USD"}},
		{"collective hosted by contributor", &models.Entity{Name: "X", Role: models.RoleCollective, Currency: "USD", HostID: f.contributor.ID}},
		{"missing name", &models.Entity{Role: models.RoleContributor, Currency: "USD"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.engine.RegisterEntity(f.ctx, tt.entity)
			assert.ErrorIs(t, err, models.ErrInvalidRequest)
		})
	}

	err := f.engine.RegisterEntity(f.ctx, &models.Entity{Name: "X", Role: models.RoleCollective, Currency: "USD", HostID: "missing"})
	assert.ErrorIs(t, err, models.ErrEntityNotFound)
}

func TestQueries_AsOf(t *testing.T) {
	f := newFixture(t, "USD", 5, 15)
	f.order(10000, 0, 0, models.ServiceStripe)
	between := f.clock.Load()
	f.order(10000, 0, 0, models.ServiceStripe)

	b, err := f.queries.GetBalance(f.ctx, f.collective.ID, between)
	require.NoError(t, err)
	assert.Equal(t, int64(9500), b.Balance)
	assert.Equal(t, int64(19000), f.balance(f.collective))

	_, err = f.queries.HostMetrics(f.ctx, f.collective.ID, 0)
	assert.ErrorIs(t, err, models.ErrInvalidRequest)
	_, err = f.queries.GetBalance(f.ctx, "missing", 0)
	assert.ErrorIs(t, err, models.ErrEntityNotFound)
}

func TestValidateLedger_DetectsImbalance(t *testing.T) {
	f := newFixture(t, "USD", 5, 15)
	f.order(10000, 1000, 0, models.ServiceOpenCollective)
	require.NoError(t, f.queries.ValidateLedger(f.ctx))

	entries, err := f.store.ListEntries(f.ctx, storage.EntryFilter{})
	require.NoError(t, err)
	entries[0].Amount++
	assert.ErrorIs(t, calculator.ValidateLedger(entries), models.ErrUnbalancedGroup)
}

func TestConcurrentOrders(t *testing.T) {
	f := newFixture(t, "USD", 5, 15)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.ExecuteOrder(f.ctx, &models.Order{
				FromEntityID:  f.contributor.ID,
				CollectiveID:  f.collective.ID,
				TotalAmount:   1000,
				Currency:      "USD",
				PaymentMethod: models.PaymentMethod{Service: models.ServiceStripe, Paid: true},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, int64(9500), f.balance(f.collective))
	require.NoError(t, f.queries.ValidateLedger(f.ctx))
}
