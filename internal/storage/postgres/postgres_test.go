package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/hostledger/internal/models"
	"github.com/mmynk/hostledger/internal/storage"
)

// newTestStore connects to HOSTLEDGER_TEST_DATABASE_URL or skips.
func newTestStore(t *testing.T) *PostgresStore {
	t.Helper()
	url := os.Getenv("HOSTLEDGER_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("HOSTLEDGER_TEST_DATABASE_URL not set")
	}
	store, err := New(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func debtPair(group, from, to string, amount int64) models.Pair {
	mk := func(dir models.Direction) *models.Entry {
		return &models.Entry{
			GroupID: group, Kind: models.KindPlatformTipDebt, Direction: dir,
			Amount: amount, Currency: "EUR",
			AmountInHostCurrency: amount, HostCurrency: "EUR",
			NetAmountInAccountCurrency: amount, AccountCurrency: "EUR",
			FromEntityID: from, ToEntityID: to, HostEntityID: to,
			SettlementStatus: models.StatusOwed,
		}
	}
	return models.Pair{Credit: mk(models.Credit), Debit: mk(models.Debit)}
}

func TestPostgresStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	platform := &models.Entity{Name: "Platform", Role: models.RolePlatform, Currency: "USD"}
	host := &models.Entity{Name: "Host " + uuid.NewString(), Role: models.RoleHost, Currency: "EUR"}
	require.NoError(t, store.CreateEntity(ctx, platform))
	require.NoError(t, store.CreateEntity(ctx, host))

	got, err := store.GetEntity(ctx, host.ID)
	require.NoError(t, err)
	assert.Equal(t, host, got)

	_, err = store.GetEntity(ctx, uuid.NewString())
	assert.True(t, errors.Is(err, models.ErrEntityNotFound))

	groupID := uuid.NewString()
	pair := debtPair(groupID, platform.ID, host.ID, 1000)
	req := &models.SettlementRequest{
		HostID: host.ID, PlatformID: platform.ID, Amount: 1000, Currency: "EUR",
		Status: models.SettlementPending, CutoffDate: 1,
	}

	err = store.WithTx(ctx, func(tx storage.Tx) error {
		if err := tx.InsertGroup(ctx, &models.Group{ID: groupID, Pairs: []models.Pair{pair}}); err != nil {
			return err
		}
		locked, err := tx.LockEntry(ctx, pair.Credit.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, pair.Debit.ID, locked.CounterpartEntryID)

		n, err := tx.UpdateSettlementStatus(ctx, []int64{pair.Credit.ID, pair.Debit.ID}, models.StatusOwed, models.StatusInvoiced)
		if err != nil {
			return err
		}
		assert.Equal(t, int64(2), n)

		req.EntryIDs = []int64{pair.Credit.ID}
		return tx.CreateSettlementRequest(ctx, req)
	})
	require.NoError(t, err)

	entries, err := store.ListEntries(ctx, storage.EntryFilter{GroupID: groupID})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.NoError(t, models.ValidateEntries(entries))
	assert.Equal(t, models.StatusInvoiced, entries[0].SettlementStatus)

	stored, err := store.GetSettlementRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{pair.Credit.ID}, stored.EntryIDs)

	stored.Status = models.SettlementApproved
	err = store.WithTx(ctx, func(tx storage.Tx) error {
		return tx.UpdateSettlementRequest(ctx, stored, models.SettlementPending)
	})
	require.NoError(t, err)

	err = store.WithTx(ctx, func(tx storage.Tx) error {
		return tx.UpdateSettlementRequest(ctx, stored, models.SettlementPending)
	})
	assert.True(t, errors.Is(err, models.ErrSettlementConflict))
}
