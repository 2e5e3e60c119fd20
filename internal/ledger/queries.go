package ledger

import (
	"context"
	"fmt"

	"github.com/mmynk/hostledger/internal/calculator"
	"github.com/mmynk/hostledger/internal/models"
	"github.com/mmynk/hostledger/internal/storage"
)

// Queries derives balances and metrics from stored entries. Nothing here is
// cached: every answer is a fold over a fresh snapshot.
type Queries struct {
	store storage.Reader
}

// NewQueries creates a Queries reading from r.
func NewQueries(r storage.Reader) *Queries {
	return &Queries{store: r}
}

// Balance is an entity's position in its own currency.
type Balance struct {
	EntityID string
	Currency string

	Balance                 int64
	BalanceWithBlockedFunds int64
}

// GetBalance returns the entity's balance as of asOf (zero means now).
func (q *Queries) GetBalance(ctx context.Context, entityID string, asOf int64) (*Balance, error) {
	entity, err := q.store.GetEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	entries, err := q.store.ListEntries(ctx, storage.EntryFilter{EntityID: entityID, AsOf: asOf})
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return &Balance{
		EntityID:                entity.ID,
		Currency:                entity.Currency,
		Balance:                 calculator.Balance(entries, entity.ID, asOf),
		BalanceWithBlockedFunds: calculator.BalanceWithBlockedFunds(entries, entity.ID, asOf),
	}, nil
}

// TotalMoneyManaged returns what the host holds for itself and its collectives.
func (q *Queries) TotalMoneyManaged(ctx context.Context, hostID string, asOf int64) (int64, error) {
	if _, err := q.host(ctx, hostID); err != nil {
		return 0, err
	}
	entries, err := q.store.ListEntries(ctx, storage.EntryFilter{HostEntityID: hostID, AsOf: asOf})
	if err != nil {
		return 0, fmt.Errorf("failed to list entries: %w", err)
	}
	return calculator.TotalMoneyManaged(entries, hostID, asOf), nil
}

// HostMetrics folds the host's fee and settlement position.
func (q *Queries) HostMetrics(ctx context.Context, hostID string, asOf int64) (*calculator.HostMetrics, error) {
	host, err := q.host(ctx, hostID)
	if err != nil {
		return nil, err
	}
	entries, err := q.store.ListEntries(ctx, storage.EntryFilter{HostEntityID: hostID, AsOf: asOf})
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	m := calculator.ComputeHostMetrics(entries, host, asOf)
	return &m, nil
}

// ValidateLedger re-checks the double-entry invariant over every entry.
func (q *Queries) ValidateLedger(ctx context.Context) error {
	entries, err := q.store.ListEntries(ctx, storage.EntryFilter{})
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}
	return calculator.ValidateLedger(entries)
}

func (q *Queries) host(ctx context.Context, hostID string) (*models.Entity, error) {
	host, err := q.store.GetEntity(ctx, hostID)
	if err != nil {
		return nil, err
	}
	if host.Role != models.RoleHost {
		return nil, fmt.Errorf("%w: %s is not a host", models.ErrInvalidRequest, hostID)
	}
	return host, nil
}
