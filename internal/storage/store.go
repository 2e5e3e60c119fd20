// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/hostledger/internal/models"
)

// Reader is the read side shared by stores and open transactions.
type Reader interface {
	// GetEntity retrieves an entity by its ID.
	// Returns models.ErrEntityNotFound if it does not exist.
	GetEntity(ctx context.Context, id string) (*models.Entity, error)

	// ListEntities returns entities with the given role, or all when role is empty.
	ListEntities(ctx context.Context, role models.Role) ([]*models.Entity, error)

	// ListEntries returns entries matching the filter ordered by ID.
	ListEntries(ctx context.Context, filter EntryFilter) ([]*models.Entry, error)

	// GetSettlementRequest retrieves a settlement request with its entry IDs.
	// Returns models.ErrSettlementNotFound if it does not exist.
	GetSettlementRequest(ctx context.Context, id string) (*models.SettlementRequest, error)

	// ListSettlementRequests returns a host's settlement requests, newest
	// first, or every request when hostID is empty.
	ListSettlementRequests(ctx context.Context, hostID string) ([]*models.SettlementRequest, error)
}

// Tx is a unit of work. Writes only happen through a Tx so that an entry
// group is either fully visible or absent.
type Tx interface {
	Reader

	// LockEntry retrieves an entry and holds it until the transaction ends.
	// Returns models.ErrTransactionNotFound if it does not exist.
	LockEntry(ctx context.Context, id int64) (*models.Entry, error)

	// InsertGroup appends every entry of the group, assigns IDs and links
	// each pair through CounterpartEntryID.
	InsertGroup(ctx context.Context, group *models.Group) error

	// UpdateSettlementStatus moves the listed entries from one status to
	// another and returns how many rows matched. Entries not in status from
	// are left alone.
	UpdateSettlementStatus(ctx context.Context, ids []int64, from, to models.SettlementStatus) (int64, error)

	// CreateSettlementRequest persists a new request and its entry IDs.
	// The ID and CreatedAt fields are populated when empty.
	CreateSettlementRequest(ctx context.Context, req *models.SettlementRequest) error

	// UpdateSettlementRequest moves a request to req.Status if it is still in
	// status from, and stores its timestamps and group. Returns
	// models.ErrSettlementConflict when the stored status changed.
	UpdateSettlementRequest(ctx context.Context, req *models.SettlementRequest, from models.SettlementRequestStatus) error
}

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the engines.
type Store interface {
	Reader

	// CreateEntity persists a new entity. ID and CreatedAt are populated when empty.
	CreateEntity(ctx context.Context, entity *models.Entity) error

	// ListHostsWithOwedEntries returns IDs of hosts that hold OWED debt
	// entries created before cutoff.
	ListHostsWithOwedEntries(ctx context.Context, cutoff int64) ([]string, error)

	// WithTx runs fn inside a transaction, committing when it returns nil
	// and rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any resources held by the store.
	Close() error
}
