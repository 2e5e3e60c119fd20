// Package ledger turns financial events into balanced groups of entries.
//
// Every write goes through one Store transaction: the whole group is
// validated, inserted and linked, or nothing is. Amounts converted between
// currencies are computed once here and frozen on the entries.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/hostledger/internal/calculator"
	"github.com/mmynk/hostledger/internal/events"
	"github.com/mmynk/hostledger/internal/fx"
	"github.com/mmynk/hostledger/internal/metrics"
	"github.com/mmynk/hostledger/internal/models"
	"github.com/mmynk/hostledger/internal/storage"
)

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

// Engine records contributions, refunds and expenses.
type Engine struct {
	store      storage.Store
	conv       *fx.Converter
	publisher  events.Publisher
	platformID string
	now        func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithPublisher sets where domain events go. Defaults to events.Nop.
func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithClock overrides the time source used for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine writing to store. platformID is the entity
// that receives tips and host fee shares.
func NewEngine(store storage.Store, conv *fx.Converter, platformID string, opts ...Option) *Engine {
	e := &Engine{
		store:      store,
		conv:       conv,
		publisher:  events.Nop{},
		platformID: platformID,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PlatformID returns the platform entity ID.
func (e *Engine) PlatformID() string {
	return e.platformID
}

// RegisterEntity validates and persists a new party.
// Hosts and the platform hold their own books, contributors are unhosted and
// collectives must point at an existing host.
func (e *Engine) RegisterEntity(ctx context.Context, entity *models.Entity) error {
	if !entity.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", models.ErrInvalidRequest, entity.Role)
	}
	if strings.TrimSpace(entity.Name) == "" {
		return fmt.Errorf("%w: name is required", models.ErrInvalidRequest)
	}
	entity.Currency = strings.ToUpper(entity.Currency)
	if !currencyCode.MatchString(entity.Currency) {
		return fmt.Errorf("%w: invalid currency %q", models.ErrInvalidRequest, entity.Currency)
	}
	if err := calculator.ValidatePercent("host fee percent", entity.HostFeePercent); err != nil {
		return err
	}
	if err := calculator.ValidatePercent("host fee share percent", entity.HostFeeSharePercent); err != nil {
		return err
	}

	switch entity.Role {
	case models.RoleHost, models.RolePlatform:
		if entity.ID == "" {
			entity.ID = uuid.NewString()
		}
		entity.HostID = entity.ID
	case models.RoleContributor:
		entity.HostID = ""
	case models.RoleCollective:
		if entity.HostID == "" {
			return fmt.Errorf("%w: collective needs a host", models.ErrInvalidRequest)
		}
		host, err := e.store.GetEntity(ctx, entity.HostID)
		if err != nil {
			return fmt.Errorf("failed to load host: %w", err)
		}
		if host.Role != models.RoleHost {
			return fmt.Errorf("%w: %s is not a host", models.ErrInvalidRequest, host.ID)
		}
	}

	if err := e.store.CreateEntity(ctx, entity); err != nil {
		return fmt.Errorf("failed to create entity: %w", err)
	}
	slog.Info("Entity registered", "id", entity.ID, "role", entity.Role, "currency", entity.Currency)
	return nil
}

// commit inserts the group in its own transaction.
func (e *Engine) commit(ctx context.Context, group *models.Group, check func(tx storage.Tx) error) error {
	err := e.store.WithTx(ctx, func(tx storage.Tx) error {
		if check != nil {
			if err := check(tx); err != nil {
				return err
			}
		}
		return tx.InsertGroup(ctx, group)
	})
	if err != nil {
		return err
	}
	recordEntries(group)
	return nil
}

func (e *Engine) publish(ctx context.Context, event events.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = e.now().UTC()
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		metrics.EventPublishErrors.Inc()
		slog.Warn("Failed to publish event", "type", event.Type, "group_id", event.GroupID, "error", err)
	}
}

func recordEntries(group *models.Group) {
	for _, entry := range group.Entries() {
		metrics.EntriesWritten.WithLabelValues(string(entry.Kind)).Inc()
	}
}
