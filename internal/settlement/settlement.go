// Package settlement invoices what hosts owe the platform.
//
// Debt entries (host fee share and platform tips held by the host) start
// OWED. A run gathers a host's OWED entries into a PENDING request and marks
// them INVOICED. Once the request is approved and paid they become SETTLED
// and a SETTLEMENT pair moves the money from host to platform.
package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/hostledger/internal/calculator"
	"github.com/mmynk/hostledger/internal/events"
	"github.com/mmynk/hostledger/internal/fx"
	"github.com/mmynk/hostledger/internal/ledger"
	"github.com/mmynk/hostledger/internal/metrics"
	"github.com/mmynk/hostledger/internal/models"
	"github.com/mmynk/hostledger/internal/storage"
)

var debtKinds = []models.Kind{models.KindHostFeeShareDebt, models.KindPlatformTipDebt}

// Engine runs settlements and moves requests through their lifecycle.
type Engine struct {
	store      storage.Store
	conv       *fx.Converter
	publisher  events.Publisher
	platformID string
	now        func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithPublisher sets where settlement events go. Defaults to events.Nop.
func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a settlement Engine paying platformID.
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

// Report summarizes one Run.
type Report struct {
	// Requests are the settlement requests created by the run.
	Requests []*models.SettlementRequest

	// Skipped lists hosts whose net owed amount was zero or negative.
	Skipped []string

	// Failed maps host IDs to the error that stopped their settlement.
	Failed map[string]error
}

// Run settles every host holding OWED debt created before asOf.
// A failing host is logged and skipped; the others still settle.
func (e *Engine) Run(ctx context.Context, asOf time.Time) (*Report, error) {
	hosts, err := e.store.ListHostsWithOwedEntries(ctx, asOf.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to list hosts: %w", err)
	}

	report := &Report{Failed: make(map[string]error)}
	for _, hostID := range hosts {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		req, err := e.RunHost(ctx, hostID, asOf)
		switch {
		case err != nil:
			slog.Error("Settlement failed", "host_id", hostID, "error", err)
			report.Failed[hostID] = err
		case req == nil:
			report.Skipped = append(report.Skipped, hostID)
		default:
			report.Requests = append(report.Requests, req)
		}
	}

	slog.Info("Settlement run finished",
		"as_of", asOf.Format(time.RFC3339),
		"hosts", len(hosts),
		"requests", len(report.Requests),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed),
	)
	return report, nil
}

// RunHost invoices the host's OWED debt created before asOf. Entries
// stamped exactly at asOf belong to the next period.
// It returns nil without error when the net amount is not positive; those
// entries stay OWED and carry forward to the next run.
func (e *Engine) RunHost(ctx context.Context, hostID string, asOf time.Time) (req *models.SettlementRequest, err error) {
	start := time.Now()
	defer func() { metrics.Observe("settlement_run_host", start, err) }()

	cutoff := asOf.Unix()
	err = e.store.WithTx(ctx, func(tx storage.Tx) error {
		req = nil

		host, err := tx.GetEntity(ctx, hostID)
		if err != nil {
			return err
		}
		if host.Role != models.RoleHost {
			return fmt.Errorf("%w: %s is not a host", models.ErrInvalidRequest, hostID)
		}

		entries, err := tx.ListEntries(ctx, storage.EntryFilter{
			HostEntityID:  hostID,
			Kinds:         debtKinds,
			Statuses:      []models.SettlementStatus{models.StatusOwed},
			CreatedBefore: cutoff,
		})
		if err != nil {
			return err
		}

		net, gathered := calculator.PendingDebt(entries, hostID, cutoff)
		if net <= 0 {
			slog.Info("Nothing to settle", "host_id", hostID, "net", net, "entries", len(gathered))
			return nil
		}

		entryIDs, ids := withCounterparts(gathered)
		n, err := tx.UpdateSettlementStatus(ctx, ids, models.StatusOwed, models.StatusInvoiced)
		if err != nil {
			return err
		}
		if n != int64(len(ids)) {
			return fmt.Errorf("%w: invoiced %d of %d entries", models.ErrSettlementConflict, n, len(ids))
		}

		req = &models.SettlementRequest{
			HostID:     hostID,
			PlatformID: e.platformID,
			Amount:     net,
			Currency:   host.Currency,
			Status:     models.SettlementPending,
			EntryIDs:   entryIDs,
			CutoffDate: cutoff,
			CreatedAt:  e.now().Unix(),
		}
		return tx.CreateSettlementRequest(ctx, req)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to settle host %s: %w", hostID, err)
	}
	if req == nil {
		return nil, nil
	}

	metrics.SettlementRequests.WithLabelValues(string(req.Status)).Inc()
	slog.Info("Settlement requested",
		"request_id", req.ID,
		"host_id", hostID,
		"amount", req.Amount,
		"currency", req.Currency,
		"entries", len(req.EntryIDs),
	)
	e.publish(ctx, events.TypeSettlementRequested, req)
	return req, nil
}

// Approve moves a PENDING request to APPROVED.
func (e *Engine) Approve(ctx context.Context, id string) (req *models.SettlementRequest, err error) {
	start := time.Now()
	defer func() { metrics.Observe("settlement_approve", start, err) }()

	err = e.store.WithTx(ctx, func(tx storage.Tx) error {
		req, err = tx.GetSettlementRequest(ctx, id)
		if err != nil {
			return err
		}
		if req.Status != models.SettlementPending {
			return fmt.Errorf("%w: request %s is %s", models.ErrInvalidSettlementState, id, req.Status)
		}
		req.Status = models.SettlementApproved
		req.ApprovedAt = e.now().Unix()
		return tx.UpdateSettlementRequest(ctx, req, models.SettlementPending)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to approve settlement %s: %w", id, err)
	}

	metrics.SettlementRequests.WithLabelValues(string(req.Status)).Inc()
	slog.Info("Settlement approved", "request_id", id, "host_id", req.HostID)
	e.publish(ctx, events.TypeSettlementApproved, req)
	return req, nil
}

// MarkPaid records payment of an APPROVED request: its entries become
// SETTLED and a SETTLEMENT pair moves the amount from host to platform.
func (e *Engine) MarkPaid(ctx context.Context, id string) (req *models.SettlementRequest, err error) {
	start := time.Now()
	defer func() { metrics.Observe("settlement_mark_paid", start, err) }()

	var group *models.Group
	err = e.store.WithTx(ctx, func(tx storage.Tx) error {
		req, err = tx.GetSettlementRequest(ctx, id)
		if err != nil {
			return err
		}
		if req.Status != models.SettlementApproved {
			return fmt.Errorf("%w: request %s is %s", models.ErrInvalidSettlementState, id, req.Status)
		}

		invoiced, err := tx.ListEntries(ctx, storage.EntryFilter{
			HostEntityID: req.HostID,
			Kinds:        debtKinds,
			Statuses:     []models.SettlementStatus{models.StatusInvoiced},
		})
		if err != nil {
			return err
		}
		byID := make(map[int64]*models.Entry, len(invoiced))
		for _, entry := range invoiced {
			byID[entry.ID] = entry
		}
		gathered := make([]*models.Entry, 0, len(req.EntryIDs))
		for _, entryID := range req.EntryIDs {
			entry, ok := byID[entryID]
			if !ok {
				return fmt.Errorf("%w: entry %d is no longer invoiced", models.ErrSettlementConflict, entryID)
			}
			gathered = append(gathered, entry)
		}

		_, ids := withCounterparts(gathered)
		n, err := tx.UpdateSettlementStatus(ctx, ids, models.StatusInvoiced, models.StatusSettled)
		if err != nil {
			return err
		}
		if n != int64(len(ids)) {
			return fmt.Errorf("%w: settled %d of %d entries", models.ErrSettlementConflict, n, len(ids))
		}

		parties, err := ledger.LoadParties(ctx, tx, req.HostID, req.PlatformID)
		if err != nil {
			return err
		}
		now := e.now()
		b := ledger.NewBuilder(e.conv, parties, now, models.Entry{
			Description: fmt.Sprintf("Settlement %s", req.ID),
			CreatedAt:   now.Unix(),
		})
		if _, err := b.Add(ctx, ledger.Leg{
			Kind:     models.KindSettlement,
			From:     req.HostID,
			To:       req.PlatformID,
			Amount:   req.Amount,
			Currency: req.Currency,
		}); err != nil {
			return err
		}
		group = b.Group()
		if err := tx.InsertGroup(ctx, group); err != nil {
			return err
		}

		req.Status = models.SettlementPaid
		req.PaidAt = now.Unix()
		req.GroupID = group.ID
		return tx.UpdateSettlementRequest(ctx, req, models.SettlementApproved)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mark settlement %s paid: %w", id, err)
	}

	for _, entry := range group.Entries() {
		metrics.EntriesWritten.WithLabelValues(string(entry.Kind)).Inc()
	}
	metrics.SettlementRequests.WithLabelValues(string(req.Status)).Inc()
	slog.Info("Settlement paid",
		"request_id", id,
		"host_id", req.HostID,
		"group_id", group.ID,
		"amount", req.Amount,
		"currency", req.Currency,
	)
	e.publish(ctx, events.TypeSettlementPaid, req)
	return req, nil
}

// withCounterparts returns the host-side entry IDs and those IDs together
// with their platform-side counterparts.
func withCounterparts(entries []*models.Entry) (hostSide, all []int64) {
	hostSide = make([]int64, 0, len(entries))
	all = make([]int64, 0, 2*len(entries))
	for _, entry := range entries {
		hostSide = append(hostSide, entry.ID)
		all = append(all, entry.ID)
		if entry.CounterpartEntryID != 0 {
			all = append(all, entry.CounterpartEntryID)
		}
	}
	return hostSide, all
}

func (e *Engine) publish(ctx context.Context, eventType string, req *models.SettlementRequest) {
	event := events.Event{
		Type:                eventType,
		EntityID:            req.HostID,
		GroupID:             req.GroupID,
		SettlementRequestID: req.ID,
		Amount:              req.Amount,
		Currency:            req.Currency,
		Timestamp:           e.now().UTC(),
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		metrics.EventPublishErrors.Inc()
		slog.Warn("Failed to publish event", "type", eventType, "request_id", req.ID, "error", err)
	}
}
