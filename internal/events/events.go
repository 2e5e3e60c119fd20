// Package events publishes ledger domain events for downstream consumers
// such as the expense-approval workflow.
package events

import (
	"context"
	"time"
)

// Event types.
const (
	TypeContributionRecorded = "ledger.contribution.recorded"
	TypeRefundRecorded       = "ledger.refund.recorded"
	TypeExpenseRecorded      = "ledger.expense.recorded"
	TypeSettlementRequested  = "settlement.requested"
	TypeSettlementApproved   = "settlement.approved"
	TypeSettlementPaid       = "settlement.paid"
)

// Event is the JSON payload written to the events topic.
type Event struct {
	Type string `json:"type"`

	// GroupID is the entry group the event produced, if any.
	GroupID string `json:"group_id,omitempty"`

	// EntityID is the main party: the collective for ledger events, the host
	// for settlement events.
	EntityID string `json:"entity_id,omitempty"`

	OrderID             string `json:"order_id,omitempty"`
	SettlementRequestID string `json:"settlement_request_id,omitempty"`

	Amount   int64  `json:"amount,omitempty"`
	Currency string `json:"currency,omitempty"`

	Metadata  map[string]string `json:"metadata,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Key partitions events so that one party's events stay ordered.
func (e Event) Key() string {
	if e.EntityID != "" {
		return e.EntityID
	}
	return e.GroupID
}

// Publisher delivers events after the writes they describe have committed.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop discards events.
type Nop struct{}

// Publish does nothing.
func (Nop) Publish(context.Context, Event) error { return nil }
