package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/hostledger/internal/calculator"
	"github.com/mmynk/hostledger/internal/events"
	"github.com/mmynk/hostledger/internal/metrics"
	"github.com/mmynk/hostledger/internal/models"
	"github.com/mmynk/hostledger/internal/storage"
)

// ExecuteExpense pays an expense out of a collective's balance as a single
// EXPENSE pair in the collective's currency. The collective must hold at
// least the amount.
func (e *Engine) ExecuteExpense(ctx context.Context, expense *models.Expense) (group *models.Group, err error) {
	start := time.Now()
	defer func() { metrics.Observe("execute_expense", start, err) }()

	if expense.Amount <= 0 {
		return nil, fmt.Errorf("%w: expense amount must be positive", models.ErrInvalidRequest)
	}
	if expense.CollectiveID == expense.PayeeID {
		return nil, fmt.Errorf("%w: collective cannot pay itself", models.ErrInvalidRequest)
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = e.now().Unix()
	}

	parties, err := LoadParties(ctx, e.store, expense.CollectiveID, expense.PayeeID)
	if err != nil {
		return nil, err
	}
	collective := parties[expense.CollectiveID]
	if collective.Role != models.RoleCollective {
		return nil, fmt.Errorf("%w: %s is not a collective", models.ErrInvalidRequest, collective.ID)
	}

	b := NewBuilder(e.conv, parties, time.Unix(expense.CreatedAt, 0).UTC(), models.Entry{
		Description: expense.Description,
		CreatedAt:   expense.CreatedAt,
	})
	if _, err := b.Add(ctx, Leg{
		Kind:     models.KindExpense,
		From:     collective.ID,
		To:       expense.PayeeID,
		Amount:   expense.Amount,
		Currency: collective.Currency,
	}); err != nil {
		return nil, err
	}

	group = b.Group()
	err = e.commit(ctx, group, func(tx storage.Tx) error {
		entries, err := tx.ListEntries(ctx, storage.EntryFilter{EntityID: collective.ID})
		if err != nil {
			return err
		}
		if balance := calculator.Balance(entries, collective.ID, 0); balance < expense.Amount {
			return fmt.Errorf("%w: balance %d %s, expense %d", models.ErrInsufficientFunds, balance, collective.Currency, expense.Amount)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record expense: %w", err)
	}

	slog.Info("Expense recorded",
		"group_id", group.ID,
		"collective_id", collective.ID,
		"payee_id", expense.PayeeID,
		"amount", expense.Amount,
		"currency", collective.Currency,
	)
	e.publish(ctx, events.Event{
		Type:     events.TypeExpenseRecorded,
		GroupID:  group.ID,
		EntityID: collective.ID,
		Amount:   expense.Amount,
		Currency: collective.Currency,
		Metadata: map[string]string{"payee_id": expense.PayeeID},
	})
	return group, nil
}
