package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/hostledger/internal/models"
	"github.com/mmynk/hostledger/internal/storage"
)

const entryColumns = `id, group_id, kind, direction, amount, currency,
	amount_in_host_currency, host_currency, payment_processor_fee_in_host_currency,
	net_amount_in_account_currency, account_currency,
	from_entity_id, to_entity_id, host_entity_id, settlement_status,
	is_refund, refund_of_group_id, counterpart_entry_id, order_id, description, created_at`

// ListEntries returns entries matching the filter.
func (q queries) ListEntries(ctx context.Context, filter storage.EntryFilter) ([]*models.Entry, error) {
	where, args := filter.Where(storage.QuestionMark)

	rows, err := q.q.QueryContext(ctx, `SELECT `+entryColumns+` FROM entries`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}

	return entries, nil
}

// LockEntry retrieves an entry inside the transaction. The immediate
// transaction already holds the database write lock.
func (t *sqliteTx) LockEntry(ctx context.Context, id int64) (*models.Entry, error) {
	entry, err := scanEntry(t.q.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", models.ErrTransactionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return entry, nil
}

// InsertGroup persists every pair of the group and links counterparts.
func (t *sqliteTx) InsertGroup(ctx context.Context, group *models.Group) error {
	if err := models.ValidateGroup(group); err != nil {
		return err
	}

	now := time.Now().Unix()
	for _, pair := range group.Pairs {
		for _, e := range pair.Entries() {
			if e.CreatedAt == 0 {
				e.CreatedAt = now
			}
			id, err := t.insertEntry(ctx, e)
			if err != nil {
				return err
			}
			e.ID = id
		}

		pair.Credit.CounterpartEntryID = pair.Debit.ID
		pair.Debit.CounterpartEntryID = pair.Credit.ID
		_, err := t.q.ExecContext(ctx,
			`UPDATE entries SET counterpart_entry_id = CASE id WHEN ? THEN ? ELSE ? END WHERE id IN (?, ?)`,
			pair.Credit.ID, pair.Debit.ID, pair.Credit.ID, pair.Credit.ID, pair.Debit.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to link counterparts: %w", err)
		}
	}

	return nil
}

func (t *sqliteTx) insertEntry(ctx context.Context, e *models.Entry) (int64, error) {
	res, err := t.q.ExecContext(ctx,
		`INSERT INTO entries (group_id, kind, direction, amount, currency,
			amount_in_host_currency, host_currency, payment_processor_fee_in_host_currency,
			net_amount_in_account_currency, account_currency,
			from_entity_id, to_entity_id, host_entity_id, settlement_status,
			is_refund, refund_of_group_id, counterpart_entry_id, order_id, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?)`,
		e.GroupID, string(e.Kind), string(e.Direction), e.Amount, e.Currency,
		e.AmountInHostCurrency, e.HostCurrency, e.PaymentProcessorFeeInHostCurrency,
		e.NetAmountInAccountCurrency, e.AccountCurrency,
		e.FromEntityID, e.ToEntityID, e.HostEntityID, string(e.SettlementStatus),
		e.IsRefund, e.RefundOfGroupID, e.OrderID, e.Description, e.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert %s entry: %w", e.Kind, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read entry id: %w", err)
	}
	return id, nil
}

// UpdateSettlementStatus flips entries still in status from.
func (t *sqliteTx) UpdateSettlementStatus(ctx context.Context, ids []int64, from, to models.SettlementStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	in, idArgs := storage.In(storage.QuestionMark, 3, ids)
	args := append([]any{string(to), string(from)}, idArgs...)

	res, err := t.q.ExecContext(ctx,
		`UPDATE entries SET settlement_status = ? WHERE settlement_status = ? AND id IN `+in, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update settlement status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

// ListHostsWithOwedEntries returns hosts holding OWED debt created before cutoff.
func (s *SQLiteStore) ListHostsWithOwedEntries(ctx context.Context, cutoff int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT e.id
		 FROM entries t
		 JOIN entities e ON e.id = CASE WHEN t.direction = 'CREDIT' THEN t.to_entity_id ELSE t.from_entity_id END
		 WHERE e.role = ? AND t.settlement_status = ? AND t.kind IN (?, ?) AND t.created_at < ?
		 ORDER BY e.id`,
		string(models.RoleHost), string(models.StatusOwed),
		string(models.KindHostFeeShareDebt), string(models.KindPlatformTipDebt), cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list hosts with owed entries: %w", err)
	}
	defer rows.Close()

	var hosts []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan host id: %w", err)
		}
		hosts = append(hosts, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate hosts: %w", err)
	}

	return hosts, nil
}

func scanEntry(row scanner) (*models.Entry, error) {
	e := &models.Entry{}
	var kind, direction, status string
	err := row.Scan(
		&e.ID, &e.GroupID, &kind, &direction, &e.Amount, &e.Currency,
		&e.AmountInHostCurrency, &e.HostCurrency, &e.PaymentProcessorFeeInHostCurrency,
		&e.NetAmountInAccountCurrency, &e.AccountCurrency,
		&e.FromEntityID, &e.ToEntityID, &e.HostEntityID, &status,
		&e.IsRefund, &e.RefundOfGroupID, &e.CounterpartEntryID, &e.OrderID, &e.Description, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Kind = models.Kind(kind)
	e.Direction = models.Direction(direction)
	e.SettlementStatus = models.SettlementStatus(status)
	return e, nil
}
