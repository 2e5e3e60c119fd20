package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

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
	where, args := filter.Where(storage.Dollar)

	rows, err := q.q.Query(ctx, `SELECT `+entryColumns+` FROM entries`+where, args...)
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

// LockEntry selects the entry FOR UPDATE so concurrent refunds of the same
// contribution queue behind each other.
func (t *pgTx) LockEntry(ctx context.Context, id int64) (*models.Entry, error) {
	entry, err := scanEntry(t.q.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", models.ErrTransactionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock entry: %w", err)
	}
	return entry, nil
}

// InsertGroup persists every pair of the group and links counterparts.
func (t *pgTx) InsertGroup(ctx context.Context, group *models.Group) error {
	if err := models.ValidateGroup(group); err != nil {
		return err
	}

	now := time.Now().Unix()
	for _, pair := range group.Pairs {
		for _, e := range pair.Entries() {
			if e.CreatedAt == 0 {
				e.CreatedAt = now
			}
			err := t.q.QueryRow(ctx,
				`INSERT INTO entries (group_id, kind, direction, amount, currency,
					amount_in_host_currency, host_currency, payment_processor_fee_in_host_currency,
					net_amount_in_account_currency, account_currency,
					from_entity_id, to_entity_id, host_entity_id, settlement_status,
					is_refund, refund_of_group_id, order_id, description, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
				 RETURNING id`,
				e.GroupID, string(e.Kind), string(e.Direction), e.Amount, e.Currency,
				e.AmountInHostCurrency, e.HostCurrency, e.PaymentProcessorFeeInHostCurrency,
				e.NetAmountInAccountCurrency, e.AccountCurrency,
				e.FromEntityID, e.ToEntityID, e.HostEntityID, string(e.SettlementStatus),
				e.IsRefund, e.RefundOfGroupID, e.OrderID, e.Description, e.CreatedAt,
			).Scan(&e.ID)
			if err != nil {
				return fmt.Errorf("failed to insert %s entry: %w", e.Kind, err)
			}
		}

		pair.Credit.CounterpartEntryID = pair.Debit.ID
		pair.Debit.CounterpartEntryID = pair.Credit.ID
		_, err := t.q.Exec(ctx,
			`UPDATE entries SET counterpart_entry_id = CASE id WHEN $1 THEN $2 ELSE $1 END WHERE id IN ($1, $2)`,
			pair.Credit.ID, pair.Debit.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to link counterparts: %w", err)
		}
	}
	return nil
}

// UpdateSettlementStatus flips entries still in status from.
func (t *pgTx) UpdateSettlementStatus(ctx context.Context, ids []int64, from, to models.SettlementStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := t.q.Exec(ctx,
		`UPDATE entries SET settlement_status = $1 WHERE settlement_status = $2 AND id = ANY($3)`,
		string(to), string(from), ids,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update settlement status: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListHostsWithOwedEntries returns hosts holding OWED debt created before cutoff.
func (s *PostgresStore) ListHostsWithOwedEntries(ctx context.Context, cutoff int64) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT e.id
		 FROM entries t
		 JOIN entities e ON e.id = CASE WHEN t.direction = 'CREDIT' THEN t.to_entity_id ELSE t.from_entity_id END
		 WHERE e.role = $1 AND t.settlement_status = $2 AND t.kind = ANY($3) AND t.created_at < $4
		 ORDER BY e.id`,
		string(models.RoleHost), string(models.StatusOwed),
		[]string{string(models.KindHostFeeShareDebt), string(models.KindPlatformTipDebt)}, cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list hosts with owed entries: %w", err)
	}
	hosts, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to collect host ids: %w", err)
	}
	return hosts, nil
}

func scanEntry(row pgx.Row) (*models.Entry, error) {
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
