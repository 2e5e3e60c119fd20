package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/hostledger/internal/models"
)

const settlementColumns = `id, host_id, platform_id, amount, currency, status, cutoff_date, group_id, created_at, approved_at, paid_at`

// CreateSettlementRequest persists a new settlement request and its entries.
func (t *sqliteTx) CreateSettlementRequest(ctx context.Context, req *models.SettlementRequest) error {
	// Generate ID if not set
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.CreatedAt == 0 {
		req.CreatedAt = time.Now().Unix()
	}

	_, err := t.q.ExecContext(ctx,
		`INSERT INTO settlement_requests (`+settlementColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.HostID, req.PlatformID, req.Amount, req.Currency, string(req.Status),
		req.CutoffDate, req.GroupID, req.CreatedAt, req.ApprovedAt, req.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement request: %w", err)
	}

	for _, entryID := range req.EntryIDs {
		_, err = t.q.ExecContext(ctx,
			"INSERT INTO settlement_request_entries (request_id, entry_id) VALUES (?, ?)",
			req.ID, entryID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement request entry: %w", err)
		}
	}

	return nil
}

// UpdateSettlementRequest advances a request still in status from.
func (t *sqliteTx) UpdateSettlementRequest(ctx context.Context, req *models.SettlementRequest, from models.SettlementRequestStatus) error {
	res, err := t.q.ExecContext(ctx,
		`UPDATE settlement_requests SET status = ?, group_id = ?, approved_at = ?, paid_at = ?
		 WHERE id = ? AND status = ?`,
		string(req.Status), req.GroupID, req.ApprovedAt, req.PaidAt, req.ID, string(from),
	)
	if err != nil {
		return fmt.Errorf("failed to update settlement request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("%w: request %s is no longer %s", models.ErrSettlementConflict, req.ID, from)
	}
	return nil
}

// GetSettlementRequest retrieves a settlement request by ID.
func (q queries) GetSettlementRequest(ctx context.Context, id string) (*models.SettlementRequest, error) {
	req, err := scanSettlementRequest(q.q.QueryRowContext(ctx,
		`SELECT `+settlementColumns+` FROM settlement_requests WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrSettlementNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement request: %w", err)
	}

	if req.EntryIDs, err = q.settlementEntryIDs(ctx, req.ID); err != nil {
		return nil, err
	}
	return req, nil
}

// ListSettlementRequests retrieves settlement requests, newest first.
func (q queries) ListSettlementRequests(ctx context.Context, hostID string) ([]*models.SettlementRequest, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlement_requests`
	var args []any
	if hostID != "" {
		query += ` WHERE host_id = ?`
		args = append(args, hostID)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlement requests: %w", err)
	}

	var reqs []*models.SettlementRequest
	for rows.Next() {
		req, err := scanSettlementRequest(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan settlement request: %w", err)
		}
		reqs = append(reqs, req)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlement requests: %w", err)
	}

	// Entry IDs are loaded after the cursor is closed; a transaction holds a
	// single connection.
	for _, req := range reqs {
		if req.EntryIDs, err = q.settlementEntryIDs(ctx, req.ID); err != nil {
			return nil, err
		}
	}
	return reqs, nil
}

func (q queries) settlementEntryIDs(ctx context.Context, requestID string) ([]int64, error) {
	rows, err := q.q.QueryContext(ctx,
		"SELECT entry_id FROM settlement_request_entries WHERE request_id = ? ORDER BY entry_id",
		requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement request entries: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan settlement request entry: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlement request entries: %w", err)
	}
	return ids, nil
}

func scanSettlementRequest(row scanner) (*models.SettlementRequest, error) {
	req := &models.SettlementRequest{}
	var status string
	err := row.Scan(
		&req.ID, &req.HostID, &req.PlatformID, &req.Amount, &req.Currency, &status,
		&req.CutoffDate, &req.GroupID, &req.CreatedAt, &req.ApprovedAt, &req.PaidAt,
	)
	if err != nil {
		return nil, err
	}
	req.Status = models.SettlementRequestStatus(status)
	return req, nil
}
