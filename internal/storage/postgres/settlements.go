package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmynk/hostledger/internal/models"
)

const settlementColumns = `id, host_id, platform_id, amount, currency, status, cutoff_date, group_id, created_at, approved_at, paid_at`

// CreateSettlementRequest persists a new settlement request and its entries.
func (t *pgTx) CreateSettlementRequest(ctx context.Context, req *models.SettlementRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.CreatedAt == 0 {
		req.CreatedAt = time.Now().Unix()
	}

	_, err := t.q.Exec(ctx,
		`INSERT INTO settlement_requests (`+settlementColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		req.ID, req.HostID, req.PlatformID, req.Amount, req.Currency, string(req.Status),
		req.CutoffDate, req.GroupID, req.CreatedAt, req.ApprovedAt, req.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement request: %w", err)
	}

	if len(req.EntryIDs) > 0 {
		_, err = t.q.Exec(ctx,
			`INSERT INTO settlement_request_entries (request_id, entry_id)
			 SELECT $1, unnest($2::bigint[])`,
			req.ID, req.EntryIDs,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement request entries: %w", err)
		}
	}
	return nil
}

// UpdateSettlementRequest advances a request still in status from.
func (t *pgTx) UpdateSettlementRequest(ctx context.Context, req *models.SettlementRequest, from models.SettlementRequestStatus) error {
	tag, err := t.q.Exec(ctx,
		`UPDATE settlement_requests SET status = $1, group_id = $2, approved_at = $3, paid_at = $4
		 WHERE id = $5 AND status = $6`,
		string(req.Status), req.GroupID, req.ApprovedAt, req.PaidAt, req.ID, string(from),
	)
	if err != nil {
		return fmt.Errorf("failed to update settlement request: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("%w: request %s is no longer %s", models.ErrSettlementConflict, req.ID, from)
	}
	return nil
}

// GetSettlementRequest retrieves a settlement request by ID.
func (q queries) GetSettlementRequest(ctx context.Context, id string) (*models.SettlementRequest, error) {
	req, err := scanSettlementRequest(q.q.QueryRow(ctx,
		`SELECT `+settlementColumns+`,
			COALESCE((SELECT array_agg(entry_id ORDER BY entry_id) FROM settlement_request_entries WHERE request_id = id), '{}')
		 FROM settlement_requests WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrSettlementNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement request: %w", err)
	}
	return req, nil
}

// ListSettlementRequests retrieves settlement requests, newest first.
func (q queries) ListSettlementRequests(ctx context.Context, hostID string) ([]*models.SettlementRequest, error) {
	query := `SELECT ` + settlementColumns + `,
		COALESCE((SELECT array_agg(entry_id ORDER BY entry_id) FROM settlement_request_entries WHERE request_id = id), '{}')
		FROM settlement_requests`
	var args []any
	if hostID != "" {
		query += ` WHERE host_id = $1`
		args = append(args, hostID)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := q.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlement requests: %w", err)
	}
	defer rows.Close()

	var reqs []*models.SettlementRequest
	for rows.Next() {
		req, err := scanSettlementRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement request: %w", err)
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlement requests: %w", err)
	}
	return reqs, nil
}

func scanSettlementRequest(row pgx.Row) (*models.SettlementRequest, error) {
	req := &models.SettlementRequest{}
	var status string
	err := row.Scan(
		&req.ID, &req.HostID, &req.PlatformID, &req.Amount, &req.Currency, &status,
		&req.CutoffDate, &req.GroupID, &req.CreatedAt, &req.ApprovedAt, &req.PaidAt,
		&req.EntryIDs,
	)
	if err != nil {
		return nil, err
	}
	req.Status = models.SettlementRequestStatus(status)
	return req, nil
}
