package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS entities (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    role TEXT NOT NULL,
    currency TEXT NOT NULL,
    host_id TEXT NOT NULL DEFAULT '',
    host_fee_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
    host_fee_share_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS entries (
    id BIGSERIAL PRIMARY KEY,
    group_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    direction TEXT NOT NULL CHECK (direction IN ('CREDIT', 'DEBIT')),
    amount BIGINT NOT NULL CHECK (amount >= 0),
    currency TEXT NOT NULL,
    amount_in_host_currency BIGINT NOT NULL,
    host_currency TEXT NOT NULL,
    payment_processor_fee_in_host_currency BIGINT NOT NULL DEFAULT 0,
    net_amount_in_account_currency BIGINT NOT NULL,
    account_currency TEXT NOT NULL,
    from_entity_id TEXT NOT NULL REFERENCES entities(id),
    to_entity_id TEXT NOT NULL REFERENCES entities(id),
    host_entity_id TEXT NOT NULL DEFAULT '',
    settlement_status TEXT NOT NULL DEFAULT '',
    is_refund BOOLEAN NOT NULL DEFAULT FALSE,
    refund_of_group_id TEXT NOT NULL DEFAULT '',
    counterpart_entry_id BIGINT NOT NULL DEFAULT 0,
    order_id TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS settlement_requests (
    id TEXT PRIMARY KEY,
    host_id TEXT NOT NULL REFERENCES entities(id),
    platform_id TEXT NOT NULL,
    amount BIGINT NOT NULL,
    currency TEXT NOT NULL,
    status TEXT NOT NULL,
    cutoff_date BIGINT NOT NULL,
    group_id TEXT NOT NULL DEFAULT '',
    created_at BIGINT NOT NULL,
    approved_at BIGINT NOT NULL DEFAULT 0,
    paid_at BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS settlement_request_entries (
    request_id TEXT NOT NULL REFERENCES settlement_requests(id) ON DELETE CASCADE,
    entry_id BIGINT NOT NULL REFERENCES entries(id),
    PRIMARY KEY (request_id, entry_id)
);

CREATE INDEX IF NOT EXISTS idx_entries_group_id ON entries(group_id);
CREATE INDEX IF NOT EXISTS idx_entries_from_entity_id ON entries(from_entity_id);
CREATE INDEX IF NOT EXISTS idx_entries_to_entity_id ON entries(to_entity_id);
CREATE INDEX IF NOT EXISTS idx_entries_host_entity_id ON entries(host_entity_id);
CREATE INDEX IF NOT EXISTS idx_entries_refund_of_group_id ON entries(refund_of_group_id);
CREATE INDEX IF NOT EXISTS idx_entries_settlement_status ON entries(settlement_status);
CREATE INDEX IF NOT EXISTS idx_settlement_requests_host_id ON settlement_requests(host_id);
`

// runMigrations executes the schema setup.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
