package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// IMPORTANT: entities must be created BEFORE entries due to foreign key constraints.
const schema = `
CREATE TABLE IF NOT EXISTS entities (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    role TEXT NOT NULL,
    currency TEXT NOT NULL,
    host_id TEXT NOT NULL DEFAULT '',
    host_fee_percent REAL NOT NULL DEFAULT 0,
    host_fee_share_percent REAL NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    group_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    direction TEXT NOT NULL CHECK (direction IN ('CREDIT', 'DEBIT')),
    amount INTEGER NOT NULL CHECK (amount >= 0),
    currency TEXT NOT NULL,
    amount_in_host_currency INTEGER NOT NULL,
    host_currency TEXT NOT NULL,
    payment_processor_fee_in_host_currency INTEGER NOT NULL DEFAULT 0,
    net_amount_in_account_currency INTEGER NOT NULL,
    account_currency TEXT NOT NULL,
    from_entity_id TEXT NOT NULL,
    to_entity_id TEXT NOT NULL,
    host_entity_id TEXT NOT NULL DEFAULT '',
    settlement_status TEXT NOT NULL DEFAULT '',
    is_refund INTEGER NOT NULL DEFAULT 0,
    refund_of_group_id TEXT NOT NULL DEFAULT '',
    counterpart_entry_id INTEGER NOT NULL DEFAULT 0,
    order_id TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    FOREIGN KEY (from_entity_id) REFERENCES entities(id),
    FOREIGN KEY (to_entity_id) REFERENCES entities(id)
);

CREATE TABLE IF NOT EXISTS settlement_requests (
    id TEXT PRIMARY KEY,
    host_id TEXT NOT NULL,
    platform_id TEXT NOT NULL,
    amount INTEGER NOT NULL,
    currency TEXT NOT NULL,
    status TEXT NOT NULL,
    cutoff_date INTEGER NOT NULL,
    group_id TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    approved_at INTEGER NOT NULL DEFAULT 0,
    paid_at INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (host_id) REFERENCES entities(id)
);

CREATE TABLE IF NOT EXISTS settlement_request_entries (
    request_id TEXT NOT NULL,
    entry_id INTEGER NOT NULL,
    PRIMARY KEY (request_id, entry_id),
    FOREIGN KEY (request_id) REFERENCES settlement_requests(id) ON DELETE CASCADE,
    FOREIGN KEY (entry_id) REFERENCES entries(id)
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
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
