package sqlite

// Schema creates the holdings, history and history_detail tables.
// Amounts and rates are stored as decimal TEXT; timestamps as fixed-width UTC TEXT.
const Schema = `
CREATE TABLE IF NOT EXISTS holdings (
	id                  TEXT PRIMARY KEY,
	owner_id            TEXT NOT NULL,
	kind                TEXT NOT NULL CHECK (kind IN ('cash', 'stock')),
	name                TEXT NOT NULL,
	amount              TEXT NOT NULL,
	annual_rate_percent TEXT NOT NULL,
	memo                TEXT,
	created_at          TEXT NOT NULL,
	updated_at          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_holdings_owner_updated ON holdings (owner_id, updated_at);

CREATE TABLE IF NOT EXISTS history (
	id                  TEXT PRIMARY KEY,
	owner_id            TEXT NOT NULL,
	current_assets      TEXT NOT NULL,
	annual_rate_percent TEXT NOT NULL,
	years               INTEGER NOT NULL CHECK (years >= 0),
	future_value        TEXT NOT NULL,
	increase_amount     TEXT NOT NULL,
	created_at          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_owner_created ON history (owner_id, created_at);

CREATE TABLE IF NOT EXISTS history_detail (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	history_id          TEXT NOT NULL REFERENCES history (id) ON DELETE CASCADE,
	asset_id            TEXT NOT NULL,
	asset_name          TEXT NOT NULL,
	asset_kind          TEXT NOT NULL,
	original_amount     TEXT NOT NULL,
	adjusted_amount     TEXT NOT NULL,
	annual_rate_percent TEXT NOT NULL,
	future_value        TEXT NOT NULL,
	increase_amount     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_detail_history ON history_detail (history_id);
`
