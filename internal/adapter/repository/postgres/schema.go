package postgres

// Schema creates the holdings, history and history_detail tables
const Schema = `
CREATE TABLE IF NOT EXISTS holdings (
	id                  UUID PRIMARY KEY,
	owner_id            UUID NOT NULL,
	kind                TEXT NOT NULL CHECK (kind IN ('cash', 'stock')),
	name                VARCHAR(50) NOT NULL,
	amount              NUMERIC NOT NULL CHECK (amount > 0 AND amount <= 999999999999),
	annual_rate_percent NUMERIC NOT NULL CHECK (annual_rate_percent >= 0 AND annual_rate_percent <= 100),
	memo                VARCHAR(200),
	created_at          TIMESTAMPTZ NOT NULL,
	updated_at          TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_holdings_owner_updated ON holdings (owner_id, updated_at DESC);

CREATE TABLE IF NOT EXISTS history (
	id                  UUID PRIMARY KEY,
	owner_id            UUID NOT NULL,
	current_assets      NUMERIC NOT NULL,
	annual_rate_percent NUMERIC NOT NULL,
	years               INTEGER NOT NULL CHECK (years >= 0),
	future_value        NUMERIC NOT NULL,
	increase_amount     NUMERIC NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_owner_created ON history (owner_id, created_at DESC);

CREATE TABLE IF NOT EXISTS history_detail (
	id                  BIGSERIAL PRIMARY KEY,
	history_id          UUID NOT NULL REFERENCES history (id) ON DELETE CASCADE,
	asset_id            UUID NOT NULL,
	asset_name          VARCHAR(50) NOT NULL,
	asset_kind          TEXT NOT NULL,
	original_amount     NUMERIC NOT NULL,
	adjusted_amount     NUMERIC NOT NULL,
	annual_rate_percent NUMERIC NOT NULL,
	future_value        NUMERIC NOT NULL,
	increase_amount     NUMERIC NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_detail_history ON history_detail (history_id);
`
