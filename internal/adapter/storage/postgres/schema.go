package postgres

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// schema is applied idempotently at startup when database.migrate is set.
// Ledger rows are protected against UPDATE and DELETE by a trigger.
const schema = `
CREATE TABLE IF NOT EXISTS merchants (
    id            UUID PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    business_name TEXT NOT NULL,
    status        TEXT NOT NULL DEFAULT 'active',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS wallets (
    id                  UUID PRIMARY KEY,
    merchant_id         UUID NOT NULL UNIQUE REFERENCES merchants(id),
    balance_usd         NUMERIC(20,2) NOT NULL DEFAULT 0 CHECK (balance_usd >= 0),
    balance_cdf         NUMERIC(20,2) NOT NULL DEFAULT 0 CHECK (balance_cdf >= 0),
    total_received_usd  NUMERIC(20,2) NOT NULL DEFAULT 0,
    total_received_cdf  NUMERIC(20,2) NOT NULL DEFAULT 0,
    total_withdrawn_usd NUMERIC(20,2) NOT NULL DEFAULT 0,
    total_withdrawn_cdf NUMERIC(20,2) NOT NULL DEFAULT 0,
    is_frozen           BOOLEAN NOT NULL DEFAULT FALSE,
    frozen_reason       TEXT,
    frozen_at           TIMESTAMPTZ,
    last_transaction_at TIMESTAMPTZ,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS merchant_bank_accounts (
    id                 UUID PRIMARY KEY,
    merchant_id        UUID NOT NULL REFERENCES merchants(id),
    bank_name          TEXT NOT NULL,
    account_number_enc TEXT NOT NULL,
    account_name_enc   TEXT NOT NULL,
    iban_enc           TEXT,
    swift_code         TEXT,
    currency           CHAR(3) NOT NULL CHECK (currency IN ('USD', 'CDF')),
    is_verified        BOOLEAN NOT NULL DEFAULT FALSE,
    is_default         BOOLEAN NOT NULL DEFAULT FALSE,
    tracked_balance    NUMERIC(20,2) NOT NULL DEFAULT 0 CHECK (tracked_balance >= 0),
    verified_at        TIMESTAMPTZ,
    last_sweep_at      TIMESTAMPTZ,
    last_funding_at    TIMESTAMPTZ,
    created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_bank_accounts_default
    ON merchant_bank_accounts (merchant_id, currency) WHERE is_default;

CREATE TABLE IF NOT EXISTS transactions (
    id                     UUID PRIMARY KEY,
    merchant_id            UUID NOT NULL REFERENCES merchants(id),
    wallet_id              UUID NOT NULL REFERENCES wallets(id),
    transaction_ref        TEXT NOT NULL UNIQUE,
    external_ref           TEXT,
    order_id               TEXT,
    type                   TEXT NOT NULL,
    status                 TEXT NOT NULL,
    currency               CHAR(3) NOT NULL CHECK (currency IN ('USD', 'CDF')),
    amount_gross           NUMERIC(20,2) NOT NULL CHECK (amount_gross > 0),
    amount_commission      NUMERIC(20,2) NOT NULL DEFAULT 0,
    amount_net             NUMERIC(20,2) NOT NULL,
    payment_method         TEXT,
    customer_phone_enc     TEXT,
    beneficiary_bank       TEXT,
    beneficiary_number_enc TEXT,
    beneficiary_name_enc   TEXT,
    beneficiary_iban_enc   TEXT,
    beneficiary_swift      TEXT,
    bank_account_id        UUID REFERENCES merchant_bank_accounts(id),
    withdrawal_batch_id    TEXT,
    conversion             JSONB,
    error_code             TEXT,
    error_message          TEXT,
    metadata               JSONB NOT NULL DEFAULT '{}',
    expires_at             TIMESTAMPTZ,
    completed_at           TIMESTAMPTZ,
    created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_transactions_order
    ON transactions (merchant_id, order_id) WHERE order_id IS NOT NULL AND type = 'collection';
CREATE INDEX IF NOT EXISTS idx_transactions_merchant_created ON transactions (merchant_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_transactions_pending ON transactions (type, status, created_at) WHERE status = 'pending';

CREATE TABLE IF NOT EXISTS ledger_entries (
    id             UUID PRIMARY KEY,
    transaction_id UUID NOT NULL REFERENCES transactions(id),
    entry_type     TEXT NOT NULL CHECK (entry_type IN ('debit', 'credit')),
    account_type   TEXT NOT NULL,
    amount         NUMERIC(20,2) NOT NULL CHECK (amount > 0),
    currency       CHAR(3) NOT NULL CHECK (currency IN ('USD', 'CDF')),
    description    TEXT,
    metadata       JSONB NOT NULL DEFAULT '{}',
    is_reconciled  BOOLEAN NOT NULL DEFAULT FALSE,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_ledger_transaction ON ledger_entries (transaction_id);
CREATE INDEX IF NOT EXISTS idx_ledger_account ON ledger_entries (account_type, currency);

CREATE OR REPLACE FUNCTION ledger_entries_immutable() RETURNS trigger AS $$
BEGIN
    RAISE EXCEPTION 'ledger_entries is append-only';
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_ledger_entries_immutable ON ledger_entries;
CREATE TRIGGER trg_ledger_entries_immutable
    BEFORE UPDATE OR DELETE ON ledger_entries
    FOR EACH ROW EXECUTE FUNCTION ledger_entries_immutable();

CREATE TABLE IF NOT EXISTS audit_logs (
    id            UUID PRIMARY KEY,
    actor_id      TEXT NOT NULL,
    merchant_id   UUID,
    action        TEXT NOT NULL,
    resource_type TEXT NOT NULL,
    resource_id   TEXT,
    details       JSONB,
    ip_address    TEXT,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS outbox_events (
    id              TEXT PRIMARY KEY,
    aggregate_id    UUID NOT NULL,
    event_type      TEXT NOT NULL,
    event_key       TEXT NOT NULL,
    payload         JSONB NOT NULL,
    status          TEXT NOT NULL DEFAULT 'PENDING',
    attempts        INT NOT NULL DEFAULT 0,
    next_attempt_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_error      TEXT,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_outbox_due ON outbox_events (next_attempt_at) WHERE status = 'PENDING';
`

// Migrate creates the tables the engine needs if they do not exist yet.
func Migrate(ctx context.Context, pool Pool, log zerolog.Logger) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	log.Info().Msg("database schema is up to date")
	return nil
}
