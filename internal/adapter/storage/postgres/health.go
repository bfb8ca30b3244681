package postgres

import (
	"context"
	"errors"
)

var errSchemaMissing = errors.New("postgres: ledger schema is not migrated")

// HealthCheck reports the database healthy only when the ledger schema is
// reachable, so a fresh database that was never migrated shows as degraded.
type HealthCheck struct {
	pool Pool
}

func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	var ok bool
	if err := h.pool.QueryRow(ctx, `SELECT to_regclass('public.ledger_entries') IS NOT NULL`).Scan(&ok); err != nil {
		return err
	}
	if !ok {
		return errSchemaMissing
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "postgres"
}
