package postgres

import (
	"context"
	"errors"
	"fmt"

	"merchant-wallet-engine/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const merchantColumns = `id, email, business_name, status, created_at, updated_at`

// MerchantRepo reads the merchants table populated by onboarding.
type MerchantRepo struct {
	pool Pool
}

func NewMerchantRepo(pool Pool) *MerchantRepo {
	return &MerchantRepo{pool: pool}
}

// GetByID returns nil, nil for an unknown merchant.
func (r *MerchantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+merchantColumns+` FROM merchants WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("query merchant %s: %w", id, err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, scanMerchant)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan merchant %s: %w", id, err)
	}
	return m, nil
}

func scanMerchant(row pgx.CollectableRow) (*domain.Merchant, error) {
	var (
		m      domain.Merchant
		status string
	)
	if err := row.Scan(&m.ID, &m.Email, &m.BusinessName, &status, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Status = domain.MerchantStatus(status)
	return &m, nil
}
