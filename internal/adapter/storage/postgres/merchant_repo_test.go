package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"merchant-wallet-engine/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var merchantCols = []string{"id", "email", "business_name", "status", "created_at", "updated_at"}

func TestMerchantRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	onboarded := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM merchants WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(merchantCols).
			AddRow(id, "caisse@kinmarket.cd", "Kin Market", "suspended", onboarded, onboarded))

	m, err := NewMerchantRepo(mock).GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "caisse@kinmarket.cd", m.Email)
	assert.Equal(t, domain.MerchantStatusSuspended, m.Status)
	assert.False(t, m.CanMoveFunds())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMerchantRepo_GetByID_Unknown(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery(`FROM merchants`).WithArgs(id).WillReturnRows(pgxmock.NewRows(merchantCols))

	m, err := NewMerchantRepo(mock).GetByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Nil(t, m)
}

func TestMerchantRepo_GetByID_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery(`FROM merchants`).WithArgs(id).WillReturnError(errors.New("conn reset"))

	_, err = NewMerchantRepo(mock).GetByID(context.Background(), id)
	assert.ErrorContains(t, err, "conn reset")
}
