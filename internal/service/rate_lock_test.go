package service

import (
	"testing"
	"time"

	"merchant-wallet-engine/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLockManager_LockAndGet(t *testing.T) {
	clock := newTestClock()
	m := NewRateLockManager(60*time.Second, clock.Now, newTestLogger())

	l := m.Lock(domain.RateLock{MerchantID: uuid.New(), From: domain.CurrencyUSD, To: domain.CurrencyCDF, Rate: dec("2900")})
	require.NotEmpty(t, l.ID)
	assert.Equal(t, clock.Now(), l.LockedAt)
	assert.Equal(t, clock.Now().Add(60*time.Second), l.ExpiresAt)

	clock.Advance(59 * time.Second)
	got := m.Get(l.ID)
	require.NotNil(t, got)
	assert.True(t, dec("2900").Equal(got.Rate))
	assert.Equal(t, 1, m.Len())

	clock.Advance(2 * time.Second)
	assert.Nil(t, m.Get(l.ID))
	assert.Equal(t, 0, m.Len(), "expired lock is dropped on access")
}

func TestRateLockManager_ClaimIsSingleUse(t *testing.T) {
	m := NewRateLockManager(time.Minute, nil, newTestLogger())
	l := m.Lock(domain.RateLock{MerchantID: uuid.New()})

	claimed := m.Claim(l.ID)
	require.NotNil(t, claimed)
	assert.Nil(t, m.Claim(l.ID))
	assert.Nil(t, m.Get("LOCK-unknown"))

	assert.True(t, m.Restore(claimed))
	assert.NotNil(t, m.Claim(l.ID))
}

func TestRateLockManager_RestoreRefusesExpired(t *testing.T) {
	clock := newTestClock()
	m := NewRateLockManager(time.Minute, clock.Now, newTestLogger())
	l := m.Lock(domain.RateLock{MerchantID: uuid.New()})

	claimed := m.Claim(l.ID)
	clock.Advance(time.Minute)
	assert.False(t, m.Restore(claimed))
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.Restore(nil))
}

func TestRateLockManager_Sweep(t *testing.T) {
	clock := newTestClock()
	m := NewRateLockManager(time.Minute, clock.Now, newTestLogger())
	m.Lock(domain.RateLock{})
	m.Lock(domain.RateLock{})
	clock.Advance(30 * time.Second)
	fresh := m.Lock(domain.RateLock{})

	clock.Advance(45 * time.Second)
	assert.Equal(t, 2, m.Sweep())
	assert.Equal(t, 1, m.Len())
	assert.NotNil(t, m.Get(fresh.ID))
	assert.Equal(t, 0, m.Sweep())
}
