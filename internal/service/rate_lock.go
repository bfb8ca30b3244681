package service

import (
	"sync"
	"time"

	"merchant-wallet-engine/internal/core/domain"

	"github.com/rs/zerolog"
)

// RateLockManager is the in-process table of rate locks. A lock is handed
// out at most once: Claim removes it, and only Restore can put it back.
type RateLockManager struct {
	mu    sync.Mutex
	locks map[string]domain.RateLock
	ttl   time.Duration
	now   func() time.Time
	log   zerolog.Logger
}

// NewRateLockManager builds a lock table. now may be nil.
func NewRateLockManager(ttl time.Duration, now func() time.Time, log zerolog.Logger) *RateLockManager {
	if now == nil {
		now = time.Now
	}
	return &RateLockManager{
		locks: make(map[string]domain.RateLock),
		ttl:   ttl,
		now:   now,
		log:   log,
	}
}

// Lock stamps an id and the validity window on l and stores it.
func (m *RateLockManager) Lock(l domain.RateLock) *domain.RateLock {
	now := m.now().UTC()
	l.ID = domain.NewRateLockID()
	l.LockedAt = now
	l.ExpiresAt = now.Add(m.ttl)

	m.mu.Lock()
	m.locks[l.ID] = l
	n := len(m.locks)
	m.mu.Unlock()

	rateLocksActive.Set(float64(n))
	return &l
}

// Get returns the lock while it is valid. An expired lock is deleted on access.
func (m *RateLockManager) Get(id string) *domain.RateLock {
	return m.take(id, false)
}

// Claim removes and returns a valid lock.
func (m *RateLockManager) Claim(id string) *domain.RateLock {
	return m.take(id, true)
}

func (m *RateLockManager) take(id string, remove bool) *domain.RateLock {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[id]
	if !ok {
		return nil
	}
	expired := l.IsExpired(m.now())
	if expired || remove {
		delete(m.locks, id)
		rateLocksActive.Set(float64(len(m.locks)))
	}
	if expired {
		return nil
	}
	return &l
}

// Restore puts back a claimed lock whose execution failed, if it is still valid.
func (m *RateLockManager) Restore(l *domain.RateLock) bool {
	if l == nil || l.IsExpired(m.now()) {
		return false
	}
	m.mu.Lock()
	m.locks[l.ID] = *l
	n := len(m.locks)
	m.mu.Unlock()

	rateLocksActive.Set(float64(n))
	return true
}

// Sweep drops every expired lock and reports how many were removed.
func (m *RateLockManager) Sweep() int {
	now := m.now()
	m.mu.Lock()
	removed := 0
	for id, l := range m.locks {
		if l.IsExpired(now) {
			delete(m.locks, id)
			removed++
		}
	}
	n := len(m.locks)
	m.mu.Unlock()

	rateLocksActive.Set(float64(n))
	if removed > 0 {
		m.log.Debug().Int("removed", removed).Msg("expired rate locks swept")
	}
	return removed
}

// Len returns the number of stored locks, expired or not.
func (m *RateLockManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
