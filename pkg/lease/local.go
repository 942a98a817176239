package lease

import (
	"context"
	"sync"
	"time"
)

// LocalLease is an in-process lease for single-node deployments and tests.
type LocalLease struct {
	mu     sync.Mutex
	leases map[string]time.Time
	now    func() time.Time
}

func NewLocalLease() *LocalLease {
	return &LocalLease{
		leases: make(map[string]time.Time),
		now:    time.Now,
	}
}

func (l *LocalLease) Acquire(_ context.Context, executionID string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	expiry, held := l.leases[executionID]
	if held && l.now().Before(expiry) {
		return false, nil
	}

	l.leases[executionID] = l.now().Add(ttl)

	return true, nil
}

func (l *LocalLease) Release(_ context.Context, executionID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, held := l.leases[executionID]; !held {
		return ErrNotHeld
	}

	delete(l.leases, executionID)

	return nil
}
