// Package lease provides per-execution leases so exactly one supervisor runs
// a given execution at a time.
package lease

import (
	"context"
	"errors"
	"time"
)

// ErrNotHeld is returned by Release when the caller does not own the lease.
var ErrNotHeld = errors.New("lease not held")

// DefaultTTL bounds how long a crashed supervisor can block an execution.
const DefaultTTL = 5 * time.Minute

// ExecutionLease guards an execution id. Acquire returns false when another
// holder owns the lease.
type ExecutionLease interface {
	Acquire(ctx context.Context, executionID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, executionID string) error
}
