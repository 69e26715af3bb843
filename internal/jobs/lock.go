package jobs

import "context"

// Lock makes one replica run a tick. Acquire reports false when another
// holder owns the lock.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}
