package lock

import (
	"context"
	"sync"
	"time"

	"github.com/oilmill/backend/internal/domain/shared"
)

// LocalLocker implements shared.Locker inside one process. It is used when
// redis is disabled; the database row locks still guard correctness.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// NewLocalLocker creates a LocalLocker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]chan struct{})}
}

func (l *LocalLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[key] = ch
	}
	return ch
}

// Obtain waits for key until ttl elapses or ctx is done
func (l *LocalLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (shared.Unlock, error) {
	ch := l.slot(key)
	timer := time.NewTimer(ttl)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
	case <-timer.C:
		return nil, shared.NewDomainError(shared.CodeConcurrencyConflict, "another posting holds "+key+", retry shortly")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() { <-ch })
		return nil
	}, nil
}

var _ shared.Locker = (*LocalLocker)(nil)
