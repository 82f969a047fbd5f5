package mutex

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/pipekit/errors"
)

// LocalLocker serializes lock holders within a single process. Each key is
// backed by a capacity-one channel semaphore.
type LocalLocker struct {
	mu      sync.Mutex
	keys    map[string]chan struct{}
	holders map[string]string // key -> holder token ID
}

// NewLocal creates an in-process locker.
func NewLocal() *LocalLocker {
	return &LocalLocker{
		keys:    make(map[string]chan struct{}),
		holders: make(map[string]string),
	}
}

func (l *LocalLocker) sem(name string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.keys[name]
	if !ok {
		ch = make(chan struct{}, 1)
		l.keys[name] = ch
	}
	return ch
}

// Acquire blocks until the named lock is free, the timeout elapses, or ctx
// is cancelled. On timeout the waiter fails with LOCK_ACQUISITION_TIMEOUT
// and holds nothing.
func (l *LocalLocker) Acquire(ctx context.Context, name string, timeout time.Duration) (*Token, error) {
	ch := l.sem(name)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		token := &Token{Name: name, ID: uuid.NewString(), AcquiredAt: time.Now()}
		l.mu.Lock()
		l.holders[name] = token.ID
		l.mu.Unlock()
		return token, nil
	case <-timer.C:
		return nil, errors.LockTimeout(name, timeout.String())
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release frees the lock held by token. Releasing a token that does not
// hold its lock is an error and frees nothing.
func (l *LocalLocker) Release(_ context.Context, token *Token) error {
	if token == nil {
		return errors.Conflict("release of nil lock token")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.holders[token.Name] != token.ID {
		return errors.Conflict("lock " + token.Name + " is not held by this token")
	}
	delete(l.holders, token.Name)
	<-l.keys[token.Name]
	return nil
}

var _ Locker = (*LocalLocker)(nil)
