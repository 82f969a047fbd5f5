package mutex

import (
	"context"
	"time"
)

// Token represents ownership of a named lock by exactly one holder.
// Its lifetime is bounded by the holding stage's execution; a waiter whose
// acquisition timed out never receives a token and never releases one.
type Token struct {
	// Name is the lock key.
	Name string
	// ID uniquely identifies this holder, so a release can never free a
	// lock acquired by someone else.
	ID string
	// AcquiredAt is when the lock was granted.
	AcquiredAt time.Time
}

// Locker is the resource-lock collaborator interface. The orchestrator core
// assumes nothing about the backing implementation beyond these semantics:
//
//   - Acquire blocks until the caller is the sole holder of name, the
//     timeout elapses (ErrCodeLockTimeout), or ctx is cancelled. An
//     abandoned acquisition leaves no dangling request.
//   - Release frees the lock identified by token. It is called exactly once
//     on every exit path of the holding stage.
type Locker interface {
	Acquire(ctx context.Context, name string, timeout time.Duration) (*Token, error)
	Release(ctx context.Context, token *Token) error
}
