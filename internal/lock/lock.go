// Package lock provides the mutual-exclusion primitive that guards the
// process-wide registries (the intern table and the type registry).
//
// Mutex wraps sync.Mutex and adds misuse detection plus scoped acquisition
// helpers.
package lock

import (
	"errors"
	"sync"
	"sync/atomic"
)

var (
	// ErrBroken is reported once a mutex has been misused. The state it guards
	// can no longer be trusted.
	ErrBroken = errors.New("lock: mutex is broken")

	errNotHeld = errors.New("release of a mutex that is not held")
)

// LockError describes a failure of the lock primitive itself. It is fatal:
// Acquire and Release panic with a *LockError.
type LockError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *LockError) Error() string {
	return "lock: " + e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *LockError) Unwrap() error { return e.Err }

// Locker is the portable lock interface.
type Locker interface {
	// Acquire blocks until the lock is held.
	Acquire()
	// TryAcquire returns immediately. It reports true when the lock was
	// acquired, false when it is busy, and an error when the lock is broken.
	TryAcquire() (bool, error)
	// Release releases a held lock.
	Release()
}

// Mutex is the default Locker. The zero value is an unlocked mutex.
// A Mutex must not be copied after first use.
type Mutex struct {
	mu     sync.Mutex
	held   atomic.Bool
	broken atomic.Bool
}

var _ Locker = (*Mutex)(nil)

// Acquire blocks until the mutex is held by the caller.
func (m *Mutex) Acquire() {
	if m.broken.Load() {
		panic(&LockError{Op: "acquire", Err: ErrBroken})
	}
	m.mu.Lock()
	m.held.Store(true)
}

// TryAcquire attempts to take the mutex without blocking.
func (m *Mutex) TryAcquire() (bool, error) {
	if m.broken.Load() {
		return false, &LockError{Op: "try-acquire", Err: ErrBroken}
	}
	if !m.mu.TryLock() {
		return false, nil
	}
	m.held.Store(true)
	return true, nil
}

// Release releases the mutex. Releasing a mutex that is not held marks it
// broken and panics with a *LockError.
func (m *Mutex) Release() {
	if !m.held.CompareAndSwap(true, false) {
		m.broken.Store(true)
		panic(&LockError{Op: "release", Err: errNotHeld})
	}
	m.mu.Unlock()
}

// Held reports whether some goroutine currently holds the mutex.
// The answer may be stale by the time the caller looks at it.
func (m *Mutex) Held() bool { return m.held.Load() }

// Broken reports whether the mutex has been misused.
func (m *Mutex) Broken() bool { return m.broken.Load() }

// Do runs fn with the mutex held and releases it on every exit path,
// including a panic inside fn.
func (m *Mutex) Do(fn func() error) error {
	m.Acquire()
	defer m.Release()
	return fn()
}

// With runs fn while holding l and returns its result. The lock is released
// on every exit path.
func With[T any](l Locker, fn func() (T, error)) (T, error) {
	l.Acquire()
	defer l.Release()
	return fn()
}
