package lock

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	var m Mutex
	assert.False(t, m.Held())

	m.Acquire()
	assert.True(t, m.Held())

	m.Release()
	assert.False(t, m.Held())
}

func TestTryAcquire(t *testing.T) {
	var m Mutex

	ok, err := m.TryAcquire()
	require.NoError(t, err)
	require.True(t, ok)

	// Busy while held.
	ok, err = m.TryAcquire()
	require.NoError(t, err)
	assert.False(t, ok)

	m.Release()

	ok, err = m.TryAcquire()
	require.NoError(t, err)
	assert.True(t, ok)
	m.Release()
}

func TestReleaseUnheldBreaksMutex(t *testing.T) {
	var m Mutex

	var lockErr *LockError
	func() {
		defer func() {
			r := recover()
			require.NotNil(t, r, "release of an unheld mutex must panic")
			err, ok := r.(error)
			require.True(t, ok)
			require.True(t, errors.As(err, &lockErr))
		}()
		m.Release()
	}()
	assert.Equal(t, "release", lockErr.Op)
	assert.True(t, m.Broken())

	ok, err := m.TryAcquire()
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrBroken)

	assert.Panics(t, func() { m.Acquire() })
}

func TestDoReleasesOnErrorAndPanic(t *testing.T) {
	var m Mutex

	wantErr := errors.New("boom")
	err := m.Do(func() error { return wantErr })
	assert.ErrorIs(t, err, wantErr)
	assert.False(t, m.Held())

	assert.Panics(t, func() {
		_ = m.Do(func() error { panic("inside critical section") })
	})
	assert.False(t, m.Held(), "mutex must be released after a panic")
	assert.False(t, m.Broken())
}

func TestWith(t *testing.T) {
	var m Mutex
	v, err := With(&m, func() (int, error) {
		assert.True(t, m.Held())
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.False(t, m.Held())
}

// TestMutex_ConcurrentCounter verifies mutual exclusion under contention.
func TestMutex_ConcurrentCounter(t *testing.T) {
	var m Mutex
	counter := 0
	numGoroutines := 64
	perGoroutine := 1000

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				_ = m.Do(func() error {
					counter++
					return nil
				})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, numGoroutines*perGoroutine, counter)
}
