// Package spin provides a spin lock for short critical sections.
package spin

import (
	"runtime"
	"sync/atomic"
)

// Lock is a test-and-set spin lock. The zero value is unlocked. It
// implements sync.Locker.
type Lock struct {
	held atomic.Bool
}

// Lock spins until the lock is acquired, yielding the processor between
// attempts.
func (l *Lock) Lock() {
	for !l.TryLock() {
		for l.held.Load() {
			runtime.Gosched()
		}
	}
}

// TryLock acquires the lock if it is free.
func (l *Lock) TryLock() bool {
	return l.held.CompareAndSwap(false, true)
}

// Unlock releases the lock. Unlocking a free lock panics.
func (l *Lock) Unlock() {
	if !l.held.CompareAndSwap(true, false) {
		panic("spin: unlock of unlocked lock")
	}
}
