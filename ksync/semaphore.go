package ksync

import (
	"github.com/proos-dev/kernel/kerr"
	"github.com/proos-dev/kernel/sched"
	"github.com/proos-dev/kernel/spinlock"
)

// Semaphore is a kernel-level counting semaphore (spec.md §4.5), modeled
// after the P()/V() naming of the teacher's nsync binary semaphore but
// generalized to an arbitrary non-negative count and blocking through
// sched.BlockCurrent rather than a channel of its own.
type Semaphore struct {
	sl      spinlock.Spinlock
	count   int
	waiters []int

	waiterBound int // 0 = unbounded
}

// NewSemaphore returns a Semaphore with the given initial count and a
// waiter list bounded at waiterBound entries (spec.md §6's sync_waiters); 0
// means unbounded.
func NewSemaphore(initial int, waiterBound int) (*Semaphore, error) {
	if initial < 0 {
		return nil, kerr.Invalidf("semaphore initial count must be non-negative, got %d", initial)
	}
	return &Semaphore{count: initial, waiterBound: waiterBound}, nil
}

// P decrements the semaphore, blocking the calling thread while the count
// is zero. If the waiter list is already at its configured bound, P returns
// a Kind-Full error immediately without parking the caller (spec.md §3).
func (s *Semaphore) P() error {
	f := s.sl.LockSave()
	if s.count > 0 {
		s.count--
		s.sl.UnlockRestore(f)
		return nil
	}
	if s.waiterBound > 0 && len(s.waiters) >= s.waiterBound {
		s.sl.UnlockRestore(f)
		return kerr.Fullf("semaphore waiter list full")
	}
	id := sched.CurrentID()
	s.waiters = append(s.waiters, id)
	s.sl.UnlockRestore(f)
	sched.BlockCurrent()
	return nil
}

// TryP attempts to decrement the semaphore without blocking.
func (s *Semaphore) TryP() bool {
	f := s.sl.LockSave()
	defer s.sl.UnlockRestore(f)
	if s.count == 0 {
		return false
	}
	s.count--
	return true
}

// V increments the semaphore, waking the longest-waiting blocked thread if
// one exists rather than incrementing the visible count (the count a
// waiter was promised is handed to it directly, never observed at zero by
// a third racer).
func (s *Semaphore) V() error {
	f := s.sl.LockSave()
	if len(s.waiters) > 0 {
		next := s.waiters[0]
		s.waiters = s.waiters[1:]
		s.sl.UnlockRestore(f)
		return sched.Wake(next)
	}
	s.count++
	s.sl.UnlockRestore(f)
	return nil
}

// Count returns the current visible count, for debug snapshots.
func (s *Semaphore) Count() int {
	f := s.sl.LockSave()
	defer s.sl.UnlockRestore(f)
	return s.count
}
