// Package ksync implements the kernel's mutex and counting semaphore
// primitives (spec.md §4.5), built on the same spinlock-protected waiter
// queue shape as the teacher's nsync.Mu and nsync's binary semaphore, but
// re-targeted: waiters here block via sched.BlockCurrent and are released
// via sched.Wake instead of nsync's own internal binary semaphore, since a
// kernel thread can only give up the CPU through the scheduler's choke
// point (spec.md §4.1).
//
// Ownership transfers directly to the woken waiter on Unlock, the same
// "designated waker" idea nsync/mu.go uses to avoid a thundering herd: the
// lock stays logically held across the handoff so a third thread racing in
// cannot steal it ahead of the waiter that was already queued.
package ksync

import (
	"github.com/proos-dev/kernel/kerr"
	"github.com/proos-dev/kernel/sched"
	"github.com/proos-dev/kernel/spinlock"
)

// Mutex is a kernel-level sleeping mutex: a thread that cannot acquire it
// immediately blocks (leaves the ready set entirely) rather than spinning.
type Mutex struct {
	sl      spinlock.Spinlock
	locked  bool
	owner   int
	waiters []int // FIFO of blocked thread ids

	waiterBound int // 0 = unbounded
}

// NewMutex returns an unlocked Mutex whose waiter list is bounded at
// waiterBound entries (spec.md §6's sync_waiters); 0 means unbounded.
func NewMutex(waiterBound int) *Mutex { return &Mutex{owner: -1, waiterBound: waiterBound} }

// TryLock attempts to acquire the mutex without blocking. A self-owned
// mutex (the calling thread already holds it) succeeds as a recursive
// re-lock no-op, per spec.md §4.7.
func (m *Mutex) TryLock() bool {
	f := m.sl.LockSave()
	defer m.sl.UnlockRestore(f)
	id := sched.CurrentID()
	if m.locked && m.owner == id {
		return true
	}
	if m.locked {
		return false
	}
	m.locked = true
	m.owner = id
	return true
}

// Lock blocks the calling thread until the mutex is free, then acquires it.
// If the caller already owns the mutex, Lock is a no-op (recursive re-lock,
// spec.md §4.7). If the waiter list is already at its configured bound, Lock
// returns a Kind-Full error immediately without parking the caller (spec.md
// §3: "all bounded waiter lists never overflow silently; enqueue fails with
// an error").
func (m *Mutex) Lock() error {
	f := m.sl.LockSave()
	id := sched.CurrentID()
	if m.locked && m.owner == id {
		m.sl.UnlockRestore(f)
		return nil
	}
	if !m.locked {
		m.locked = true
		m.owner = id
		m.sl.UnlockRestore(f)
		return nil
	}
	if m.waiterBound > 0 && len(m.waiters) >= m.waiterBound {
		m.sl.UnlockRestore(f)
		return kerr.Fullf("mutex waiter list full")
	}
	m.waiters = append(m.waiters, id)
	m.sl.UnlockRestore(f)
	sched.BlockCurrent()
	// Woken by Unlock's direct handoff: ownership is already ours.
	return nil
}

// Unlock releases the mutex. It requires owner == caller (spec.md §4.7). If
// a thread is waiting, ownership transfers directly to it (the mutex stays
// "locked" across the handoff) instead of being reopened for any thread to
// race for.
func (m *Mutex) Unlock() error {
	f := m.sl.LockSave()
	if !m.locked {
		m.sl.UnlockRestore(f)
		return kerr.Invalidf("unlock of unlocked mutex")
	}
	if m.owner != sched.CurrentID() {
		m.sl.UnlockRestore(f)
		return kerr.Deniedf("unlock by non-owner")
	}
	if len(m.waiters) > 0 {
		next := m.waiters[0]
		m.waiters = m.waiters[1:]
		m.owner = next
		m.sl.UnlockRestore(f)
		return sched.Wake(next)
	}
	m.locked = false
	m.owner = -1
	m.sl.UnlockRestore(f)
	return nil
}

// Locked reports whether the mutex is currently held, for debug snapshots.
func (m *Mutex) Locked() bool {
	f := m.sl.LockSave()
	defer m.sl.UnlockRestore(f)
	return m.locked
}
