// Package spinlock implements the kernel's interrupt-safe mutual exclusion
// primitive: a scoped lock held with "interrupts disabled" for its critical
// section, guaranteed to release on every exit path (spec.md §4.1).
//
// The CAS-and-spin discipline is grounded on the teacher's own spinlock,
// nsync/common.go's spinTestAndSet/spinDelay (used there to protect nsync's
// Mu/CV waiter queues). This package generalizes that into a named type with
// the kernel's lock_save/unlock_restore contract: the returned Flags records
// whether interrupts were already disabled by an outer caller, so nested
// acquisitions on a uniprocessor restore correctly.
//
// There really is no hardware interrupt to disable here; what the kernel
// core needs from "interrupts disabled" is that the timer tick (the one
// asynchronous collaborator, per spec.md §6) cannot run scheduler logic
// while a spinlock-guarded critical section is in progress (spec.md §5: "no
// preemption mid-critical-section"). A package-level nesting counter models
// that: Tick observes the counter and defers its scheduling work, running it
// once the last held spinlock releases.
package spinlock

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Spinlock guards a piece of kernel data. The zero value is ready to use.
type Spinlock struct {
	mu    sync.Mutex
	state uint32 // 0 = free, 1 = held; LockSave spins on a CAS of this word
}

// Flags is the opaque token returned by LockSave and consumed by
// UnlockRestore. It records whether this acquisition was the outermost one,
// i.e. whether interrupts were enabled at entry (no Spinlock held anywhere in
// the process; the nesting counter is shared by all goroutines).
type Flags struct {
	outermost bool
}

var irqDepth int32

// pendingMu guards the onEnabled hook list; it is a plain mutex, not a
// Spinlock, since it only ever protects a short, non-blocking registration
// list and must remain usable even while all Spinlocks are "disabled".
var pendingMu sync.Mutex
var onEnabled []func()

// spinDelay backs off a spinning loop the way nsync/common.go does: a few
// busy iterations, then yield the goroutine.
func spinDelay(attempts uint) uint {
	if attempts < 7 {
		for i := 0; i != 1<<attempts; i++ {
		}
		attempts++
	} else {
		runtime.Gosched()
	}
	return attempts
}

// LockSave acquires the lock, disabling interrupts for the duration of the
// critical section, and returns the flags needed to restore the prior
// interrupt state. No blocking call (anything that reaches sched.BlockCurrent)
// may be made while any Spinlock is held (spec.md §4.1).
func (s *Spinlock) LockSave() Flags {
	outermost := atomic.AddInt32(&irqDepth, 1) == 1
	var attempts uint
	for !atomic.CompareAndSwapUint32(&s.state, 0, 1) {
		attempts = spinDelay(attempts)
	}
	s.mu.Lock()
	return Flags{outermost: outermost}
}

// UnlockRestore releases the lock and, once the release brings the nesting
// counter back to zero, re-enables interrupts and runs any scheduling work
// that a Tick deferred while they were disabled.
func (s *Spinlock) UnlockRestore(f Flags) {
	s.mu.Unlock()
	atomic.StoreUint32(&s.state, 0)
	if !f.outermost {
		if atomic.AddInt32(&irqDepth, -1) == 0 {
			runPending()
		}
		return
	}
	if atomic.AddInt32(&irqDepth, -1) != 0 {
		return
	}
	runPending()
}

func runPending() {
	pendingMu.Lock()
	hooks := onEnabled
	onEnabled = nil
	pendingMu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

// Disabled reports whether interrupts are currently disabled, i.e. whether
// some Spinlock is held anywhere in the process.
func Disabled() bool {
	return atomic.LoadInt32(&irqDepth) != 0
}

// DeferUntilEnabled queues fn to run once interrupts become enabled again
// (irqDepth returns to zero). If interrupts are already enabled, fn runs
// immediately. Used by the timer tick to defer scheduler work that must not
// run inside someone else's critical section.
func DeferUntilEnabled(fn func()) {
	if !Disabled() {
		fn()
		return
	}
	pendingMu.Lock()
	onEnabled = append(onEnabled, fn)
	pendingMu.Unlock()
}
