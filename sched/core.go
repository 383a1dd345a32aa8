package sched

import (
	"sync/atomic"

	"github.com/proos-dev/kernel/kerr"
	"github.com/proos-dev/kernel/proc"
)

// Create allocates a new thread running entry on a stack of stackSize bytes
// and enqueues it READY at the kind's default priority (spec.md §4.3).
func Create(entry func(), stackSize int, kind proc.Kind) (int, error) {
	s := current()
	if stackSize <= 0 {
		stackSize = s.cfg.StackSize
	}
	th := s.spawn(entry, stackSize, kind)
	if th == nil {
		return 0, kerr.Exhaustedf("process table full")
	}
	if kind == proc.KernelThread {
		th.BasePrio = s.cfg.PrioMin
	} else {
		th.BasePrio = clampPrio(s, s.cfg.PrioMin+1)
	}
	th.DynPrio = th.BasePrio
	f := s.qlock.LockSave()
	s.removeReady(th) // undo spawn's default-level placement
	s.enqueueReady(th)
	s.qlock.UnlockRestore(f)
	log.Infof("create thread %d kind=%s prio=%d", th.ID, kind, th.BasePrio)
	return th.ID, nil
}

// grantTimeslice computes BASE_SLICE << min(dyn_prio-PRIO_MIN, 4), minimum 1.
func (s *Scheduler) grantTimeslice(th *proc.Thread) int {
	shift := th.DynPrio - s.cfg.PrioMin
	if shift > 4 {
		shift = 4
	}
	if shift < 0 {
		shift = 0
	}
	n := s.cfg.BaseSlice << uint(shift)
	if n < 1 {
		n = 1
	}
	return n
}

// demote moves dynamic priority one step toward PRIO_MAX (numerically
// larger), capped.
func (s *Scheduler) demote(th *proc.Thread) {
	th.DynPrio = clampPrio(s, th.DynPrio+1)
}

// boost raises dynamic priority up to (base - MAX_BOOST), clamped to
// PRIO_MIN.
func (s *Scheduler) boost(th *proc.Thread) {
	target := clampPrio(s, th.BasePrio-s.cfg.MaxBoost)
	if target < th.DynPrio {
		th.DynPrio = target
	}
}

// Yield resets the caller's dynamic priority to base, re-enqueues it READY,
// and switches to the scheduler.
func Yield() {
	s := current()
	th := s.mustSelf()
	f := s.qlock.LockSave()
	th.DynPrio = th.BasePrio
	th.State = proc.Ready
	s.enqueueReady(th)
	s.qlock.UnlockRestore(f)
	switchToScheduler(s, th)
}

// Checkpoint is a cooperative preemption point: if the tick handler has
// requested preemption of the calling thread, it yields now (demoted, not
// reset to base); otherwise it returns immediately. A long-running thread
// must call this periodically for tick-driven preemption to take effect
// (see the package doc).
func Checkpoint() {
	s := current()
	th := s.mustSelf()
	if !atomic.CompareAndSwapInt32(&th.PreemptFlag, 1, 0) {
		return
	}
	f := s.qlock.LockSave()
	th.State = proc.Ready
	s.enqueueReady(th)
	s.qlock.UnlockRestore(f)
	switchToScheduler(s, th)
}

// BlockCurrent marks the calling thread WAITING, clears its remaining
// timeslice, and switches to the scheduler. The caller must already have
// arranged, before calling this, for some future Wake (spec.md §4.3): per
// spec.md §4.1 no spinlock may still be held when BlockCurrent is called.
func BlockCurrent() {
	s := current()
	th := s.mustSelf()
	f := s.qlock.LockSave()
	th.State = proc.Waiting
	th.Remaining = 0
	s.qlock.UnlockRestore(f)
	switchToScheduler(s, th)
}

// wakeLocked is the shared body of Wake, usable both from the sleep list
// (already under qlock) and from Wake itself.
func (s *Scheduler) wakeLocked(th *proc.Thread) {
	s.removeSleep(th)
	s.boost(th)
	th.State = proc.Ready
	th.IPCWaiting = false
	th.WaitChannel = -1
	s.enqueueReady(th)
}

// Wake transitions a WAITING thread back to READY, boosting its dynamic
// priority. It is valid only for threads currently WAITING (spec.md §4.3);
// waking a thread in any other state is a no-op aside from the id lookup.
func Wake(id int) error {
	s := current()
	th, err := s.requireExists(id)
	if err != nil {
		return err
	}
	f := s.qlock.LockSave()
	defer s.qlock.UnlockRestore(f)
	if th.State != proc.Waiting {
		return nil
	}
	s.wakeLocked(th)
	return nil
}

// Sleep parks the calling thread until at least ticks ticks have elapsed
// (spec.md §4.3, law L2): wake_deadline = now + max(ticks, 1).
func Sleep(ticks uint64) {
	s := current()
	th := s.mustSelf()
	if ticks < 1 {
		ticks = 1
	}
	f := s.qlock.LockSave()
	th.WakeDeadline = s.Tick() + ticks
	th.State = proc.Waiting
	th.Remaining = 0
	s.insertSleep(th)
	s.qlock.UnlockRestore(f)
	switchToScheduler(s, th)
}

// exitCurrent is the trampoline-side call spec.md §4.3's exit(code): it
// never returns to its caller because the calling goroutine terminates
// right after handing control back to the scheduler.
func exitCurrent(code int) {
	s := current()
	th := s.mustSelf()
	f := s.qlock.LockSave()
	th.State = proc.Zombie
	th.ExitCode = code
	th.OnRunQueue = false
	s.qlock.UnlockRestore(f)
	for _, hook := range s.exitHooks {
		hook(th.ID)
	}
	log.Infof("exit thread %d code=%d", th.ID, code)
	exitSignal(s)
}

// Exit is the public operation a running thread calls to terminate itself
// voluntarily with the given code. It never returns.
func Exit(code int) {
	exitCurrent(code)
	select {} // park the exited thread's goroutine forever; it is never resumed
}

// SetScheduler validates and applies a policy change (spec.md §4.3).
func SetScheduler(id int, policy proc.Policy, weight int, deadline uint64) error {
	s := current()
	th, err := s.requireExists(id)
	if err != nil {
		return err
	}
	switch policy {
	case proc.Fair:
		if weight == 0 {
			weight = s.cfg.DefaultWeight
		}
		f := s.qlock.LockSave()
		th.SchedPolicy = proc.Fair
		th.Weight = weight
		s.qlock.UnlockRestore(f)
	case proc.Deadline:
		f := s.qlock.LockSave()
		th.SchedPolicy = proc.Deadline
		if deadline == 0 {
			th.Deadline = 0
		} else if deadline < s.Tick() {
			th.Deadline = s.Tick() + deadline
		} else {
			th.Deadline = deadline
		}
		s.qlock.UnlockRestore(f)
	default:
		return kerr.Invalidf("unknown policy %v", policy)
	}
	return nil
}

// mustSelf returns the thread currently dispatched on the CPU, panicking if
// called with none running -- a broken-invariant condition (spec.md §7),
// since only the scheduler loop's dispatch can make a call chain that is not
// running a thread end up here.
func (s *Scheduler) mustSelf() *proc.Thread {
	if s.current == nil {
		panic("sched: no thread currently RUNNING")
	}
	return s.current
}

// CurrentID returns the id of the thread currently dispatched on the CPU.
func CurrentID() int {
	return current().mustSelf().ID
}
