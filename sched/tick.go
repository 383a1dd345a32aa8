package sched

import (
	"sync/atomic"

	"github.com/proos-dev/kernel/spinlock"
)

// Tick is the scheduler's timer-interrupt entry point: it bumps the
// monotonic tick counter and defers the actual accounting work until
// interrupts are enabled again (spec.md §4.1's "tick handler runs with
// interrupts disabled, deferred if nested"), mirroring how a real ISR keeps
// its critical section minimal.
func Tick() {
	s := current()
	atomic.AddUint64(&s.tick, 1)
	spinlock.DeferUntilEnabled(func() { s.handleTick() })
}

// handleTick accounts one tick of CPU time against the running thread and,
// if its timeslice is exhausted, demotes it and requests preemption at its
// next Checkpoint. The actual vruntime accrual is deferred to the end of
// the thread's run (see vrDelta/sched/loop.go): spec.md §4.3 scales the
// *run's* used_ticks by BASE_WEIGHT/weight as a single product, not a
// per-tick one, so only UsedTicks -- the raw, unweighted tick count -- is
// accumulated here. Sleepers are woken by the dispatch loop itself on its
// next iteration, not here, since waking them doesn't need to race the
// currently-running thread's accounting.
func (s *Scheduler) handleTick() {
	f := s.qlock.LockSave()
	defer s.qlock.UnlockRestore(f)

	th := s.current
	if th == nil || th == s.idle {
		return
	}
	th.UsedTicks++
	if th.Remaining > 0 {
		th.Remaining--
	}
	if th.Remaining <= 0 {
		s.demote(th)
		atomic.StoreInt32(&th.PreemptFlag, 1)
	}
}

func max1(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

// vrDelta computes one run's vruntime accrual: used_ticks*baseWeight/weight,
// clamped to at least 1 whenever used_ticks > 0 (spec.md §4.3: "clamped to
// >= 1 when the true value rounds to 0 but any time was used"). The clamp
// applies once per run, not once per tick, so a thread with weight >
// baseWeight still accrues less vruntime than a baseWeight thread over a
// multi-tick run instead of the clamp flattening every weight above
// baseWeight to the same 1-per-tick rate.
func vrDelta(baseWeight, weight, usedTicks int) uint64 {
	if usedTicks <= 0 {
		return 0
	}
	d := uint64(usedTicks) * uint64(baseWeight) / uint64(max1(weight))
	if d < 1 {
		d = 1
	}
	return d
}
