package sched

import "github.com/proos-dev/kernel/proc"

// Start activates s as the package's current scheduler and launches the
// dispatch loop in its own goroutine. It is the single init barrier of
// spec.md §9: calling Start twice, or calling any per-thread operation
// before Start, is a programming error.
func (s *Scheduler) Start() {
	activate(s)
	go s.loop()
}

// Stop requests the dispatch loop to halt after its current thread gives
// back control, and waits for it to do so.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

// loop is the scheduler's own goroutine: wake due sleepers, pick the next
// thread to run (or idle), dispatch it, account the whole run's vruntime
// accrual against it in one step (handleTick only tallies the raw ticks
// used; vrDelta scales that by weight once the run ends, spec.md §4.3), and
// either reclaim it (if it exited) or re-enqueue it (if it's still ready
// and wasn't re-enqueued by its own call path), forever (spec.md §4.3
// "Scheduler loop").
func (s *Scheduler) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			return
		default:
		}

		f := s.qlock.LockSave()
		s.wakeDueSleepers(s.Tick())
		next := s.selectNext()
		if next == nil {
			next = s.idle
		}
		next.Timeslice = s.grantTimeslice(next)
		next.Remaining = next.Timeslice
		next.UsedTicks = 0
		s.qlock.UnlockRestore(f)

		if t := s.dispatchTimer(); t != nil {
			t.Push(threadLabel(next.ID))
			s.dispatch(next)
			t.Pop()
		} else {
			s.dispatch(next)
		}

		f = s.qlock.LockSave()
		s.current = nil
		if next != s.idle {
			next.VRuntime += vrDelta(s.cfg.BaseWeight, next.Weight, next.UsedTicks)
			next.UsedTicks = 0
		}
		switch next.State {
		case proc.Zombie:
			s.table.ReclaimSlot(next)
		case proc.Ready:
			if !next.OnRunQueue && next != s.idle {
				s.enqueueReady(next)
			}
		default:
			// Waiting: the blocker (sleep, IPC, sync) is responsible for
			// having already recorded how this thread will be woken.
		}
		s.qlock.UnlockRestore(f)
	}
}
