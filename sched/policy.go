package sched

import "github.com/proos-dev/kernel/proc"

// selectNext implements spec.md §4.3's three-step policy order. Callers
// must hold s.qlock; the returned thread (if any) has already been removed
// from its ready FIFO.
func (s *Scheduler) selectNext() *proc.Thread {
	ready := s.readyThreads()
	if len(ready) == 0 {
		return nil
	}

	// 1. DEADLINE: smallest deadline among deadline>0 threads, ties by
	// lower id.
	var best *proc.Thread
	for _, th := range ready {
		if th.SchedPolicy != proc.Deadline || th.Deadline == 0 {
			continue
		}
		if best == nil || th.Deadline < best.Deadline ||
			(th.Deadline == best.Deadline && th.ID < best.ID) {
			best = th
		}
	}
	if best != nil {
		s.removeReady(best)
		return best
	}

	// 2. FAIR: smallest vruntime among the remainder (FAIR threads, and
	// DEADLINE threads with no deadline set, which behave as plain FAIR
	// threads until given one). Ties are broken by FIFO/enqueue order, not
	// by id: ready is already level-then-FIFO ordered (readyThreads), so
	// keeping the first candidate seen on a tie (rather than preferring the
	// lowest id) reproduces round-robin dispatch among equal-vruntime
	// threads instead of always favoring the lowest id (spec.md §8 scenario
	// 1, invariant I6).
	best = nil
	for _, th := range ready {
		if best == nil || th.VRuntime < best.VRuntime {
			best = th
		}
	}
	if best != nil {
		s.removeReady(best)
		return best
	}

	// 3. Fallback: head of the highest-priority non-empty FIFO.
	if lvl, ok := s.lowestNonEmptyLevel(); ok {
		head := s.levels[lvl].head
		s.removeReady(head)
		return head
	}
	return nil
}
