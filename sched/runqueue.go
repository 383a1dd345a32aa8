package sched

import "github.com/proos-dev/kernel/proc"

// levelOf returns the ready-queue index for a thread's current dynamic
// priority. Callers must hold s.qlock.
func (s *Scheduler) levelOf(th *proc.Thread) int {
	return clampPrio(s, th.DynPrio) - s.cfg.PrioMin
}

// enqueueReady appends th to the FIFO for its current dynamic priority and
// sets the level's occupied bit (spec.md §3 invariant I2/I3). Callers must
// hold s.qlock.
func (s *Scheduler) enqueueReady(th *proc.Thread) {
	if th == s.idle {
		return
	}
	i := s.levelOf(th)
	lvl := s.levels[i]
	th.ReadyNext = nil
	if lvl.tail == nil {
		lvl.head, lvl.tail = th, th
	} else {
		lvl.tail.ReadyNext = th
		lvl.tail = th
	}
	th.OnRunQueue = true
	s.bitmap |= 1 << uint(i)
}

// removeReady removes th from whatever ready FIFO it is currently on, if
// any. Callers must hold s.qlock.
func (s *Scheduler) removeReady(th *proc.Thread) {
	if th == s.idle {
		return
	}
	for i, lvl := range s.levels {
		var prev *proc.Thread
		for cur := lvl.head; cur != nil; cur = cur.ReadyNext {
			if cur == th {
				if prev == nil {
					lvl.head = cur.ReadyNext
				} else {
					prev.ReadyNext = cur.ReadyNext
				}
				if lvl.tail == cur {
					lvl.tail = prev
				}
				cur.ReadyNext = nil
				th.OnRunQueue = false
				if lvl.head == nil {
					s.bitmap &^= 1 << uint(i)
				}
				return
			}
			prev = cur
		}
	}
}

// readyThreads returns every thread currently on some ready FIFO, across all
// levels, in level-then-FIFO order. Callers must hold s.qlock. The toy
// kernel's small, bounded ready set makes an O(total ready) scan acceptable
// for policy resolution (spec.md §4.3's DEADLINE/FAIR selection is defined
// over "all ready threads", not per-level).
func (s *Scheduler) readyThreads() []*proc.Thread {
	var out []*proc.Thread
	bm := s.bitmap
	for i := 0; bm != 0; i++ {
		if bm&1 != 0 {
			for cur := s.levels[i].head; cur != nil; cur = cur.ReadyNext {
				out = append(out, cur)
			}
		}
		bm >>= 1
	}
	return out
}

// lowestNonEmptyLevel returns the lowest occupied level index and true, or
// (0, false) if every level is empty; the O(L) fallback path of spec.md §4.3.
func (s *Scheduler) lowestNonEmptyLevel() (int, bool) {
	if s.bitmap == 0 {
		return 0, false
	}
	for i := 0; i < len(s.levels); i++ {
		if s.bitmap&(1<<uint(i)) != 0 {
			return i, true
		}
	}
	return 0, false
}

// OccupiedLevels returns the currently non-empty ready levels, for the
// debug view exposed by kernel.Kernel.ReadyLevels (cmd/proosd's snapshot
// subcommand).
func (s *Scheduler) OccupiedLevels() []int {
	f := s.qlock.LockSave()
	defer s.qlock.UnlockRestore(f)
	levels := make([]int, 0, len(s.levels))
	for i := 0; i < len(s.levels); i++ {
		if s.bitmap&(1<<uint(i)) != 0 {
			levels = append(levels, i)
		}
	}
	return levels
}
