package sched

import "github.com/proos-dev/kernel/proc"

// insertSleep inserts th into the ascending-deadline sleep list. Callers
// must hold s.qlock.
func (s *Scheduler) insertSleep(th *proc.Thread) {
	th.SleepNext = nil
	if s.sleep == nil || th.WakeDeadline < s.sleep.WakeDeadline {
		th.SleepNext = s.sleep
		s.sleep = th
		return
	}
	cur := s.sleep
	for cur.SleepNext != nil && cur.SleepNext.WakeDeadline <= th.WakeDeadline {
		cur = cur.SleepNext
	}
	th.SleepNext = cur.SleepNext
	cur.SleepNext = th
}

// removeSleep removes th from the sleep list if present. Callers must hold
// s.qlock.
func (s *Scheduler) removeSleep(th *proc.Thread) {
	if s.sleep == th {
		s.sleep = th.SleepNext
		th.SleepNext = nil
		return
	}
	for cur := s.sleep; cur != nil; cur = cur.SleepNext {
		if cur.SleepNext == th {
			cur.SleepNext = th.SleepNext
			th.SleepNext = nil
			return
		}
	}
}

// wakeDueSleepers pops every thread whose deadline has passed and boosts +
// re-enqueues it READY, in non-decreasing deadline order (spec.md §5
// ordering guarantee). Callers must hold s.qlock.
func (s *Scheduler) wakeDueSleepers(now uint64) {
	for s.sleep != nil && s.sleep.WakeDeadline <= now {
		th := s.sleep
		s.sleep = th.SleepNext
		th.SleepNext = nil
		th.WakeDeadline = 0
		s.wakeLocked(th)
	}
}
