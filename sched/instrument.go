package sched

import (
	"fmt"

	"github.com/proos-dev/kernel/timing"
)

// SetDispatchTimer attaches t as the scheduler's optional dispatch-latency
// trace: every subsequent dispatch pushes a child interval named after the
// dispatched thread's id before handing it the CPU, and pops it when control
// returns, the way a real kernel would instrument its own hot path without
// pulling in a full metrics stack. Pass nil to detach. The loop's behavior
// is identical whether or not a timer is attached; this is pure
// observability, never consulted by any scheduling decision.
func (s *Scheduler) SetDispatchTimer(t *timing.CompactTimer) {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	s.timer = t
}

// dispatchTimer returns the currently attached timer, if any.
func (s *Scheduler) dispatchTimer() *timing.CompactTimer {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	return s.timer
}

func threadLabel(id int) string {
	if id == 0 {
		return "idle"
	}
	return fmt.Sprintf("tid:%d", id)
}
