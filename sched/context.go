package sched

import "github.com/proos-dev/kernel/proc"

// spawn allocates a thread slot and starts its goroutine parked on Resume,
// implementing the "new thread's stack is primed so that on first dispatch
// it enters a trampoline that calls entry() then exit(0)" bootstrap of
// spec.md §4.3. The goroutine never runs entry until the scheduler loop
// first sends on th.Resume.
func (s *Scheduler) spawn(entry func(), stackSize int, kind proc.Kind) *proc.Thread {
	th := s.table.AllocSlot()
	if th == nil {
		return nil
	}
	return s.startThread(th, entry, stackSize, kind, true)
}

// spawnIdle is identical to spawn except it reserves proc.IdleID (0) for
// the idle thread instead of consuming the first user-visible id
// (original_source/kernel/proc.h's idle task is PID 0), and never places it
// on a ready FIFO: the idle thread is select_next's implicit fallback
// (spec.md §4.3), not a level-0 occupant competing with real threads for
// dispatch. Must be called before any other spawn on this table.
func (s *Scheduler) spawnIdle(entry func(), stackSize int) *proc.Thread {
	th := s.table.AllocIdleSlot()
	return s.startThread(th, entry, stackSize, proc.KernelThread, false)
}

func (s *Scheduler) startThread(th *proc.Thread, entry func(), stackSize int, kind proc.Kind, enqueue bool) *proc.Thread {
	th.Kind = kind
	th.StackSize = stackSize
	th.Entry = entry
	th.Resume = make(chan struct{}, 1)
	th.SchedPolicy = proc.Fair
	th.Weight = s.cfg.BaseWeight
	th.WaitChannel = -1

	if enqueue {
		f := s.qlock.LockSave()
		s.enqueueReady(th)
		s.qlock.UnlockRestore(f)
	}

	go func() {
		<-th.Resume
		entry()
		exitCurrent(0)
	}()
	return th
}

// dispatch hands the CPU to th and blocks the scheduler loop until th gives
// it back (by voluntarily yielding, blocking, sleeping, or exiting).
func (s *Scheduler) dispatch(th *proc.Thread) {
	s.current = th
	th.State = proc.Running
	th.Resume <- struct{}{}
	<-s.backCh
}

// switchToScheduler is the thread-side half of the context-switch contract:
// the calling goroutine hands control back to the scheduler loop and parks
// on its own Resume channel until redispatched. It must be called with no
// spinlock held (spec.md §4.1).
func switchToScheduler(s *Scheduler, th *proc.Thread) {
	s.backCh <- struct{}{}
	<-th.Resume
}

// exitSignal is the thread-side half used only by exit: control is handed
// back once, and the goroutine then returns for good, so it must not park on
// Resume again.
func exitSignal(s *Scheduler) {
	s.backCh <- struct{}{}
}
