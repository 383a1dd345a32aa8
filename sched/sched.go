// Package sched implements the kernel's scheduler: run queues, sleep list,
// dynamic priority, timeslice accounting, policy selection, and the
// block/wake choke point every other subsystem's blocking goes through
// (spec.md §4.3).
//
// There is no real hardware stack-pointer-switch trampoline in a Go
// program, so the "thread" of spec.md §3 is a goroutine parked on a
// per-thread handshake channel (proc.Thread.Resume); dispatching a thread
// means sending on that channel, and giving up the CPU means receiving on
// it again after handing control back to the scheduler loop on a shared
// channel. This is the task-and-parker design spec.md §9 explicitly allows
// as an alternative to a fiber/stack-switch model: "each waiter list holds
// a parker; wake unparks". The invariants of spec.md §8 are the oracle for
// whichever model is used.
//
// A timer interrupt can pause any single machine instruction; it cannot
// pause an arbitrary goroutine mid-loop. Tick-driven preemption is
// therefore cooperative at the granularity of Checkpoint calls: Tick sets a
// flag on the running thread, and the thread must call Checkpoint
// periodically (the way a real compute-bound kernel thread still takes
// interrupts between instructions) for that preemption to actually take
// effect. Yield, Sleep, and blocking IPC/sync calls all pass through the
// same hand-off and so are themselves checkpoints.
package sched

import (
	"sync"
	"sync/atomic"

	"github.com/proos-dev/kernel/klog"
	"github.com/proos-dev/kernel/kconfig"
	"github.com/proos-dev/kernel/kerr"
	"github.com/proos-dev/kernel/proc"
	"github.com/proos-dev/kernel/spinlock"
	"github.com/proos-dev/kernel/timing"
)

var log = klog.Get("sched")

// Scheduler owns the process table, run queues, and sleep list for one
// kernel instance.
type Scheduler struct {
	cfg   kconfig.Kernel
	table *proc.Table

	qlock    spinlock.Spinlock
	levels   []*readyLevel
	bitmap   uint32
	sleep    *proc.Thread // head of ascending-deadline singly-linked list

	tick    uint64 // monotonic, advanced only by Tick
	current *proc.Thread
	idle    *proc.Thread

	backCh chan struct{} // thread -> scheduler: "I'm giving up the CPU"
	stop   chan struct{}
	done   chan struct{}

	exitHooks []func(id int)

	timerMu sync.Mutex
	timer   *timing.CompactTimer // optional dispatch-latency trace, nil by default
}

type readyLevel struct {
	head, tail *proc.Thread
}

// PrioMax returns the numerically largest (lowest-priority) level.
func (s *Scheduler) PrioMax() int { return s.cfg.PrioMin + s.cfg.PrioLevels - 1 }

// New constructs a Scheduler and its idle thread, but does not start the
// loop; call Start to begin dispatching.
func New(cfg kconfig.Kernel, table *proc.Table) *Scheduler {
	s := &Scheduler{
		cfg:    cfg,
		table:  table,
		levels: make([]*readyLevel, cfg.PrioLevels),
		backCh: make(chan struct{}),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	for i := range s.levels {
		s.levels[i] = &readyLevel{}
	}
	s.idle = s.spawnIdle(func() { idleLoop(s) }, 4096)
	s.idle.BasePrio = s.PrioMax()
	s.idle.DynPrio = s.idle.BasePrio
	// The idle thread is always ready but never lives in a ready queue
	// slot of its own; select_next falls back to it explicitly (spawnIdle
	// never calls enqueueReady on it in the first place).
	return s
}

func idleLoop(s *Scheduler) {
	for {
		Checkpoint()
		Yield()
	}
}

// RegisterExitHook adds fn to the set of cleanup callbacks run, in
// registration order, when a thread exits -- used by kernel.Boot to wire in
// capability/mailbox/share/channel teardown without sched importing
// those packages (see spec.md §9's dependency-direction note).
func (s *Scheduler) RegisterExitHook(fn func(id int)) {
	s.exitHooks = append(s.exitHooks, fn)
}

// Table returns the underlying process table.
func (s *Scheduler) Table() *proc.Table { return s.table }

// Tick returns the current monotonic tick count.
func (s *Scheduler) Tick() uint64 { return atomic.LoadUint64(&s.tick) }

var active *Scheduler

// activate installs s as the package-level current scheduler, so that
// per-thread operations (Yield, Sleep, BlockCurrent, ...) that are called
// from inside a running thread's own goroutine -- without a handle to the
// Scheduler -- can reach it, the same way a real kernel has exactly one
// "current CPU" structure. The kernel is single-instance per process by
// design (spec.md §9: "a single init barrier... no re-initialization after
// boot").
func activate(s *Scheduler) { active = s }

func current() *Scheduler {
	if active == nil {
		panic("sched: no active scheduler (call kernel.Boot first)")
	}
	return active
}

func clampPrio(s *Scheduler, p int) int {
	if p < s.cfg.PrioMin {
		return s.cfg.PrioMin
	}
	if max := s.PrioMax(); p > max {
		return max
	}
	return p
}

// requireExists is a small helper shared by sched's public operations for
// validating a thread id before acting on it.
func (s *Scheduler) requireExists(id int) (*proc.Thread, error) {
	th := s.table.Lookup(id)
	if th == nil {
		return nil, kerr.NotFoundf("thread %d", id)
	}
	return th, nil
}
