// Package kernel wires the process table, scheduler, IPC subsystems, and
// synchronization primitives into one bootable instance (spec.md §9's init
// order: proc, then sched, then ipc/capability, ipc/mailbox, ipc/shared,
// ipc/channel, then ksync), and exposes the snapshot query spec.md §6
// promises collaborators.
package kernel

import (
	"github.com/proos-dev/kernel/internal/lockorder"
	"github.com/proos-dev/kernel/ipc/capability"
	"github.com/proos-dev/kernel/ipc/channel"
	"github.com/proos-dev/kernel/ipc/mailbox"
	"github.com/proos-dev/kernel/ipc/shared"
	"github.com/proos-dev/kernel/kconfig"
	"github.com/proos-dev/kernel/klog"
	"github.com/proos-dev/kernel/ksync"
	"github.com/proos-dev/kernel/proc"
	"github.com/proos-dev/kernel/sched"
	"github.com/proos-dev/kernel/timing"
)

var log = klog.Get("kernel")

// Kernel is one booted instance of the core: the scheduler plus every IPC
// and synchronization table, already cross-wired via exit hooks so that a
// dying thread's mailbox, capabilities, shares, and channel memberships are
// released before its slot is reclaimed (spec.md §3's ZOMBIE invariant).
type Kernel struct {
	cfg kconfig.Kernel

	Scheduler    *sched.Scheduler
	Capabilities *capability.Table
	Mailboxes    *mailbox.Table
	Shares       *shared.Table
	Channels     *channel.Table
	Sync         *ksync.Registry
}

// Boot constructs and starts one Kernel instance. Only one Kernel may be
// booted per process (spec.md §9: "a single init barrier... no
// re-initialization after boot") since sched.Scheduler.Start installs a
// single package-level active scheduler.
func Boot(cfg kconfig.Kernel) (*Kernel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := lockorder.Default().Check(); err != nil {
		return nil, err
	}

	table := proc.NewTable(cfg.MaxProcesses)
	s := sched.New(cfg, table)

	caps := capability.NewTable(cfg.CapPerProc)
	boxes := mailbox.NewTable(cfg.MailboxCapacity, cfg.MsgMax, table, caps)
	shares := shared.NewTable(cfg.ShareTableSize, cfg.SharesPerProc, cfg.PageSize, uintptr(cfg.UserSpaceLimit), table, caps)
	channels := channel.NewTable(cfg.ChannelCount, cfg.ChannelQueue, cfg.ChannelWaiters, cfg.ChannelSubscribers, cfg.ChannelNameMax, cfg.ProcChannelSlots, table)
	syncPool := ksync.NewRegistry(cfg.SyncMutexes, cfg.SyncSemaphores, cfg.SyncWaiters)

	s.RegisterExitHook(func(id int) {
		caps.Release(id)
		boxes.Release(id)
		shares.DetachAll(id)
		channels.LeaveAll(id)
	})

	k := &Kernel{
		cfg:          cfg,
		Scheduler:    s,
		Capabilities: caps,
		Mailboxes:    boxes,
		Shares:       shares,
		Channels:     channels,
		Sync:         syncPool,
	}

	s.Start()
	log.Infof("booted: max_processes=%d prio_levels=%d channel_count=%d", cfg.MaxProcesses, cfg.PrioLevels, cfg.ChannelCount)
	return k, nil
}

// Shutdown stops the scheduler loop. It does not reclaim any already-booted
// state; a process intending to boot again should exit instead (spec.md
// §9's single-instance design).
func (k *Kernel) Shutdown() {
	k.Scheduler.Stop()
	log.Infof("shutdown")
}

// Spawn creates a new thread and registers its mailbox, matching the
// "mailbox exists for every live thread" invariant (spec.md §3).
func (k *Kernel) Spawn(entry func(), stackSize int, kind proc.Kind) (int, error) {
	id, err := sched.Create(entry, stackSize, kind)
	if err != nil {
		return 0, err
	}
	k.Mailboxes.Create(id)
	return id, nil
}

// Snapshot returns the per-thread debug view spec.md §6 promises.
func (k *Kernel) Snapshot() []proc.Info {
	return k.Scheduler.Table().Snapshot()
}

// ReadyLevels returns the currently non-empty ready-queue priority levels,
// for the "ps"-style debug dump of cmd/proosd's snapshot subcommand.
func (k *Kernel) ReadyLevels() []int {
	return k.Scheduler.OccupiedLevels()
}

// TraceDispatch attaches a dispatch-latency timer named name to the
// scheduler and returns it, for callers (cmd/proosd's demo subcommand) that
// want a human-readable trace of which thread ran when. Pass the returned
// timer's String() to a log or stdout once done; detach with
// StopTraceDispatch.
func (k *Kernel) TraceDispatch(name string) *timing.CompactTimer {
	t := timing.NewCompactTimer(name)
	k.Scheduler.SetDispatchTimer(t)
	return t
}

// StopTraceDispatch detaches the current dispatch trace, if any. It does not
// call Finish on the timer; the caller does that before reading it.
func (k *Kernel) StopTraceDispatch() {
	k.Scheduler.SetDispatchTimer(nil)
}
