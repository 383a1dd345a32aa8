package kconfig

import (
	"strconv"

	"github.com/proos-dev/kernel/kerr"
)

// Kernel is the typed, validated configuration for one kernel instance,
// covering the option table of spec.md §6.
type Kernel struct {
	MaxProcesses int // size of the slot table
	StackSize    int // default bytes per thread stack

	PrioLevels int // L (1..32)
	PrioMin    int // numerically smallest level id (highest priority)
	MaxBoost   int // steps of dynamic boost above base
	BaseSlice  int // ticks per unit timeslice

	BaseWeight    int // FAIR weight unit
	DefaultWeight int // FAIR weight when unspecified (0 given)

	MailboxCapacity int // per-mailbox slots (Qm)
	MsgMax          int // max payload bytes (Dmax)

	CapPerProc int // capability entries per thread (K)

	SharesPerProc  int // share attachments per thread
	ShareTableSize int // global share table size (Ns)

	ChannelCount        int // max number of channels
	ChannelQueue        int // per-channel ring size
	ChannelWaiters      int // per-channel waiter-list bound
	ChannelSubscribers  int // per-channel subscriber-list bound
	ChannelNameMax      int // max channel name length
	ProcChannelSlots    int // per-thread channel membership slots

	PageSize       int // share-region alignment unit
	UserSpaceLimit int // upper bound for user shareable addresses

	SyncMutexes    int // mutex pool size
	SyncSemaphores int // semaphore pool size
	SyncWaiters    int // per-mutex/semaphore waiter-list bound
}

// Default returns a Kernel configuration with the conservative defaults a
// small kernel boots with when no overrides are supplied.
func Default() Kernel {
	return Kernel{
		MaxProcesses: 64,
		StackSize:    16 * 1024,

		PrioLevels: 8,
		PrioMin:    0,
		MaxBoost:   2,
		BaseSlice:  4,

		BaseWeight:    1024,
		DefaultWeight: 1024,

		MailboxCapacity: 16,
		MsgMax:          256,

		CapPerProc: 8,

		SharesPerProc:  8,
		ShareTableSize: 64,

		ChannelCount:       16,
		ChannelQueue:       32,
		ChannelWaiters:     16,
		ChannelSubscribers: 16,
		ChannelNameMax:     32,
		ProcChannelSlots:   8,

		PageSize:       4096,
		UserSpaceLimit: 0x40000000,

		SyncMutexes:    32,
		SyncSemaphores: 32,
		SyncWaiters:    16,
	}
}

// Load builds a Kernel config by overlaying the given Raw key/value pairs on
// top of Default, validating ranges as it goes. Keys not present in raw keep
// their default value; keys present but not parseable as an integer, or out
// of range, produce a Kind-Invalid error and Load returns the zero Kernel.
func Load(raw *Raw) (Kernel, error) {
	k := Default()
	fields := []struct {
		key string
		dst *int
	}{
		{"max_processes", &k.MaxProcesses},
		{"stack_size", &k.StackSize},
		{"prio_levels", &k.PrioLevels},
		{"prio_min", &k.PrioMin},
		{"max_boost", &k.MaxBoost},
		{"base_slice", &k.BaseSlice},
		{"base_weight", &k.BaseWeight},
		{"default_weight", &k.DefaultWeight},
		{"mailbox_capacity", &k.MailboxCapacity},
		{"msg_max", &k.MsgMax},
		{"cap_per_proc", &k.CapPerProc},
		{"shares_per_proc", &k.SharesPerProc},
		{"share_table_size", &k.ShareTableSize},
		{"channel_count", &k.ChannelCount},
		{"channel_queue", &k.ChannelQueue},
		{"channel_waiters", &k.ChannelWaiters},
		{"channel_subscribers", &k.ChannelSubscribers},
		{"channel_name_max", &k.ChannelNameMax},
		{"proc_channel_slots", &k.ProcChannelSlots},
		{"page_size", &k.PageSize},
		{"user_space_limit", &k.UserSpaceLimit},
		{"sync_mutexes", &k.SyncMutexes},
		{"sync_semaphores", &k.SyncSemaphores},
		{"sync_waiters", &k.SyncWaiters},
	}
	if raw != nil {
		for _, f := range fields {
			s, err := raw.Get(f.key)
			if err != nil {
				if kerr.Is(err, kerr.NotFound) {
					continue
				}
				return Kernel{}, err
			}
			n, err := strconv.Atoi(s)
			if err != nil {
				return Kernel{}, kerr.Invalidf("config key %q: not an integer: %v", f.key, err)
			}
			*f.dst = n
		}
	}
	if k.DefaultWeight == 0 {
		k.DefaultWeight = k.BaseWeight
	}
	if err := k.Validate(); err != nil {
		return Kernel{}, err
	}
	return k, nil
}

// Validate checks the ranges spec.md §6 requires.
func (k Kernel) Validate() error {
	switch {
	case k.MaxProcesses <= 0:
		return kerr.Invalidf("max_processes must be positive, got %d", k.MaxProcesses)
	case k.PrioLevels < 1 || k.PrioLevels > 32:
		return kerr.Invalidf("prio_levels must be in [1,32], got %d", k.PrioLevels)
	case k.MaxBoost < 0:
		return kerr.Invalidf("max_boost must be non-negative, got %d", k.MaxBoost)
	case k.BaseSlice <= 0:
		return kerr.Invalidf("base_slice must be positive, got %d", k.BaseSlice)
	case k.BaseWeight <= 0:
		return kerr.Invalidf("base_weight must be positive, got %d", k.BaseWeight)
	case k.MailboxCapacity <= 0:
		return kerr.Invalidf("mailbox_capacity must be positive, got %d", k.MailboxCapacity)
	case k.MsgMax <= 0:
		return kerr.Invalidf("msg_max must be positive, got %d", k.MsgMax)
	case k.CapPerProc <= 0:
		return kerr.Invalidf("cap_per_proc must be positive, got %d", k.CapPerProc)
	case k.ShareTableSize <= 0:
		return kerr.Invalidf("share_table_size must be positive, got %d", k.ShareTableSize)
	case k.ChannelCount < 4:
		return kerr.Invalidf("channel_count must be at least 4 (the devmgr/module/logger/scheduler bootstrap channels), got %d", k.ChannelCount)
	case k.PageSize <= 0 || k.PageSize&(k.PageSize-1) != 0:
		return kerr.Invalidf("page_size must be a positive power of two, got %d", k.PageSize)
	case k.UserSpaceLimit <= 0:
		return kerr.Invalidf("user_space_limit must be positive, got %d", k.UserSpaceLimit)
	case k.SyncMutexes <= 0:
		return kerr.Invalidf("sync_mutexes must be positive, got %d", k.SyncMutexes)
	case k.SyncSemaphores <= 0:
		return kerr.Invalidf("sync_semaphores must be positive, got %d", k.SyncSemaphores)
	}
	return nil
}
