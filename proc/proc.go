// Package proc implements the kernel's process (thread) table: the slot
// array and lifecycle bookkeeping that spec.md §3 describes as the fabric
// shared by the scheduler, IPC, and synchronization subsystems.
//
// Per spec.md §9's cycle-breaking note ("the share table is the arena,
// processes hold short lists of indices, never owning pointers"), this
// package holds no reference to the ipc/ or ksync/ packages: a Thread keeps
// only small index lists (attached share ids, joined channel ids), and the
// mailbox/capability/channel/mutex/semaphore state that conceptually
// belongs to a thread lives in those packages' own tables, keyed by thread
// id. This mirrors original_source/kernel/proc.h, which stores a struct
// process per slot but leaves the heavier IPC state (mailbox ring, cap
// table) as separate arrays indexed by pid.
package proc

import (
	"github.com/proos-dev/kernel/spinlock"
)

// State is a thread's lifecycle state (spec.md §3).
type State int

const (
	Unused State = iota
	Ready
	Running
	Waiting
	Zombie
)

func (s State) String() string {
	switch s {
	case Unused:
		return "UNUSED"
	case Ready:
		return "READY"
	case Running:
		return "RUNNING"
	case Waiting:
		return "WAITING"
	case Zombie:
		return "ZOMBIE"
	default:
		return "?"
	}
}

// Kind distinguishes kernel threads (never block on full/empty IPC the way
// a user thread does; see spec.md §4.4) from user threads.
type Kind int

const (
	User Kind = iota
	KernelThread
)

func (k Kind) String() string {
	if k == KernelThread {
		return "KERNEL"
	}
	return "USER"
}

// Policy selects how the scheduler orders a thread among the ready set
// (spec.md §4.3).
type Policy int

const (
	Fair Policy = iota
	Deadline
)

// IdleID is the reserved identity of the always-ready idle thread.
const IdleID = 0

// Thread is one process-table slot.
type Thread struct {
	ID    int
	State State
	Kind  Kind

	StackSize int
	SP        uintptr // saved stack pointer; the only context this platform needs
	Entry     func()

	BasePrio int
	DynPrio  int

	SchedPolicy Policy
	Weight      int    // FAIR weight, BASE_WEIGHT if unset
	Deadline    uint64 // absolute tick, 0 = none (DEADLINE)
	VRuntime    uint64 // FAIR virtual runtime accumulator

	Timeslice int // ticks granted on the current run
	Remaining int // ticks left on the current run
	UsedTicks int // ticks actually consumed so far on the current run, for vruntime accounting

	WakeDeadline uint64 // absolute tick, 0 = not sleeping
	OnRunQueue   bool

	ReadyNext *Thread // singly-linked ready-queue pointer
	SleepNext *Thread // singly-linked sleep-list pointer

	Shares   []int // attached shared-region ids
	Channels []int // joined channel ids

	WaitChannel int  // channel id this thread blocks on receiving from, or -1
	IPCWaiting  bool // true while parked on a mailbox/channel/sync waiter list

	ExitCode int

	// Resume is the handshake channel the scheduler sends on to dispatch
	// this thread, and the thread blocks on to await redispatch after
	// voluntarily giving up control. It stands in for the hardware
	// context-switch trampoline of spec.md §4.3: a goroutine parked on a
	// channel receive has its Go stack preserved exactly where it left
	// off, which is the platform's own "stack pointer is sufficient"
	// context in Go-native form.
	Resume chan struct{}

	// PreemptFlag is set by the tick handler when this thread should give
	// up the CPU at its next cooperative checkpoint (sched.Checkpoint),
	// since nothing can forcibly interrupt a running goroutine the way a
	// hardware timer interrupt forcibly interrupts a running instruction
	// stream. Accessed with sync/atomic.
	PreemptFlag int32
}

// Table is the fixed-capacity process table.
type Table struct {
	lock     spinlock.Spinlock
	slots    []Thread
	nextID   int
	capacity int
}

// NewTable allocates a process table with the given slot capacity.
func NewTable(capacity int) *Table {
	if capacity <= 0 {
		capacity = 1
	}
	t := &Table{slots: make([]Thread, capacity), nextID: 1, capacity: capacity}
	for i := range t.slots {
		t.slots[i].ID = -1
		t.slots[i].State = Unused
	}
	return t
}

// Capacity returns the fixed size of the table.
func (t *Table) Capacity() int { return t.capacity }

// allocID returns the next monotonically increasing identity, wrapping past
// overflow back to 1 (spec.md §4.2): never 0 (reserved for idle), never
// negative.
func (t *Table) allocID() int {
	id := t.nextID
	t.nextID++
	if t.nextID <= 0 {
		t.nextID = 1
	}
	return id
}

// AllocSlot returns a zero-initialized, newly-identified UNUSED slot (never
// reuses a ZOMBIE slot; only the scheduler reclaim path does that -- see
// ReclaimSlot). Returns nil if the table is full.
func (t *Table) AllocSlot() *Thread {
	f := t.lock.LockSave()
	defer t.lock.UnlockRestore(f)
	for i := range t.slots {
		if t.slots[i].State == Unused {
			id := t.allocID()
			t.slots[i] = Thread{ID: id, State: Ready, WaitChannel: -1}
			return &t.slots[i]
		}
	}
	return nil
}

// AllocIdleSlot reserves the slot at IdleID for the scheduler's idle
// thread. It may be called exactly once per table, before any AllocSlot
// call, so the idle thread always has the reserved identity 0 rather than
// consuming the first user-visible id (original_source/kernel/proc.h's
// idle task is PID 0).
func (t *Table) AllocIdleSlot() *Thread {
	f := t.lock.LockSave()
	defer t.lock.UnlockRestore(f)
	if t.slots[0].State != Unused || t.slots[0].ID != -1 {
		panic("proc: AllocIdleSlot called after the table was already in use")
	}
	t.slots[0] = Thread{ID: IdleID, State: Ready, WaitChannel: -1}
	return &t.slots[0]
}

// ReclaimSlot resets a ZOMBIE slot to UNUSED, making it available to
// AllocSlot again. Only the scheduler's loop may call this, after the
// dying thread's IPC/sync state has been released (spec.md §3 lifecycle).
func (t *Table) ReclaimSlot(th *Thread) {
	f := t.lock.LockSave()
	defer t.lock.UnlockRestore(f)
	if th.State != Zombie {
		panic("proc: ReclaimSlot on non-ZOMBIE thread")
	}
	*th = Thread{ID: -1, State: Unused}
}

// Lookup performs the linear scan spec.md §4.2 specifies: returns the slot
// whose id matches and whose state is not UNUSED, or nil.
func (t *Table) Lookup(id int) *Thread {
	f := t.lock.LockSave()
	defer t.lock.UnlockRestore(f)
	for i := range t.slots {
		if t.slots[i].ID == id && t.slots[i].State != Unused {
			return &t.slots[i]
		}
	}
	return nil
}

// Each calls fn for every live (non-UNUSED) slot, in slot order. fn must not
// call back into the table (Lookup/AllocSlot/ReclaimSlot), since Each holds
// the table spinlock for its duration.
func (t *Table) Each(fn func(*Thread)) {
	f := t.lock.LockSave()
	defer t.lock.UnlockRestore(f)
	for i := range t.slots {
		if t.slots[i].State != Unused {
			fn(&t.slots[i])
		}
	}
}
