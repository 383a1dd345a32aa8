// Package channel implements the kernel's named publish/subscribe message
// channels (spec.md §4.6): a fixed set of named rings, each with a bounded
// subscriber list and a bounded waiter list for blocking receive. The named-
// stream-with-description shape (CreateStream/ForkStream/Latest in the
// teacher's pubsub package) is the model for Create/Join/Leave here, though
// pubsub forks a live Go channel per subscriber while this package's
// subscribers share one ring and block through sched.BlockCurrent like
// every other IPC wait path in this kernel.
package channel

import (
	"github.com/proos-dev/kernel/kerr"
	"github.com/proos-dev/kernel/proc"
	"github.com/proos-dev/kernel/ring"
	"github.com/proos-dev/kernel/sched"
	"github.com/proos-dev/kernel/set"
	"github.com/proos-dev/kernel/spinlock"
)

// Flag bits on a channel or a message.
const (
	FlagKernel    uint32 = 1 << iota // channel carries kernel-origin traffic without subscription
	FlagNonblock                     // receive: return immediately if empty
	FlagTruncated                    // set on the returned header when size > blen
)

// Service enumerates the well-known bootstrap channels spec.md §6 requires
// the channel subsystem to publish at initialization.
type Service int

const (
	DeviceManager Service = iota
	ModuleLoader
	Logger
	Scheduler
)

var serviceNames = map[Service]string{
	DeviceManager: "devmgr",
	ModuleLoader:  "module",
	Logger:        "logger",
	Scheduler:     "scheduler",
}

// Message is one channel ring slot.
type Message struct {
	Type   uint32
	Sender int
	Flags  uint32
	Size   int
	Data   []byte
}

type chanState struct {
	sl          spinlock.Spinlock
	name        string
	flags       uint32
	ring        *ring.Ring[Message]
	subscribers map[int]struct{} // membership only, no ordering needed
	waiters     []int            // FIFO: first blocked receiver wakes first
}

// Table owns the kernel's fixed channel set. Its own spinlock guards only
// the name/id maps; each channel's ring has its own spinlock (spec.md §5:
// "one spinlock per... channel").
type Table struct {
	sl spinlock.Spinlock

	queueSize   int
	waiterBound int
	subBound    int
	nameMax     int
	maxChannels int
	procSlots   int

	table *proc.Table

	byID   map[int]*chanState
	byName map[string]int
	nextID int

	services map[Service]int
}

// NewTable constructs an empty channel Table and publishes the four
// KERNEL-flagged bootstrap channels spec.md §6 and §4.6 require
// (device-manager, module-loader, logger, scheduler).
func NewTable(maxChannels, queueSize, waiterBound, subBound, nameMax, procSlots int, procs *proc.Table) *Table {
	t := &Table{
		queueSize:   queueSize,
		waiterBound: waiterBound,
		subBound:    subBound,
		nameMax:     nameMax,
		maxChannels: maxChannels,
		procSlots:   procSlots,
		table:       procs,
		byID:        make(map[int]*chanState),
		byName:      make(map[string]int),
		nextID:      1,
		services:    make(map[Service]int),
	}
	for svc, name := range serviceNames {
		id, err := t.Create(name, FlagKernel)
		if err != nil {
			panic("channel: bootstrap channel " + name + ": " + err.Error())
		}
		t.services[svc] = id
	}
	return t
}

// Service looks up a well-known bootstrap channel's id.
func (t *Table) Service(svc Service) (int, error) {
	id, ok := t.services[svc]
	if !ok {
		return 0, kerr.NotFoundf("unknown service channel")
	}
	return id, nil
}

// Create allocates a new named channel. Names must be unique and no longer
// than nameMax.
func (t *Table) Create(name string, flags uint32) (int, error) {
	f := t.sl.LockSave()
	defer t.sl.UnlockRestore(f)
	return t.createLocked(name, flags)
}

func (t *Table) createLocked(name string, flags uint32) (int, error) {
	if len(name) == 0 || len(name) > t.nameMax {
		return 0, kerr.Invalidf("channel name length must be in (0,%d], got %d", t.nameMax, len(name))
	}
	if _, exists := t.byName[name]; exists {
		return 0, kerr.Invalidf("channel %q already exists", name)
	}
	if len(t.byID) >= t.maxChannels {
		return 0, kerr.Exhaustedf("channel table full")
	}
	id := t.nextID
	t.nextID++
	cs := &chanState{name: name, flags: flags, ring: ring.New[Message](t.queueSize), subscribers: make(map[int]struct{})}
	t.byID[id] = cs
	t.byName[name] = id
	return id, nil
}

func (t *Table) lookup(id int) (*chanState, error) {
	f := t.sl.LockSave()
	defer t.sl.UnlockRestore(f)
	cs, ok := t.byID[id]
	if !ok {
		return nil, kerr.NotFoundf("channel %d", id)
	}
	return cs, nil
}

// Peek reports 1 if the channel is non-empty, 0 if empty (spec.md §4.6).
func (t *Table) Peek(id int) (int, error) {
	cs, err := t.lookup(id)
	if err != nil {
		return 0, err
	}
	f := cs.sl.LockSave()
	defer cs.sl.UnlockRestore(f)
	if cs.ring.Empty() {
		return 0, nil
	}
	return 1, nil
}

// Subscribers returns the current subscriber set of ch, in no particular
// order, for debug/snapshot use.
func (t *Table) Subscribers(ch int) ([]int, error) {
	cs, err := t.lookup(ch)
	if err != nil {
		return nil, err
	}
	f := cs.sl.LockSave()
	defer cs.sl.UnlockRestore(f)
	return set.Int.ToSlice(cs.subscribers), nil
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []int, id int) []int {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
