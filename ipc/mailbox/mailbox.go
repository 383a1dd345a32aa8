// Package mailbox implements the kernel's per-process bounded mailbox
// (spec.md §4.4): a fixed-capacity FIFO of messages per thread, gated by
// the capability table, with blocking receive for user threads. The ring
// storage is ring.Ring[Message], the same bounded-FIFO-that-rejects-when-
// full type the channel package uses (spec.md §3's mailbox and channel
// records share this shape).
package mailbox

import (
	"github.com/proos-dev/kernel/ipc/capability"
	"github.com/proos-dev/kernel/kerr"
	"github.com/proos-dev/kernel/proc"
	"github.com/proos-dev/kernel/ring"
	"github.com/proos-dev/kernel/sched"
	"github.com/proos-dev/kernel/spinlock"
)

// Any matches any sender in Recv's source filter.
const Any = 0

// Message is one mailbox slot's contents.
type Message struct {
	Sender  int
	Flags   uint32
	Size    int
	Payload []byte
}

// Mailbox is one thread's bounded inbox.
type Mailbox struct {
	sl      spinlock.Spinlock
	ring    *ring.Ring[Message]
	waiters []int
}

// Table owns one Mailbox per live thread.
type Table struct {
	capacity int
	msgMax   int
	table    *proc.Table
	caps     *capability.Table

	boxes map[int]*Mailbox
	sl    spinlock.Spinlock
}

// NewTable returns a mailbox Table whose per-thread mailboxes hold up to
// capacity messages of at most msgMax bytes each.
func NewTable(capacity, msgMax int, procs *proc.Table, caps *capability.Table) *Table {
	return &Table{
		capacity: capacity,
		msgMax:   msgMax,
		table:    procs,
		caps:     caps,
		boxes:    make(map[int]*Mailbox),
	}
}

// Create allocates a mailbox for the given thread id. Called when a thread
// is created.
func (t *Table) Create(id int) {
	f := t.sl.LockSave()
	defer t.sl.UnlockRestore(f)
	t.boxes[id] = &Mailbox{ring: ring.New[Message](t.capacity)}
}

// Release drops a thread's mailbox, used on ZOMBIE transition (spec.md §3).
func (t *Table) Release(id int) {
	f := t.sl.LockSave()
	defer t.sl.UnlockRestore(f)
	delete(t.boxes, id)
}

func (t *Table) box(id int) *Mailbox {
	f := t.sl.LockSave()
	defer t.sl.UnlockRestore(f)
	return t.boxes[id]
}

// Send delivers data from sender to target's mailbox (spec.md §4.4).
func (t *Table) Send(sender, target int, data []byte) error {
	if len(data) > t.msgMax {
		return kerr.Invalidf("message of %d bytes exceeds max %d", len(data), t.msgMax)
	}
	targetThread := t.table.Lookup(target)
	if targetThread == nil {
		return kerr.NotFoundf("thread %d", target)
	}
	senderThread := t.table.Lookup(sender)
	kernelOrigin := senderThread != nil && senderThread.Kind == proc.KernelThread
	if !kernelOrigin && !t.caps.Permitted(sender, target, capability.Send) {
		return kerr.Deniedf("thread %d lacks SEND capability to %d", sender, target)
	}
	box := t.box(target)
	if box == nil {
		return kerr.NotFoundf("mailbox for thread %d", target)
	}

	payload := make([]byte, len(data))
	copy(payload, data)

	f := box.sl.LockSave()
	err := box.ring.Push(Message{Sender: sender, Size: len(data), Payload: payload})
	var wake int = -1
	if err == nil && len(box.waiters) > 0 {
		wake = box.waiters[0]
		box.waiters = box.waiters[1:]
	}
	box.sl.UnlockRestore(f)
	if err != nil {
		return err
	}
	if wake >= 0 {
		return sched.Wake(wake)
	}
	return nil
}

// Recv dequeues the oldest message in the calling thread's mailbox matching
// source (Any for any sender), copying up to len(buf) bytes of its payload
// into buf. It returns the original message size and the matched sender id.
// Messages the caller lacks RECV capability from are silently discarded
// (spec.md §4.4). KERNEL-kind threads never block: an empty/no-match
// mailbox returns (0, 0, nil) immediately; USER-kind threads block and
// retry on wake.
func (t *Table) Recv(self int, source int, buf []byte) (size int, from int, err error) {
	selfThread := t.table.Lookup(self)
	if selfThread == nil {
		return 0, 0, kerr.NotFoundf("thread %d", self)
	}
	for {
		box := t.box(self)
		if box == nil {
			return 0, 0, kerr.NotFoundf("mailbox for thread %d", self)
		}
		msg, ok, shouldBlock := t.tryRecvLocked(box, self, source)
		if ok {
			copy(buf, msg.Payload)
			return msg.Size, msg.Sender, nil
		}
		if !shouldBlock {
			return 0, 0, nil
		}
		sched.BlockCurrent()
		// Woken by Send; loop and retry.
	}
}

// tryRecvLocked scans the mailbox in arrival order for the oldest message
// matching source, skipping over (and preserving) messages addressed to a
// different sender when a specific source filter is used, and discarding
// (permanently) any matching message the caller lacks RECV capability for
// (spec.md §4.4). Messages skipped for a source mismatch, and every message
// after the match, are pushed back in their original relative order;
// discarded messages are not. The operation runs entirely under box.sl, so
// no concurrent Send can interleave.
func (t *Table) tryRecvLocked(box *Mailbox, self, source int) (Message, bool, bool) {
	f := box.sl.LockSave()
	defer box.sl.UnlockRestore(f)

	n := box.ring.Len()
	var preserved []Message
	var result Message
	found := false
	for i := 0; i < n; i++ {
		msg, ok := box.ring.Pop()
		if !ok {
			break
		}
		if found {
			preserved = append(preserved, msg)
			continue
		}
		if source != Any && msg.Sender != source {
			preserved = append(preserved, msg)
			continue
		}
		if msg.Sender > 0 && !t.caps.Permitted(self, msg.Sender, capability.Recv) {
			continue // silently discarded
		}
		result = msg
		found = true
	}
	for _, msg := range preserved {
		box.ring.Push(msg) // cannot fail: we only ever push back what we popped
	}
	if found {
		return result, true, false
	}

	self_ := t.table.Lookup(self)
	if self_ != nil && self_.Kind == proc.KernelThread {
		return Message{}, false, false
	}
	box.waiters = append(box.waiters, self)
	return Message{}, false, true
}
