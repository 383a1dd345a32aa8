package channel

import (
	"github.com/proos-dev/kernel/kerr"
	"github.com/proos-dev/kernel/sched"
)

// Join records pid as a subscriber of ch, in both the per-process
// Thread.Channels list and the channel's own subscriber list (spec.md
// §4.6).
func (t *Table) Join(pid, ch int) error {
	cs, err := t.lookup(ch)
	if err != nil {
		return err
	}
	th := t.table.Lookup(pid)
	if th == nil {
		return kerr.NotFoundf("thread %d", pid)
	}

	f := cs.sl.LockSave()
	if _, ok := cs.subscribers[pid]; ok {
		cs.sl.UnlockRestore(f)
		return nil
	}
	if len(cs.subscribers) >= t.subBound {
		cs.sl.UnlockRestore(f)
		return kerr.Exhaustedf("channel %d subscriber list full", ch)
	}
	cs.subscribers[pid] = struct{}{}
	cs.sl.UnlockRestore(f)

	if len(th.Channels) >= t.procSlots {
		// Roll back: undo the subscription we just added.
		f = cs.sl.LockSave()
		delete(cs.subscribers, pid)
		cs.sl.UnlockRestore(f)
		return kerr.Exhaustedf("thread %d channel membership full", pid)
	}
	th.Channels = append(th.Channels, ch)
	return nil
}

// Leave reverses Join and also removes pid from ch's waiter list if
// present (spec.md §4.6).
func (t *Table) Leave(pid, ch int) error {
	cs, err := t.lookup(ch)
	if err != nil {
		return err
	}
	f := cs.sl.LockSave()
	delete(cs.subscribers, pid)
	cs.waiters = removeID(cs.waiters, pid)
	cs.sl.UnlockRestore(f)

	if th := t.table.Lookup(pid); th != nil {
		th.Channels = removeID(th.Channels, ch)
	}
	return nil
}

// LeaveAll removes pid from every channel it has joined, used on ZOMBIE
// transition.
func (t *Table) LeaveAll(pid int) {
	th := t.table.Lookup(pid)
	if th == nil {
		return
	}
	for _, ch := range append([]int(nil), th.Channels...) {
		t.Leave(pid, ch)
	}
}

func (t *Table) subscribedOrKernel(cs *chanState, sender int) bool {
	if sender == 0 || cs.flags&FlagKernel != 0 {
		return true
	}
	f := cs.sl.LockSave()
	defer cs.sl.UnlockRestore(f)
	_, ok := cs.subscribers[sender]
	return ok
}

// Send enqueues a message at the channel's tail (spec.md §4.6). sender = 0
// denotes an in-kernel origin and always passes the subscription check.
func (t *Table) Send(ch, sender int, msgType uint32, data []byte, flags uint32) (int, error) {
	cs, err := t.lookup(ch)
	if err != nil {
		return 0, err
	}
	if !t.subscribedOrKernel(cs, sender) {
		return 0, kerr.Deniedf("thread %d is not subscribed to channel %d", sender, ch)
	}

	payload := make([]byte, len(data))
	copy(payload, data)

	f := cs.sl.LockSave()
	err = cs.ring.Push(Message{Type: msgType, Sender: sender, Flags: flags, Size: len(data), Data: payload})
	var wake int = -1
	if err == nil && len(cs.waiters) > 0 {
		wake = cs.waiters[0]
		cs.waiters = cs.waiters[1:]
	}
	cs.sl.UnlockRestore(f)
	if err != nil {
		return 0, err
	}
	if wake >= 0 {
		if werr := sched.Wake(wake); werr != nil {
			return 0, werr
		}
	}
	return len(data), nil
}

// Receive dequeues the head message of ch for pid, copying up to len(buf)
// bytes into buf. It returns the message's original size, sender, and
// flags (with FlagTruncated set if the copy was short). Requires pid be
// subscribed, or the channel be KERNEL-flagged. On empty with
// FlagNonblock, returns (0, 0, 0, nil) immediately; otherwise it parks pid
// on the channel's waiter list (bounded; overflow returns an error without
// parking) and retries on wake.
func (t *Table) Receive(pid, ch int, buf []byte, flags uint32) (size int, sender int, outFlags uint32, err error) {
	for {
		cs, lerr := t.lookup(ch)
		if lerr != nil {
			return 0, 0, 0, lerr
		}
		if !t.subscribedOrKernel(cs, pid) {
			return 0, 0, 0, kerr.Deniedf("thread %d is not subscribed to channel %d", pid, ch)
		}

		f := cs.sl.LockSave()
		msg, ok := cs.ring.Pop()
		if ok {
			cs.sl.UnlockRestore(f)
			copy(buf, msg.Data)
			out := msg.Flags
			if msg.Size > len(buf) {
				out |= FlagTruncated
			}
			return msg.Size, msg.Sender, out, nil
		}
		if flags&FlagNonblock != 0 {
			cs.sl.UnlockRestore(f)
			return 0, 0, 0, nil
		}
		if len(cs.waiters) >= t.waiterBound {
			cs.sl.UnlockRestore(f)
			return 0, 0, 0, kerr.Fullf("channel %d waiter list full", ch)
		}
		cs.waiters = append(cs.waiters, pid)
		cs.sl.UnlockRestore(f)
		sched.BlockCurrent()
		// Woken by Send; loop and retry.
	}
}
