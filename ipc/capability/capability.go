// Package capability implements the kernel's per-thread capability table
// (spec.md §4.4, §3): for each thread, a bounded set of (peer id, rights)
// entries gating mailbox send/recv and shared-region attach. Grounded on
// the same spinlock-guarded small-table shape as proc.Table, scaled down to
// a single global spinlock per spec.md §5's lock inventory ("a global
// capability spinlock").
package capability

import (
	"github.com/proos-dev/kernel/kerr"
	"github.com/proos-dev/kernel/spinlock"
)

// Right is one bit of a rights bitmask.
type Right uint32

const (
	Send Right = 1 << iota
	Recv
	Share
)

type entry struct {
	peer   int
	rights Right
}

// Table is the global (thread id -> bounded list of entries) capability
// store.
type Table struct {
	sl      spinlock.Spinlock
	perProc int
	entries map[int][]entry
}

// NewTable returns a Table allowing up to perProc capability entries per
// thread.
func NewTable(perProc int) *Table {
	return &Table{perProc: perProc, entries: make(map[int][]entry)}
}

// Permitted reports whether holder may exercise right against peer. self is
// always permitted; a peer id <= 0 is always permitted (kernel-origin
// traffic), matching spec.md §4.4.
func (t *Table) Permitted(holder, peer int, right Right) bool {
	if holder == peer || peer <= 0 {
		return true
	}
	f := t.sl.LockSave()
	defer t.sl.UnlockRestore(f)
	for _, e := range t.entries[holder] {
		if e.peer == peer {
			return e.rights&right != 0
		}
	}
	return false
}

// Grant adds rights to holder's entry for peer, creating one if it doesn't
// exist (additive, spec.md §4.4). Fails with Kind-Exhausted if holder is at
// its per-thread entry limit and no existing entry for peer can be reused.
func (t *Table) Grant(holder, peer int, rights Right) error {
	f := t.sl.LockSave()
	defer t.sl.UnlockRestore(f)
	list := t.entries[holder]
	for i := range list {
		if list[i].peer == peer {
			list[i].rights |= rights
			return nil
		}
	}
	if len(list) >= t.perProc {
		return kerr.Exhaustedf("capability table full for thread %d", holder)
	}
	t.entries[holder] = append(list, entry{peer: peer, rights: rights})
	return nil
}

// Revoke clears rights from holder's entry for peer, dropping the entry
// entirely once its rights reach zero (spec.md §4.4).
func (t *Table) Revoke(holder, peer int, rights Right) error {
	f := t.sl.LockSave()
	defer t.sl.UnlockRestore(f)
	list := t.entries[holder]
	for i := range list {
		if list[i].peer == peer {
			list[i].rights &^= rights
			if list[i].rights == 0 {
				t.entries[holder] = append(list[:i], list[i+1:]...)
			}
			return nil
		}
	}
	return kerr.NotFoundf("no capability entry for peer %d on thread %d", peer, holder)
}

// Query returns the current rights holder has for peer, 0 if none.
func (t *Table) Query(holder, peer int) Right {
	f := t.sl.LockSave()
	defer t.sl.UnlockRestore(f)
	for _, e := range t.entries[holder] {
		if e.peer == peer {
			return e.rights
		}
	}
	return 0
}

// Release drops every capability entry for holder, used when a thread
// transitions to ZOMBIE (spec.md §3's "released before the slot can be
// reclaimed" invariant).
func (t *Table) Release(holder int) {
	f := t.sl.LockSave()
	defer t.sl.UnlockRestore(f)
	delete(t.entries, holder)
}
