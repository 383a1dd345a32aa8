// Package shared implements the kernel's shared-memory region registry
// (spec.md §4.5): a global table of (owner, target, base, pages, flags)
// records, attached to both sides' per-thread share lists. The core only
// maintains this registry; remapping pages is the memory subsystem's job
// (out of scope, spec.md §1).
package shared

import (
	"github.com/proos-dev/kernel/ipc/capability"
	"github.com/proos-dev/kernel/kerr"
	"github.com/proos-dev/kernel/proc"
	"github.com/proos-dev/kernel/spinlock"
)

// Record is one entry in the global share table.
type Record struct {
	ID     int
	Owner  int
	Target int
	Base   uintptr
	Pages  int
	Flags  uint32
}

// Table is the global share-region registry (spec.md §3: "a global table of
// Ns records").
type Table struct {
	sl       spinlock.Spinlock
	pageSize int
	limit    uintptr
	size     int
	perProc  int

	table  *proc.Table
	caps   *capability.Table

	records map[int]Record
	nextID  int
}

// NewTable returns a Table bounded at size records, validating share()
// calls against pageSize-aligned addresses under limit, and at most
// perProc share attachments per thread.
func NewTable(size, perProc, pageSize int, limit uintptr, procs *proc.Table, caps *capability.Table) *Table {
	return &Table{
		pageSize: pageSize,
		limit:    limit,
		size:     size,
		perProc:  perProc,
		table:    procs,
		caps:     caps,
		records:  make(map[int]Record),
		nextID:   1,
	}
}

// Share attaches a shared region from owner covering [base, base+pages*pageSize)
// to target, requiring SHARE capability on (owner -> target) (spec.md
// §4.5). Any failure rolls back all partial attachments.
func (t *Table) Share(owner, target int, base uintptr, pages int) (int, error) {
	if pages <= 0 {
		return 0, kerr.Invalidf("page count must be positive, got %d", pages)
	}
	if uintptr(t.pageSize) == 0 || base%uintptr(t.pageSize) != 0 {
		return 0, kerr.Invalidf("base address %#x is not page-aligned", base)
	}
	end := base + uintptr(pages)*uintptr(t.pageSize)
	if end > t.limit {
		return 0, kerr.Invalidf("range [%#x,%#x) exceeds user space limit %#x", base, end, t.limit)
	}
	if !t.caps.Permitted(owner, target, capability.Share) {
		return 0, kerr.Deniedf("thread %d lacks SHARE capability to %d", owner, target)
	}

	ownerThread := t.table.Lookup(owner)
	targetThread := t.table.Lookup(target)
	if ownerThread == nil {
		return 0, kerr.NotFoundf("thread %d", owner)
	}
	if targetThread == nil {
		return 0, kerr.NotFoundf("thread %d", target)
	}

	f := t.sl.LockSave()
	defer t.sl.UnlockRestore(f)

	if len(t.records) >= t.size {
		return 0, kerr.Exhaustedf("share table full")
	}
	if len(ownerThread.Shares) >= t.perProc || len(targetThread.Shares) >= t.perProc {
		return 0, kerr.Exhaustedf("share attachment limit reached for thread %d or %d", owner, target)
	}

	id := t.nextID
	t.nextID++
	rec := Record{ID: id, Owner: owner, Target: target, Base: base, Pages: pages}
	t.records[id] = rec
	ownerThread.Shares = append(ownerThread.Shares, id)
	targetThread.Shares = append(targetThread.Shares, id)
	return id, nil
}

// Unshare detaches a share record, dropping it from both sides' lists and
// freeing its slot.
func (t *Table) Unshare(id int) error {
	f := t.sl.LockSave()
	defer t.sl.UnlockRestore(f)
	rec, ok := t.records[id]
	if !ok {
		return kerr.NotFoundf("share %d", id)
	}
	delete(t.records, id)
	if th := t.table.Lookup(rec.Owner); th != nil {
		th.Shares = removeID(th.Shares, id)
	}
	if th := t.table.Lookup(rec.Target); th != nil {
		th.Shares = removeID(th.Shares, id)
	}
	return nil
}

// DetachAll drops every share record attached to holder, used on ZOMBIE
// transition (spec.md §3: "Detach on process exit drops both sides and
// frees the slot").
func (t *Table) DetachAll(holder int) {
	f := t.sl.LockSave()
	var ids []int
	th := t.table.Lookup(holder)
	if th != nil {
		ids = append(ids, th.Shares...)
	}
	t.sl.UnlockRestore(f)
	for _, id := range ids {
		t.Unshare(id)
	}
}

// Lookup returns the record for id, if any.
func (t *Table) Lookup(id int) (Record, bool) {
	f := t.sl.LockSave()
	defer t.sl.UnlockRestore(f)
	rec, ok := t.records[id]
	return rec, ok
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
