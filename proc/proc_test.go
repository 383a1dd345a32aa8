package proc_test

import (
	"testing"

	"github.com/proos-dev/kernel/proc"
)

func TestAllocLookupReclaim(t *testing.T) {
	tbl := proc.NewTable(2)
	a := tbl.AllocSlot()
	if a == nil {
		t.Fatalf("AllocSlot returned nil on empty table")
	}
	b := tbl.AllocSlot()
	if b == nil || b.ID == a.ID {
		t.Fatalf("second AllocSlot = %v, want distinct id from %d", b, a.ID)
	}
	if tbl.AllocSlot() != nil {
		t.Fatalf("AllocSlot on a full table should return nil")
	}
	if got := tbl.Lookup(a.ID); got != a {
		t.Fatalf("Lookup(%d) = %v, want %v", a.ID, got, a)
	}
	if tbl.Lookup(9999) != nil {
		t.Fatalf("Lookup of unknown id should return nil")
	}

	a.State = proc.Zombie
	tbl.ReclaimSlot(a)
	if a.State != proc.Unused {
		t.Fatalf("slot state after reclaim = %v, want UNUSED", a.State)
	}
	if c := tbl.AllocSlot(); c == nil {
		t.Fatalf("AllocSlot after reclaim should succeed")
	}
}

func TestIDsPositiveAndDistinctAcrossSlotReuse(t *testing.T) {
	tbl := proc.NewTable(1)
	th := tbl.AllocSlot()
	th.State = proc.Zombie
	tbl.ReclaimSlot(th)

	// Reuse the single slot several times and confirm every new id is
	// positive (never the idle id 0) and that no id repeats.
	seen := map[int]bool{}
	for i := 0; i < 5; i++ {
		s := tbl.AllocSlot()
		if s.ID <= 0 {
			t.Fatalf("AllocSlot produced non-positive id %d", s.ID)
		}
		seen[s.ID] = true
		s.State = proc.Zombie
		tbl.ReclaimSlot(s)
	}
	if len(seen) != 5 {
		t.Fatalf("expected 5 distinct ids, got %d: %v", len(seen), seen)
	}
}

func TestAllocIdleSlotReservesZero(t *testing.T) {
	tbl := proc.NewTable(2)
	idle := tbl.AllocIdleSlot()
	if idle.ID != proc.IdleID {
		t.Fatalf("idle.ID = %d, want %d", idle.ID, proc.IdleID)
	}
	other := tbl.AllocSlot()
	if other.ID == proc.IdleID {
		t.Fatalf("subsequent AllocSlot reused the reserved idle id")
	}
}

func TestAllocIdleSlotPanicsAfterUse(t *testing.T) {
	tbl := proc.NewTable(2)
	tbl.AllocSlot()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic calling AllocIdleSlot after the table was already in use")
		}
	}()
	tbl.AllocIdleSlot()
}

func TestSnapshotReflectsLiveThreads(t *testing.T) {
	tbl := proc.NewTable(4)
	th := tbl.AllocSlot()
	th.BasePrio = 3
	th.DynPrio = 2
	snap := tbl.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("Snapshot length = %d, want 1", len(snap))
	}
	if snap[0].ID != th.ID || snap[0].DynPrio != 2 {
		t.Fatalf("Snapshot[0] = %+v, want id=%d dynPrio=2", snap[0], th.ID)
	}
}
