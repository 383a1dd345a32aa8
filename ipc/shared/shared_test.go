package shared

import (
	"testing"

	"github.com/proos-dev/kernel/ipc/capability"
	"github.com/proos-dev/kernel/kerr"
	"github.com/proos-dev/kernel/proc"
)

func newFixture(size, perProc, pageSize int, limit uintptr) (*proc.Table, *capability.Table, *Table) {
	procs := proc.NewTable(8)
	caps := capability.NewTable(perProc)
	return procs, caps, NewTable(size, perProc, pageSize, limit, procs, caps)
}

func TestShareRequiresCapability(t *testing.T) {
	procs, _, tab := newFixture(4, 4, 4096, 0x10000)
	owner := procs.AllocSlot()
	target := procs.AllocSlot()
	_, err := tab.Share(owner.ID, target.ID, 0, 1)
	if kerr.KindOf(err) != kerr.Denied {
		t.Fatalf("expected Denied, got %v", err)
	}
}

func TestShareAttachesBothSides(t *testing.T) {
	procs, caps, tab := newFixture(4, 4, 4096, 0x10000)
	owner := procs.AllocSlot()
	target := procs.AllocSlot()
	caps.Grant(owner.ID, target.ID, capability.Share)

	id, err := tab.Share(owner.ID, target.ID, 0, 2)
	if err != nil {
		t.Fatalf("Share: %v", err)
	}
	if len(owner.Shares) != 1 || owner.Shares[0] != id {
		t.Fatalf("owner.Shares = %v", owner.Shares)
	}
	if len(target.Shares) != 1 || target.Shares[0] != id {
		t.Fatalf("target.Shares = %v", target.Shares)
	}
}

func TestShareRejectsMisalignedBase(t *testing.T) {
	procs, caps, tab := newFixture(4, 4, 4096, 0x10000)
	owner := procs.AllocSlot()
	target := procs.AllocSlot()
	caps.Grant(owner.ID, target.ID, capability.Share)
	_, err := tab.Share(owner.ID, target.ID, 100, 1)
	if kerr.KindOf(err) != kerr.Invalid {
		t.Fatalf("expected Invalid, got %v", err)
	}
}

func TestShareRejectsOutOfRange(t *testing.T) {
	procs, caps, tab := newFixture(4, 4, 4096, 0x2000)
	owner := procs.AllocSlot()
	target := procs.AllocSlot()
	caps.Grant(owner.ID, target.ID, capability.Share)
	_, err := tab.Share(owner.ID, target.ID, 0x1000, 4)
	if kerr.KindOf(err) != kerr.Invalid {
		t.Fatalf("expected Invalid, got %v", err)
	}
}

func TestUnshareDropsBothSides(t *testing.T) {
	procs, caps, tab := newFixture(4, 4, 4096, 0x10000)
	owner := procs.AllocSlot()
	target := procs.AllocSlot()
	caps.Grant(owner.ID, target.ID, capability.Share)
	id, err := tab.Share(owner.ID, target.ID, 0, 1)
	if err != nil {
		t.Fatalf("Share: %v", err)
	}
	if err := tab.Unshare(id); err != nil {
		t.Fatalf("Unshare: %v", err)
	}
	if len(owner.Shares) != 0 || len(target.Shares) != 0 {
		t.Fatalf("expected both sides empty, got owner=%v target=%v", owner.Shares, target.Shares)
	}
	if _, ok := tab.Lookup(id); ok {
		t.Fatal("expected record to be gone")
	}
}

func TestShareTableExhaustion(t *testing.T) {
	procs, caps, tab := newFixture(1, 4, 4096, 0x10000)
	owner := procs.AllocSlot()
	t1 := procs.AllocSlot()
	t2 := procs.AllocSlot()
	caps.Grant(owner.ID, t1.ID, capability.Share)
	caps.Grant(owner.ID, t2.ID, capability.Share)
	if _, err := tab.Share(owner.ID, t1.ID, 0, 1); err != nil {
		t.Fatalf("Share: %v", err)
	}
	if _, err := tab.Share(owner.ID, t2.ID, 0, 1); kerr.KindOf(err) != kerr.Exhausted {
		t.Fatalf("expected Exhausted, got %v", err)
	}
}
