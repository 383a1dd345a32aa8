package spinlock_test

import (
	"sync"
	"testing"

	"github.com/proos-dev/kernel/spinlock"
)

func TestMutualExclusion(t *testing.T) {
	var lock spinlock.Spinlock
	counter := 0
	var wg sync.WaitGroup
	const n = 200
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f := lock.LockSave()
			counter++
			lock.UnlockRestore(f)
		}()
	}
	wg.Wait()
	if counter != n {
		t.Errorf("counter = %d, want %d", counter, n)
	}
}

func TestNestedFlagsRestoreOutermost(t *testing.T) {
	var a, b spinlock.Spinlock
	if spinlock.Disabled() {
		t.Fatalf("interrupts disabled before any lock taken")
	}
	fa := a.LockSave()
	if !spinlock.Disabled() {
		t.Fatalf("interrupts not disabled after LockSave")
	}
	fb := b.LockSave()
	if !spinlock.Disabled() {
		t.Fatalf("interrupts not disabled while nested lock held")
	}
	b.UnlockRestore(fb)
	if !spinlock.Disabled() {
		t.Fatalf("interrupts re-enabled too early after inner UnlockRestore")
	}
	a.UnlockRestore(fa)
	if spinlock.Disabled() {
		t.Fatalf("interrupts still disabled after outermost UnlockRestore")
	}
}

func TestDeferUntilEnabled(t *testing.T) {
	var lock spinlock.Spinlock
	ran := false
	f := lock.LockSave()
	spinlock.DeferUntilEnabled(func() { ran = true })
	if ran {
		t.Fatalf("deferred hook ran while interrupts disabled")
	}
	lock.UnlockRestore(f)
	if !ran {
		t.Fatalf("deferred hook did not run once interrupts were enabled")
	}
}
