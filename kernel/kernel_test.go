package kernel

import (
	"testing"
	"time"

	"github.com/proos-dev/kernel/ipc/capability"
	"github.com/proos-dev/kernel/ipc/channel"
	"github.com/proos-dev/kernel/kconfig"
	"github.com/proos-dev/kernel/proc"
)

func newFixture(t *testing.T) *Kernel {
	t.Helper()
	cfg := kconfig.Default()
	cfg.MaxProcesses = 32
	k, err := Boot(cfg)
	if err != nil {
		t.Fatalf("Boot: %v", err)
	}
	t.Cleanup(k.Shutdown)
	return k
}

func TestBootServiceChannels(t *testing.T) {
	k := newFixture(t)
	for _, svc := range []channel.Service{channel.DeviceManager, channel.ModuleLoader, channel.Logger, channel.Scheduler} {
		if _, err := k.Channels.Service(svc); err != nil {
			t.Fatalf("Service(%v): %v", svc, err)
		}
	}
}

func TestSnapshotReflectsSpawnedThreads(t *testing.T) {
	k := newFixture(t)
	done := make(chan struct{})
	id, err := k.Spawn(func() { <-done }, 4096, proc.User)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	found := false
	for _, info := range k.Snapshot() {
		if info.ID == id {
			found = true
		}
	}
	if !found {
		t.Fatalf("thread %d missing from snapshot", id)
	}
	close(done)
}

func TestExitHookReleasesMailboxAndCapabilities(t *testing.T) {
	k := newFixture(t)
	done := make(chan struct{})
	id, err := k.Spawn(func() { <-done }, 4096, proc.User)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	// The peer must differ from id: a thread is always permitted to itself.
	peer := id + 1
	k.Capabilities.Grant(id, peer, capability.Send)
	close(done)
	time.Sleep(50 * time.Millisecond)
	if k.Capabilities.Permitted(id, peer, capability.Send) {
		t.Fatal("expected capabilities released after exit")
	}
	if err := k.Mailboxes.Send(1, id, []byte("x")); err == nil {
		t.Fatal("expected mailbox to be gone after exit")
	}
}

func TestSpawnRegistersMailbox(t *testing.T) {
	k := newFixture(t)
	done := make(chan struct{})
	id, err := k.Spawn(func() { <-done }, 4096, proc.User)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	k.Capabilities.Grant(1, id, capability.Send)
	if err := k.Mailboxes.Send(1, id, []byte("hi")); err != nil {
		t.Fatalf("Send to freshly spawned thread's mailbox: %v", err)
	}
	close(done)
}
