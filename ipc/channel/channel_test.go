package channel

import (
	"testing"
	"time"

	"github.com/proos-dev/kernel/kconfig"
	"github.com/proos-dev/kernel/kerr"
	"github.com/proos-dev/kernel/proc"
	"github.com/proos-dev/kernel/sched"
)

func newFixture(t *testing.T) (*sched.Scheduler, *Table) {
	t.Helper()
	cfg := kconfig.Default()
	cfg.MaxProcesses = 32
	ptable := proc.NewTable(cfg.MaxProcesses)
	s := sched.New(cfg, ptable)
	ch := NewTable(cfg.ChannelCount, cfg.ChannelQueue, cfg.ChannelWaiters, cfg.ChannelSubscribers, cfg.ChannelNameMax, cfg.ProcChannelSlots, ptable)
	s.Start()
	t.Cleanup(s.Stop)
	return s, ch
}

// spawnHeld creates a live thread parked on a channel the test controls, so
// Join/Leave have a real proc.Thread to attach membership to. release lets
// the thread exit once the test no longer needs its id.
func spawnHeld(t *testing.T) (id int, release func()) {
	t.Helper()
	hold := make(chan struct{})
	idCh := make(chan int, 1)
	newID, err := sched.Create(func() {
		idCh <- sched.CurrentID()
		<-hold
	}, 4096, proc.User)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got := <-idCh
	if got != newID {
		t.Fatalf("CurrentID() = %d, want %d", got, newID)
	}
	return newID, func() { close(hold) }
}

func TestBootstrapServiceChannelsExist(t *testing.T) {
	_, ch := newFixture(t)
	for _, svc := range []Service{DeviceManager, ModuleLoader, Logger, Scheduler} {
		id, err := ch.Service(svc)
		if err != nil {
			t.Fatalf("Service(%v): %v", svc, err)
		}
		if _, err := ch.Peek(id); err != nil {
			t.Fatalf("Peek(%d): %v", id, err)
		}
	}
}

func TestJoinLeave(t *testing.T) {
	_, ch := newFixture(t)
	pid, done := spawnHeld(t)
	defer done()
	id, err := ch.Create("topic", 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := ch.Join(pid, id); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := ch.Leave(pid, id); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	// Send should now fail without subscription.
	if _, err := ch.Send(id, pid, 0, []byte("x"), 0); kerr.KindOf(err) != kerr.Denied {
		t.Fatalf("expected Denied after leave, got %v", err)
	}
}

func TestSendRequiresSubscriptionUnlessKernel(t *testing.T) {
	_, ch := newFixture(t)
	pid, done := spawnHeld(t)
	defer done()
	id, err := ch.Create("topic", 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := ch.Send(id, pid, 0, []byte("x"), 0); kerr.KindOf(err) != kerr.Denied {
		t.Fatalf("expected Denied, got %v", err)
	}
	// sender 0 is in-kernel origin, always permitted.
	if _, err := ch.Send(id, 0, 0, []byte("x"), 0); err != nil {
		t.Fatalf("kernel-origin send should succeed: %v", err)
	}
}

func TestKernelFlaggedChannelBypassesSubscription(t *testing.T) {
	_, ch := newFixture(t)
	pid, done := spawnHeld(t)
	defer done()
	id, err := ch.Service(Logger)
	if err != nil {
		t.Fatalf("Service: %v", err)
	}
	if _, err := ch.Send(id, pid, 0, []byte("log line"), 0); err != nil {
		t.Fatalf("send to KERNEL channel should not require subscription: %v", err)
	}
}

func TestSendReceiveRoundTrip(t *testing.T) {
	_, ch := newFixture(t)
	pid, done := spawnHeld(t)
	defer done()
	id, err := ch.Create("topic", 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := ch.Join(pid, id); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if _, err := ch.Send(id, pid, 7, []byte("hello"), 0); err != nil {
		t.Fatalf("Send: %v", err)
	}
	buf := make([]byte, 16)
	size, sender, flags, err := ch.Receive(pid, id, buf, FlagNonblock)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if size != 5 || sender != pid || flags&FlagTruncated != 0 || string(buf[:size]) != "hello" {
		t.Fatalf("got size=%d sender=%d flags=%x buf=%q", size, sender, flags, buf[:size])
	}
}

func TestReceiveTruncates(t *testing.T) {
	_, ch := newFixture(t)
	pid, done := spawnHeld(t)
	defer done()
	id, err := ch.Create("topic", 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	ch.Join(pid, id)
	ch.Send(id, pid, 0, []byte("0123456789"), 0)
	buf := make([]byte, 4)
	size, _, flags, err := ch.Receive(pid, id, buf, FlagNonblock)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if size != 10 || flags&FlagTruncated == 0 || string(buf) != "0123" {
		t.Fatalf("got size=%d flags=%x buf=%q", size, flags, buf)
	}
}

func TestReceiveNonblockOnEmpty(t *testing.T) {
	_, ch := newFixture(t)
	pid, done := spawnHeld(t)
	defer done()
	id, err := ch.Create("topic", 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	ch.Join(pid, id)
	buf := make([]byte, 4)
	size, _, _, err := ch.Receive(pid, id, buf, FlagNonblock)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if size != 0 {
		t.Fatalf("expected empty receive, got size=%d", size)
	}
}

func TestReceiveBlocksUntilSend(t *testing.T) {
	_, ch := newFixture(t)
	id, err := ch.Create("topic", 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got := make(chan string, 1)
	ready := make(chan struct{})
	_, err = sched.Create(func() {
		self := sched.CurrentID()
		ch.Join(self, id)
		close(ready)
		buf := make([]byte, 8)
		size, _, _, err := ch.Receive(self, id, buf, 0)
		if err != nil {
			got <- "error: " + err.Error()
			return
		}
		got <- string(buf[:size])
	}, 4096, proc.User)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	<-ready
	time.Sleep(50 * time.Millisecond)
	if _, err := ch.Send(id, 0, 0, []byte("woke"), 0); err != nil {
		t.Fatalf("Send: %v", err)
	}
	select {
	case msg := <-got:
		if msg != "woke" {
			t.Fatalf("got %q, want %q", msg, "woke")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("blocked receive never woke")
	}
}

func TestCreateDuplicateNameRejected(t *testing.T) {
	_, ch := newFixture(t)
	if _, err := ch.Create("dup", 0); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := ch.Create("dup", 0); err == nil {
		t.Fatal("expected error for duplicate channel name")
	}
}
