package lockorder

import "testing"

func TestDefaultGraphIsAcyclic(t *testing.T) {
	if err := Default().Check(); err != nil {
		t.Fatalf("Default(): %v", err)
	}
}

func TestDependsOnCycleDetected(t *testing.T) {
	g := New()
	g.DependsOn(Mailbox, Channel)
	g.DependsOn(Channel, Mailbox)
	if err := g.Check(); err == nil {
		t.Fatal("expected a cycle error for mailbox <-> channel")
	}
}

func TestDependsOnAcyclicChainAllowed(t *testing.T) {
	g := New()
	g.DependsOn(Mailbox, Sync)
	g.Leaf(Channel)
	if err := g.Check(); err != nil {
		t.Fatalf("expected acyclic chain to pass, got %v", err)
	}
}
