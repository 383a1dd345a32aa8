// Package lockorder statically asserts the lock-acquisition order spec.md
// §5 declares: "(mailbox | channel | share | capability | sync) -> none.
// These locks are leaves; no core operation acquires two at once." It
// reuses the teacher's own topological sorter (toposort.Sorter) the way a
// build-order or package-dependency check would, treating "lock A is held
// while acquiring lock B" as an edge A -> B: a kernel with no cross-lock
// acquisition has a graph of isolated nodes, which toposort.Sort always
// reports as acyclic.
package lockorder

import (
	"fmt"

	"github.com/proos-dev/kernel/toposort"
)

// Names of every spinlock-guarded subsystem in this kernel.
const (
	Mailbox    = "mailbox"
	Channel    = "channel"
	Share      = "share"
	Capability = "capability"
	Sync       = "sync"
)

// Graph declares which locks exist and which may be acquired while another
// is already held.
type Graph struct {
	s toposort.Sorter
}

// New returns an empty Graph.
func New() *Graph { return &Graph{} }

// Leaf registers name as a lock with no outgoing edge.
func (g *Graph) Leaf(name string) { g.s.AddNode(name) }

// DependsOn records that a thread already holding name may also acquire on
// (name -> on), the same "from depends on to" edge direction toposort.Sorter
// uses for its own package-dependency use case.
func (g *Graph) DependsOn(name, on string) { g.s.AddEdge(name, on) }

// Check returns an error describing the first detected cycle, or nil if the
// declared graph is acyclic.
func (g *Graph) Check() error {
	_, cycles := g.s.Sort()
	if len(cycles) == 0 {
		return nil
	}
	return fmt.Errorf("lock order cycle detected: %s", toposort.DumpCycles(cycles, func(n interface{}) string {
		return fmt.Sprint(n)
	}))
}

// Default returns the graph kernel.Boot checks at startup: every kernel lock
// declared a leaf, matching spec.md §5 exactly. A future change that wires
// one lock's critical section into another's acquisition must add the edge
// here, where Check will catch any resulting cycle before it can deadlock.
func Default() *Graph {
	g := New()
	for _, name := range []string{Mailbox, Channel, Share, Capability, Sync} {
		g.Leaf(name)
	}
	return g
}
