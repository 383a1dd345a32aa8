package proc

// Info is the read-only snapshot of one live thread returned by a kernel
// snapshot query (spec.md §6 "Outputs").
type Info struct {
	ID        int
	State     State
	Kind      Kind
	BasePrio  int
	DynPrio   int
	Policy    Policy
	Weight    int
	Deadline  uint64
	VRuntime  uint64
	Timeslice int
	SP        uintptr
	StackSize int
}

// Snapshot returns an Info for every live thread in the table, in slot order.
func (t *Table) Snapshot() []Info {
	var out []Info
	t.Each(func(th *Thread) {
		out = append(out, Info{
			ID:        th.ID,
			State:     th.State,
			Kind:      th.Kind,
			BasePrio:  th.BasePrio,
			DynPrio:   th.DynPrio,
			Policy:    th.SchedPolicy,
			Weight:    th.Weight,
			Deadline:  th.Deadline,
			VRuntime:  th.VRuntime,
			Timeslice: th.Timeslice,
			SP:        th.SP,
			StackSize: th.StackSize,
		})
	})
	return out
}
