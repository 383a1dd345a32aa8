package main

import (
	"fmt"
	"time"

	"github.com/proos-dev/kernel/cmdline2"
	"github.com/proos-dev/kernel/kconfig"
	"github.com/proos-dev/kernel/kernel"
	"github.com/proos-dev/kernel/proc"
	"github.com/proos-dev/kernel/sched"
)

var cmdSnapshot = cmdline2.Command{
	Name:  "snapshot",
	Short: "boot a kernel, spawn a few threads, and print a ps-style dump",
	Long: "snapshot boots a kernel instance, spawns a handful of threads under " +
		"different scheduling policies, and prints the per-thread snapshot " +
		"spec.md §6 promises (state, policy, priority, deadline/vruntime) " +
		"alongside the occupied ready-queue levels.",
	Runner: cmdline2.RunnerFunc(runSnapshot),
}

func runSnapshot(env *cmdline2.Env, args []string) error {
	k, err := kernel.Boot(kconfig.Default())
	if err != nil {
		return err
	}
	defer k.Shutdown()

	hold := make(chan struct{})
	defer close(hold)

	deadlineID, err := k.Spawn(func() { <-hold }, 0, proc.User)
	if err != nil {
		return err
	}
	if _, err := k.Spawn(func() { <-hold }, 0, proc.User); err != nil {
		return err
	}
	if err := sched.SetScheduler(deadlineID, proc.Deadline, 0, 50); err != nil {
		fmt.Fprintf(env.Stdout, "set deadline policy: %v\n", err)
	}

	time.Sleep(5 * time.Millisecond)

	fmt.Fprintln(env.Stdout, "ID  STATE    KIND    POLICY    BASE DYN  DEADLINE  VRUNTIME")
	for _, info := range k.Snapshot() {
		fmt.Fprintf(env.Stdout, "%-3d %-8s %-7s %-9s %-4d %-4d %-9d %d\n",
			info.ID, info.State, info.Kind, policyName(info.Policy),
			info.BasePrio, info.DynPrio, info.Deadline, info.VRuntime)
	}
	fmt.Fprintf(env.Stdout, "occupied ready levels: %v\n", k.ReadyLevels())
	return nil
}

func policyName(p proc.Policy) string {
	switch p {
	case proc.Deadline:
		return "DEADLINE"
	case proc.Fair:
		return "FAIR"
	default:
		return "?"
	}
}
