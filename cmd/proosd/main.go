// Command proosd boots the kernel core and exercises the scenarios of
// spec.md §8 from the command line, the way a real kernel's shell would
// expose boot, self-test, and ps commands.
package main

import (
	"github.com/proos-dev/kernel/cmdline2"
)

func main() {
	cmdline2.Main(&cmdRoot)
}

var cmdRoot = cmdline2.Command{
	Name:  "proosd",
	Short: "run the proOS kernel core",
	Long:  "proosd boots an in-process instance of the kernel core (scheduler, IPC, sync) and runs one of its subcommands against it.",
	Children: []*cmdline2.Command{
		&cmdBoot,
		&cmdDemo,
		&cmdSnapshot,
	},
}
