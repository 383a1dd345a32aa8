package main

import (
	"fmt"
	"time"

	"github.com/proos-dev/kernel/cmdline2"
	"github.com/proos-dev/kernel/kconfig"
	"github.com/proos-dev/kernel/kernel"
)

var cmdBoot = cmdline2.Command{
	Name:  "boot",
	Short: "boot the kernel and shut it down",
	Long:  "boot constructs a kernel instance with the default configuration, starts its scheduler, lets it idle briefly, then shuts down cleanly.",
	Runner: cmdline2.RunnerFunc(runBoot),
}

func runBoot(env *cmdline2.Env, args []string) error {
	k, err := kernel.Boot(kconfig.Default())
	if err != nil {
		return err
	}
	defer k.Shutdown()
	fmt.Fprintln(env.Stdout, "kernel booted")
	time.Sleep(10 * time.Millisecond)
	fmt.Fprintln(env.Stdout, "kernel shutting down")
	return nil
}
