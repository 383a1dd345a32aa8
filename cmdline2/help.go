// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdline2

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// helpRunner is a Runner that implements the "help" functionality.  Help is
// requested for the last command in rootPath, which must not be empty.
type helpRunner struct {
	rootPath []*Command
	globals  *flag.FlagSet
}

func makeHelpRunner(path []*Command, env *Env, globals *flag.FlagSet) helpRunner {
	return helpRunner{path, globals}
}

// Run implements the Runner interface method.
func (h helpRunner) Run(env *Env, args []string) error {
	return runHelp(env.Stdout, env.Stderr, args, h.rootPath, h.globals)
}

// usageFunc is used as the implementation of the Env.Usage function.
func (h helpRunner) usageFunc(w io.Writer) {
	usage(w, h.rootPath, h.globals, true)
}

const helpName = "help"

// newCommand returns a new help command that uses h as its Runner.
func (h helpRunner) newCommand() *Command {
	help := &Command{
		Runner:   h,
		Name:     helpName,
		Short:    "Display help for commands or topics",
		Long:     "Help with no args displays the usage of the parent command.\n\nHelp with args displays the usage of the specified sub-command or help topic.",
		ArgsName: "[command/topic ...]",
		ArgsLong: "[command/topic ...] optionally identifies a specific sub-command or help topic.",
	}
	cleanTree([]*Command{help})
	return help
}

// runHelp implements the run-time behavior of the help command.
func runHelp(w, stderr io.Writer, args []string, path []*Command, globals *flag.FlagSet) error {
	if len(args) == 0 {
		usage(w, path, globals, true)
		return nil
	}
	cmd, subName, subArgs := path[len(path)-1], args[0], args[1:]
	for _, child := range cmd.Children {
		if child.Name == subName {
			return runHelp(w, stderr, subArgs, append(path, child), globals)
		}
	}
	if helpName == subName {
		help := helpRunner{path, globals}.newCommand()
		return runHelp(w, stderr, subArgs, append(path, help), globals)
	}
	for _, topic := range cmd.Topics {
		if topic.Name == subName {
			fmt.Fprintln(w, topic.Long)
			return nil
		}
	}
	return fmt.Errorf("%s: unknown command or topic %q", pathName(path), subName)
}

// needsHelpChild returns true if cmd needs a default help command to be
// appended to its children.
func needsHelpChild(cmd *Command) bool {
	for _, child := range cmd.Children {
		if child.Name == helpName {
			return false
		}
	}
	return len(cmd.Children) > 0
}

// usage prints the usage of the last command in path to w.
func usage(w io.Writer, path []*Command, globals *flag.FlagSet, firstCall bool) {
	cmd, cmdPath := path[len(path)-1], pathName(path)
	children := cmd.Children
	if firstCall && needsHelpChild(cmd) {
		help := helpRunner{path, globals}.newCommand()
		children = append(children, help)
	}
	if cmd.Long != "" {
		fmt.Fprintln(w, cmd.Long)
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, "Usage:")
	line := "   " + cmdPath
	if countFlags(&cmd.Flags) > 0 {
		line += " [flags]"
	}
	switch {
	case cmd.Runner != nil && cmd.ArgsName != "":
		fmt.Fprintln(w, line, cmd.ArgsName)
	case cmd.Runner != nil:
		fmt.Fprintln(w, line)
	}
	if len(children) > 0 {
		fmt.Fprintln(w, line, "<command>")
	}
	if len(children) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "The %s commands are:\n", cmdPath)
		for _, child := range children {
			fmt.Fprintf(w, "   %-12s %s\n", child.Name, child.Short)
		}
		if firstCall {
			fmt.Fprintf(w, "Run %q for command usage.\n", cmdPath+" help [command]")
		}
	}
	if cmd.Runner != nil && cmd.ArgsLong != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, cmd.ArgsLong)
	}
	if len(cmd.Topics) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "The %s additional help topics are:\n", cmdPath)
		for _, topic := range cmd.Topics {
			fmt.Fprintf(w, "   %-12s %s\n", topic.Name, topic.Short)
		}
	}
	flagsUsage(w, &cmd.Flags, cmdPath)
	if firstCall {
		flagsUsage(w, globals, "global")
	}
}

func flagsUsage(w io.Writer, flags *flag.FlagSet, label string) {
	if countFlags(flags) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "The %s flags are:\n", label)
	flags.VisitAll(func(f *flag.Flag) {
		fmt.Fprintf(w, " -%s=%v\n", f.Name, f.Value.String())
		fmt.Fprintf(w, "   %s\n", strings.TrimSpace(f.Usage))
	})
}

func countFlags(flags *flag.FlagSet) (num int) {
	flags.VisitAll(func(*flag.Flag) { num++ })
	return
}
