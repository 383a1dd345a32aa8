// Copyright 2015 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdline2

import (
	"fmt"
	"io"
	"os"
)

// Env represents the environment a command runs in: where its input and
// output go, and how it reports a usage error. Main constructs one from the
// real process; tests construct their own to capture output.
type Env struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Usage prints the usage message of the command currently being parsed.
	// Parse sets this before descending into subcommands, so a usage error
	// anywhere in the tree can print the usage of the command it occurred in.
	Usage func(io.Writer)
}

// NewEnv returns an Env wired to the real process's stdin/stdout/stderr.
func NewEnv() *Env {
	return &Env{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// UsageErrorf prints the current usage message followed by the formatted
// error to env.Stderr, and returns ErrUsage so Main exits with code 2.
func (env *Env) UsageErrorf(format string, args ...interface{}) error {
	if env.Usage != nil {
		env.Usage(env.Stderr)
		fmt.Fprintln(env.Stderr)
	}
	fmt.Fprintf(env.Stderr, format+"\n", args...)
	return ErrUsage
}
