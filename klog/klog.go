// Package klog implements the kernel's logging sink: level, module, and
// text, as spec.md §6 requires of the one logging collaborator the core
// consumes.
//
// It keeps part of the shape of the teacher's vlog package (one
// package-level *llog.Log instance and a V() verbosity gate) and adds the
// module tag the kernel needs: each Logger names the subsystem logging
// through it (the sched and kernel packages each keep one), the same way the
// C original tags log lines with a subsystem string (see
// original_source/kernel/klog.h). Logging goes through Logger methods only;
// the package has no free logging functions.
package klog

import (
	"fmt"

	"github.com/cosmosnicolaou/llog"
)

// Level is the verbosity level for V-style conditional logging.
type Level llog.Level

var root = llog.NewLogger("proos", 2)

// Logger is a logging sink pinned to one kernel module name.
type Logger struct {
	module string
}

// Get returns a Logger tagged with the given module name, e.g. "sched" or
// "ipc.mailbox". Loggers are cheap; callers typically keep one as a package
// var, as the C original keeps one klog tag per subsystem.
func Get(module string) *Logger {
	return &Logger{module: module}
}

func (l *Logger) tag(format string) string {
	return fmt.Sprintf("[%s] %s", l.module, format)
}

// Infof logs an informational line.
func (l *Logger) Infof(format string, args ...interface{}) {
	root.Printf(llog.InfoLog, l.tag(format), args...)
}

// Warningf logs a warning line, to both the WARNING and INFO logs.
func (l *Logger) Warningf(format string, args ...interface{}) {
	root.Printf(llog.WarningLog, l.tag(format), args...)
}

// Errorf logs an error line, to the ERROR, WARNING, and INFO logs.
func (l *Logger) Errorf(format string, args ...interface{}) {
	root.Printf(llog.ErrorLog, l.tag(format), args...)
}

// V reports whether logging at the given verbosity level is enabled, so
// callers can skip building an expensive message when it is not:
// if l.V(2) { l.Infof(...) }.
func (l *Logger) V(level Level) bool {
	return root.V(llog.Level(level))
}

// SetVerbosity sets the global verbosity threshold used by V.
func SetVerbosity(level Level) {
	root.SetV(llog.Level(level))
}
