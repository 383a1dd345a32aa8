package klog_test

import (
	"testing"

	"github.com/proos-dev/kernel/klog"
)

func TestGetIsIndependent(t *testing.T) {
	a := klog.Get("sched")
	b := klog.Get("ipc.mailbox")
	// Smoke test: logging through two distinct module tags must not panic
	// or interfere with one another.
	a.Infof("tick %d", 1)
	b.Infof("send %d -> %d", 1, 2)
}

func TestVerbosityGate(t *testing.T) {
	klog.SetVerbosity(0)
	l := klog.Get("sched")
	if l.V(5) {
		t.Errorf("V(5) = true at verbosity 0, want false")
	}
	klog.SetVerbosity(5)
	if !l.V(5) {
		t.Errorf("V(5) = false at verbosity 5, want true")
	}
}
