package kerr_test

import (
	"testing"

	"github.com/proos-dev/kernel/kerr"
)

func TestIsAndKindOf(t *testing.T) {
	err := kerr.Deniedf("thread %d lacks SEND to %d", 3, 7)
	if !kerr.Is(err, kerr.Denied) {
		t.Errorf("Is(err, Denied) = false, want true")
	}
	if kerr.Is(err, kerr.Full) {
		t.Errorf("Is(err, Full) = true, want false")
	}
	if got, want := kerr.KindOf(err), kerr.Denied; got != want {
		t.Errorf("KindOf = %v, want %v", got, want)
	}
	if kerr.KindOf(nil) != 0 {
		t.Errorf("KindOf(nil) != 0")
	}
}

func TestMessageIncludesKind(t *testing.T) {
	err := kerr.Fullf("mailbox %d at capacity", 2)
	if got, want := err.Error(), "Full: mailbox 2 at capacity"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
