// Package kerr implements the kernel's typed error kinds.
//
// It follows the constructor idiom the teacher module reaches for at every
// call site that needs a classified error (config/config.go:
// "ErrKeyNotFound = verror.NotFoundf(...)"), rebuilt locally because the
// teacher's own verror package (v.io/v23/verror) is an unpublished, unfetchable
// path that appears only in comments and test imports of the retrieval pack,
// never in a resolvable go.sum. kerr reproduces the same Kind+message shape
// the teacher demonstrates, scoped to the six kinds the kernel core needs.
package kerr

import "fmt"

// Kind classifies an error the way the kernel's public operations must, per
// the error taxonomy: NotFound, Invalid, Denied, Full, Exhausted, WouldBlock.
type Kind int

const (
	// NotFound marks an unknown id (thread, mailbox, channel, share, mutex, semaphore).
	NotFound Kind = iota + 1
	// Invalid marks a bad argument: misalignment, oversized payload, out-of-range config.
	Invalid
	// Denied marks a missing capability or subscription.
	Denied
	// Full marks a bounded queue or table that is already at capacity.
	Full
	// Exhausted marks a pool with no free slot left to allocate.
	Exhausted
	// WouldBlock marks a non-blocking operation that found nothing available.
	WouldBlock
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "NotFound"
	case Invalid:
		return "Invalid"
	case Denied:
		return "Denied"
	case Full:
		return "Full"
	case Exhausted:
		return "Exhausted"
	case WouldBlock:
		return "WouldBlock"
	default:
		return "Unknown"
	}
}

// Error is a kernel error carrying a Kind alongside its message, so callers
// can branch on classification (kerr.Is) instead of matching text.
type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

func newf(k Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, msg: fmt.Sprintf("%s: %s", k, fmt.Sprintf(format, args...))}
}

// NotFoundf builds a Kind-NotFound error.
func NotFoundf(format string, args ...interface{}) error { return newf(NotFound, format, args...) }

// Invalidf builds a Kind-Invalid error.
func Invalidf(format string, args ...interface{}) error { return newf(Invalid, format, args...) }

// Deniedf builds a Kind-Denied error.
func Deniedf(format string, args ...interface{}) error { return newf(Denied, format, args...) }

// Fullf builds a Kind-Full error.
func Fullf(format string, args ...interface{}) error { return newf(Full, format, args...) }

// Exhaustedf builds a Kind-Exhausted error.
func Exhaustedf(format string, args ...interface{}) error { return newf(Exhausted, format, args...) }

// WouldBlockf builds a Kind-WouldBlock error.
func WouldBlockf(format string, args ...interface{}) error {
	return newf(WouldBlock, format, args...)
}

// Is reports whether err is a *Error of the given Kind.
func Is(err error, k Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == k
}

// KindOf returns the Kind of err, or 0 if err is nil or not a kerr.Error.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return 0
}
