// Package runerr implements the RunError sum described in spec.md §7: every
// fallible core operation returns one of a user-visible Python exception, a
// resource-exhaustion refusal, or a defensive internal-invariant failure.
// Nothing in the core ever panics across a package boundary; any unexpected
// condition is converted to an Internal error here instead.
package runerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind distinguishes the three RunError variants.
type Kind int

const (
	// KindExc is a user-visible Python exception, catchable from Python.
	KindExc Kind = iota
	// KindResource is an allocation or resource-tracker refusal. Surfaced
	// to the host; not catchable from Python.
	KindResource
	// KindInternal is a defensive panic-replacement for invariant
	// violations. Indicates a bug in the core; propagates to the host.
	KindInternal
)

// ExcType is the closed set of builtin Python exception kinds.
type ExcType int

const (
	AttributeError ExcType = iota
	TypeError
	ValueError
	KeyError
	IndexError
	RuntimeError
	OverflowError
	ImportError
	NotImplementedError
	ZeroDivisionError
	StopIteration
)

var excTypeNames = [...]string{
	AttributeError:      "AttributeError",
	TypeError:           "TypeError",
	ValueError:          "ValueError",
	KeyError:            "KeyError",
	IndexError:          "IndexError",
	RuntimeError:        "RuntimeError",
	OverflowError:       "OverflowError",
	ImportError:         "ImportError",
	NotImplementedError: "NotImplementedError",
	ZeroDivisionError:   "ZeroDivisionError",
	StopIteration:       "StopIteration",
}

func (e ExcType) String() string {
	if int(e) < 0 || int(e) >= len(excTypeNames) {
		return "UnknownError"
	}
	return excTypeNames[e]
}

// InternalSink receives a one-line diagnostic for every Internal error
// this package constructs, so a host can route core-bug diagnostics into
// its own logging stack without this package importing one directly
// (ambient logging is carried even though spec.md §1 scopes "logging"
// itself out of the core). Defaults to a no-op.
type InternalSink interface {
	LogInternal(msg string)
}

type noopSink struct{}

func (noopSink) LogInternal(string) {}

var sink InternalSink = noopSink{}

// SetSink installs the host's diagnostic sink for Internal errors. Passing
// nil restores the no-op default.
func SetSink(s InternalSink) {
	if s == nil {
		s = noopSink{}
	}
	sink = s
}

// Error is the concrete RunError value. Exc/Resource variants are plain
// data: expected control flow, not bugs, so they don't carry a stack trace.
// Internal errors wrap their cause with github.com/pkg/errors so a host
// embedding the core gets a real stack out of an invariant violation.
type Error struct {
	Kind    Kind
	ExcType ExcType // valid when Kind == KindExc
	Message string
	Args    []any // structured exception arguments, e.g. for KeyError(key)
	cause   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindExc:
		if e.Message == "" {
			return e.ExcType.String()
		}
		return fmt.Sprintf("%s: %s", e.ExcType.String(), e.Message)
	case KindResource:
		return fmt.Sprintf("resource error: %s", e.Message)
	case KindInternal:
		return fmt.Sprintf("internal error: %s", e.Message)
	default:
		return e.Message
	}
}

// Unwrap exposes the pkg/errors-wrapped cause of an Internal error for
// errors.Is/errors.As and for stack-trace formatting with %+v.
func (e *Error) Unwrap() error { return e.cause }

// Exc constructs a user-visible Python exception.
func Exc(t ExcType, format string, args ...any) *Error {
	return &Error{Kind: KindExc, ExcType: t, Message: fmt.Sprintf(format, args...)}
}

// ExcWithArgs constructs a user-visible Python exception carrying
// structured arguments (e.g. the key for a KeyError) in addition to its
// display message.
func ExcWithArgs(t ExcType, message string, args ...any) *Error {
	return &Error{Kind: KindExc, ExcType: t, Message: message, Args: args}
}

// Resource constructs an allocation/resource-tracker refusal.
func Resource(reason string) *Error {
	return &Error{Kind: KindResource, Message: reason}
}

// Internalf constructs a defensive Internal error, wrapping the message
// with a captured stack trace.
func Internalf(format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	sink.LogInternal(msg)
	return &Error{Kind: KindInternal, Message: msg, cause: errors.New(msg)}
}

// FromPanic converts a recovered panic value into an Internal error. Used
// at every core/host boundary per spec.md §7: "errors never unwind past
// the core/host boundary as a native panic".
func FromPanic(r any) *Error {
	msg := fmt.Sprintf("recovered panic: %v", r)
	sink.LogInternal(msg)
	return &Error{Kind: KindInternal, Message: msg, cause: errors.New(msg)}
}

// IsExc reports whether err is a RunError of the given exception type.
func IsExc(err error, t ExcType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == KindExc && e.ExcType == t
}
