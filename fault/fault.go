// Package fault holds the error kinds shared by the negotiation and
// provisioning packages, and the advisory error channel they report through.
package fault

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	ErrAPI              = errors.New("graphics api call failed")
	ErrNoMatch          = errors.New("no preference matched the available set")
	ErrMissingLayer     = errors.New("required layer not available")
	ErrMissingExtension = errors.New("required extension not available")
	ErrNoDevice         = errors.New("no physical device available")
	ErrNoGraphicsQueue  = errors.New("no queue family supports graphics and presentation")
	ErrNoMemoryType     = errors.New("no memory type satisfies the requirements")
	ErrImageCountBound  = errors.New("swapchain image count exceeds the declared bound")
	ErrAPIVersion       = errors.New("graphics api version too old")

	// ErrNotReady is transient: the surface has no area right now. It is
	// never reported.
	ErrNotReady = errors.New("surface not ready")
)

var kinds = []error{
	ErrAPI,
	ErrNoMatch,
	ErrMissingLayer,
	ErrMissingExtension,
	ErrNoDevice,
	ErrNoGraphicsQueue,
	ErrNoMemoryType,
	ErrImageCountBound,
	ErrAPIVersion,
	ErrNotReady,
}

// Reporter receives a formatted message for every failure that is not easily
// recoverable. It is advisory and cannot change control flow.
type Reporter interface {
	Report(message string)
}

type ReporterFunc func(message string)

func (f ReporterFunc) Report(message string) {
	f(message)
}

// kindError carries a kind in the chain so that both this module's errors
// package and the standard library's errors.Is find it.
type kindError struct {
	cause error
	kind  error
}

func (e *kindError) Error() string { return e.cause.Error() }
func (e *kindError) Unwrap() error { return e.cause }

func (e *kindError) Is(target error) bool {
	return target == e.kind
}

// Mark attaches kind to err.
func Mark(err error, kind error) error {
	if err == nil {
		return nil
	}
	return &kindError{cause: errors.Mark(err, kind), kind: kind}
}

// HasKind reports whether err is marked with one of the package's kinds.
func HasKind(err error) bool {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// Check wraps a failed call with its name and the caller's location, reports
// it, and returns it. Errors that carry no kind are marked ErrAPI.
func Check(r Reporter, err error, call string) error {
	if err == nil {
		return nil
	}

	wrapped := errors.WrapWithDepthf(1, err, "%s", call)
	if !HasKind(err) {
		wrapped = Mark(wrapped, ErrAPI)
	}

	Report(r, wrapped)
	return wrapped
}

// Fail creates a new error marked with kind, reports it, and returns it.
func Fail(r Reporter, kind error, format string, args ...interface{}) error {
	err := Mark(errors.NewWithDepthf(1, format, args...), kind)
	Report(r, err)
	return err
}

// Report sends err through r. Nil errors and ErrNotReady are dropped.
func Report(r Reporter, err error) {
	if r == nil || err == nil || errors.Is(err, ErrNotReady) {
		return
	}

	r.Report(Message(err))
}

// Message formats err the way the error channel expects it.
func Message(err error) string {
	file, line, fn, ok := errors.GetOneLineSource(err)
	if !ok {
		return fmt.Sprintf("presentkit error: %v", err)
	}
	return fmt.Sprintf("presentkit error in `%s`, %s:%d: %v", fn, file, line, err)
}
