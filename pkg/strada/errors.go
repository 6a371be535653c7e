package strada

import (
	"errors"
	"fmt"
)

// Sentinel errors for navigation failures.
var (
	// ErrTransitionInProgress indicates a navigation call arrived while
	// another transition was still collecting votes. Transitions never
	// queue; the caller must wait for the pending one to resolve.
	ErrTransitionInProgress = errors.New("route transition already in progress")

	// ErrCancelled indicates a registered confirm handler vetoed the
	// transition. This is normal flow control, not an infrastructure failure.
	ErrCancelled = errors.New("route transition cancelled")

	// ErrNoURLMapper indicates a URL-based operation was invoked on a router
	// constructed without a URL mapper.
	ErrNoURLMapper = errors.New("no url mapper configured")

	// ErrRouteNotFound indicates the URL mapper produced no route for the
	// given URL.
	ErrRouteNotFound = errors.New("no route for url")
)

// CancelledError carries the reason a handler gave when vetoing a
// transition. It unwraps to ErrCancelled.
type CancelledError struct {
	Reason string
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("strada: transition cancelled: %s", e.Reason)
}

func (e *CancelledError) Unwrap() error {
	return ErrCancelled
}

// IsCancelled checks if an error indicates a vetoed transition.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
