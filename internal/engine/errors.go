package engine

import (
	"context"
	"errors"
)

// ErrCancelled is the sentinel raised when a nesting job observes a
// cancellation signal at a suspension point. It propagates to the dispatch
// layer verbatim; partial results are discarded.
var ErrCancelled = errors.New("nesting cancelled")

// ErrKernelUnavailable indicates the boolean kernel has not been
// initialised. NFP-based packers fail fast with it; the driver skips the
// affected variant.
var ErrKernelUnavailable = errors.New("boolean kernel unavailable")

// checkCancel converts a done context into the cancellation sentinel.
// Called only at suspension points.
func checkCancel(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ErrCancelled
	default:
		return nil
	}
}
