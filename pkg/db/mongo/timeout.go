package mongo

import (
	"context"
	"time"
)

// WithTimeout bounds a single repository call. Inside a transaction the
// session context is returned unchanged because wrapping it would detach the
// call from the session; the transaction is bounded by its caller instead.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if IsInTransaction(ctx) {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}

	return context.WithTimeout(ctx, timeout)
}
