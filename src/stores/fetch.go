package stores

import (
	"context"
	"errors"
	"time"
)

// Detach returns a context that keeps ctx's values but ignores its
// cancellation, bounded by timeout instead. Fetches that must survive the
// caller going away (a stopped poll, a disconnected HTTP client) run on it.
func Detach(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}

// cancelledByCaller reports whether ctx was cancelled explicitly, as opposed
// to timing out or never being cancelled
func cancelledByCaller(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.Canceled)
}
