package server

import (
	"context"
	"time"
)

// WatchParent polls ppid every interval and returns ErrParentExited once the
// value differs from the one seen at start, which happens when the launching
// process dies and the server is re-parented. It returns nil when ctx is done.
//
// It must never read from stdin: the host loop owns that stream.
func WatchParent(ctx context.Context, interval time.Duration, ppid func() int) error {
	parent := ppid()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if ppid() != parent {
				return ErrParentExited
			}
		}
	}
}
