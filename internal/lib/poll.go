package lib

import (
	"context"
	"time"
)

// Poll calls f until it returns nil or dur elapses. Optional interval sets the delay between calls
func Poll(ctx context.Context, dur time.Duration, f func() error, interval ...time.Duration) error {
	pollInterval := 100 * time.Millisecond
	if len(interval) > 0 {
		pollInterval = interval[0]
	}
	deadline := time.Now().Add(dur)

	for {
		err := f()
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
