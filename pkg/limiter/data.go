package limiter

import (
	"time"

	"github.com/rohmanhakim/seraphim/pkg/timeutil"
)

// per-host request timing bookkeeping
type hostTiming struct {
	lastFetchAt  time.Time
	backoffDelay time.Duration
	retryAfter   time.Duration
	backoffCount int
}

func (h hostTiming) RetryAfter() time.Duration {
	return h.retryAfter
}

func (h hostTiming) BackOffDelay() time.Duration {
	return h.backoffDelay
}

func (h hostTiming) LastFetchAt() time.Time {
	return h.lastFetchAt
}

func (h hostTiming) BackoffCount() int {
	return h.backoffCount
}

// floor is the minimum spacing before the next request: the largest of the
// base delay, the server hint and the current backoff.
func (h hostTiming) floor(base time.Duration) time.Duration {
	return timeutil.MaxDuration([]time.Duration{base, h.retryAfter, h.backoffDelay})
}

// remaining is how much of delay is still left at now.
func (h hostTiming) remaining(now time.Time, delay time.Duration) time.Duration {
	if h.lastFetchAt.IsZero() {
		return 0
	}
	if elapsed := now.Sub(h.lastFetchAt); elapsed < delay {
		return delay - elapsed
	}
	return 0
}
