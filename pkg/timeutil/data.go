package timeutil

import (
	"math"
	"time"
)

// BackoffParam describes exponential growth: the n-th delay is
// initial * multiplier^(n-1), never above max. A zero max means uncapped.
type BackoffParam struct {
	initialDuration time.Duration
	multiplier      float64
	maxDuration     time.Duration
}

func NewBackoffParam(
	initialDuration time.Duration,
	multiplier float64,
	maxDuration time.Duration,
) BackoffParam {
	return BackoffParam{
		initialDuration: initialDuration,
		multiplier:      multiplier,
		maxDuration:     maxDuration,
	}
}

func (b BackoffParam) InitialDuration() time.Duration {
	return b.initialDuration
}

func (b BackoffParam) Multiplier() float64 {
	return b.multiplier
}

func (b BackoffParam) MaxDuration() time.Duration {
	return b.maxDuration
}

// Step returns the un-jittered delay for the given 1-based count.
func (b BackoffParam) Step(count int) time.Duration {
	if count < 1 {
		count = 1
	}
	delay := float64(b.initialDuration) * math.Pow(b.multiplier, float64(count-1))
	if max := float64(b.maxDuration); max > 0 && delay > max {
		delay = max
	}
	if delay < 0 || math.IsNaN(delay) {
		return 0
	}
	return time.Duration(delay)
}
