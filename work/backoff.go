package work

import (
	"math"
	"strings"
	"time"
)

type BackoffPolicy string

const BACKOFF_FIXED BackoffPolicy = "FIXED"
const BACKOFF_EXPONENTIAL BackoffPolicy = "EXPONENTIAL"

func ToBackoffPolicy(s string) BackoffPolicy {
	if strings.EqualFold(s, string(BACKOFF_EXPONENTIAL)) {
		return BACKOFF_EXPONENTIAL
	}
	return BACKOFF_FIXED
}

// Delay returns the wait before the attempt following the given failed one.
// FIXED always waits base, EXPONENTIAL doubles base on every failure and never
// exceeds max when max is positive.
func (p BackoffPolicy) Delay(base time.Duration, failedAttempt int, max time.Duration) time.Duration {
	if p != BACKOFF_EXPONENTIAL || failedAttempt <= 1 || base <= 0 {
		return base
	}
	delay := base
	for i := 1; i < failedAttempt; i++ {
		delay *= 2
		if max > 0 && delay >= max {
			return max
		}
		if delay <= 0 {
			return time.Duration(math.MaxInt64)
		}
	}
	return delay
}
