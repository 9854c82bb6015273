package readiness

import "time"

// DefaultDelays is the fixed backoff schedule between probes. The probe
// after attempt k (1-indexed) waits DefaultDelays[k-1]; attempts beyond the
// table reuse its last entry. No jitter, no unbounded growth.
var DefaultDelays = []time.Duration{
	500 * time.Millisecond,
	1 * time.Second,
	2 * time.Second,
	3 * time.Second,
	5 * time.Second,
	8 * time.Second,
	10 * time.Second,
}

// DelayForAttempt returns the delay scheduled after attempt n (1-indexed),
// clamped to the last entry once n exceeds the table length. A nil or empty
// table falls back to DefaultDelays.
func DelayForAttempt(n int, delays []time.Duration) time.Duration {
	if len(delays) == 0 {
		delays = DefaultDelays
	}
	if n < 1 {
		n = 1
	}
	if n > len(delays) {
		n = len(delays)
	}
	return delays[n-1]
}
