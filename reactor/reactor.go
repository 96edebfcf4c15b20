// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral helpers shared by every backend in this package.

package reactor

import "time"

// timeoutFrom computes how long to block given an optional absolute
// deadline and the current time: nil means block indefinitely, a deadline
// already in the past collapses to zero (poll once, non-blocking, and let
// the reactor's per-leaf deadline check in its mark step catch the timeout
// in the same pass).
func timeoutFrom(deadline *time.Time, now time.Time) (d time.Duration, infinite bool) {
	if deadline == nil {
		return 0, true
	}
	if !deadline.After(now) {
		return 0, false
	}
	return deadline.Sub(now), false
}
