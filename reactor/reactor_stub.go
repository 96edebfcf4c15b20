//go:build !unix && !windows

// File: reactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
//
// Fallback for platforms with neither a select(2) family nor WSAPoll.

package reactor

import (
	"time"

	"github.com/momentics/hioload-coro/api"
	"github.com/momentics/hioload-coro/corogo"
)

func init() {
	corogo.SetDefaultPoller(unsupportedPoller{})
}

type unsupportedPoller struct{}

func (unsupportedPoller) Poll(ps corogo.PollSet, now time.Time) ([]corogo.PollOutcome, bool, error) {
	return nil, false, api.NewError(api.ErrCodeNotSupported, "reactor: no readiness backend for this platform")
}
