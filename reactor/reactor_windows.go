//go:build windows

// File: reactor/reactor_windows.go
// Author: momentics <momentics@gmail.com>
//
// WSAPoll-based corogo.Poller for Windows: one poll(2)-equivalent syscall
// per reactor pass, mirroring the unix select(2) backend's "block once on
// the whole interest set" shape instead of IOCP's callback-and-completion
// model, which the core's collect-once/dispatch-once algorithm has no use
// for (there is nothing to keep registered between passes).

package reactor

import (
	"time"

	"golang.org/x/sys/windows"

	"github.com/momentics/hioload-coro/api"
	"github.com/momentics/hioload-coro/corogo"
)

func init() {
	corogo.SetDefaultPoller(wsaPollPoller{})
}

type wsaPollPoller struct{}

// Poll blocks in one WSAPoll call until a socket in ps is ready or
// ps.Deadline elapses, whichever comes first.
func (wsaPollPoller) Poll(ps corogo.PollSet, now time.Time) ([]corogo.PollOutcome, bool, error) {
	events := make(map[uintptr]int16)
	for _, fd := range ps.Reads {
		events[fd] |= windows.POLLIN
	}
	for _, fd := range ps.Writes {
		events[fd] |= windows.POLLOUT
	}
	for _, fd := range ps.Priority {
		events[fd] |= windows.POLLPRI
	}
	fds := make([]windows.WSAPollFd, 0, len(events))
	for fd, ev := range events {
		fds = append(fds, windows.WSAPollFd{Fd: windows.Handle(fd), Events: ev})
	}

	d, infinite := timeoutFrom(ps.Deadline, now)
	timeoutMs := int32(-1)
	if !infinite {
		timeoutMs = int32(d.Milliseconds())
	}

	n, err := windows.WSAPoll(fds, timeoutMs)
	if err != nil {
		return nil, false, api.NewError(api.ErrCodeIO, "reactor: WSAPoll failed").WithContext("errno", err)
	}
	if n == 0 {
		return nil, true, nil
	}

	out := make([]corogo.PollOutcome, 0, n)
	for _, pfd := range fds {
		var ready api.Readiness
		if pfd.REvents&windows.POLLIN != 0 {
			ready |= api.ReadinessRead
		}
		if pfd.REvents&windows.POLLOUT != 0 {
			ready |= api.ReadinessWrite
		}
		if pfd.REvents&windows.POLLPRI != 0 {
			ready |= api.ReadinessPriority
		}
		if ready != 0 {
			out = append(out, corogo.PollOutcome{Fd: uintptr(pfd.Fd), Ready: ready})
		}
	}
	return out, false, nil
}
