//go:build unix

// File: reactor/reactor_linux.go
// Author: momentics <momentics@gmail.com>
//
// select(2)-based corogo.Poller for every unix corogo targets. select is
// the right tool here, not epoll: the reactor always blocks on the *full*
// current interest set in one syscall and returns, rather than registering
// descriptors ahead of time and receiving callbacks — there is nothing to
// register between passes, so epoll's extra bookkeeping (epoll_ctl per
// add/remove) would buy nothing. FDLimit exists because select's FD_SETSIZE
// caps every fd this backend can watch.

package reactor

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-coro/api"
	"github.com/momentics/hioload-coro/corogo"
)

func init() {
	corogo.SetDefaultPoller(selectPoller{})
}

type selectPoller struct{}

// Poll blocks in one select(2) call until a descriptor in ps is ready or
// ps.Deadline elapses, whichever comes first.
func (selectPoller) Poll(ps corogo.PollSet, now time.Time) ([]corogo.PollOutcome, bool, error) {
	var rset, wset, eset unix.FdSet
	var maxFd int
	for _, fd := range ps.Reads {
		fdSet(&rset, int(fd))
		maxFd = maxInt(maxFd, int(fd))
	}
	for _, fd := range ps.Writes {
		fdSet(&wset, int(fd))
		maxFd = maxInt(maxFd, int(fd))
	}
	for _, fd := range ps.Priority {
		fdSet(&eset, int(fd))
		maxFd = maxInt(maxFd, int(fd))
	}

	var tv *unix.Timeval
	d, infinite := timeoutFrom(ps.Deadline, now)
	if !infinite {
		t := unix.NsecToTimeval(d.Nanoseconds())
		tv = &t
	}

	n, err := selectRetryEINTR(maxFd+1, &rset, &wset, &eset, tv)
	if err != nil {
		return nil, false, api.NewError(api.ErrCodeIO, "reactor: select failed").WithContext("errno", err)
	}
	if n == 0 {
		return nil, true, nil
	}

	out := make([]corogo.PollOutcome, 0, n)
	seen := make(map[uintptr]int)
	add := func(fd uintptr, bit api.Readiness) {
		if idx, ok := seen[fd]; ok {
			out[idx].Ready |= bit
			return
		}
		seen[fd] = len(out)
		out = append(out, corogo.PollOutcome{Fd: fd, Ready: bit})
	}
	for _, fd := range ps.Reads {
		if fdIsSet(&rset, int(fd)) {
			add(fd, api.ReadinessRead)
		}
	}
	for _, fd := range ps.Writes {
		if fdIsSet(&wset, int(fd)) {
			add(fd, api.ReadinessWrite)
		}
	}
	for _, fd := range ps.Priority {
		if fdIsSet(&eset, int(fd)) {
			add(fd, api.ReadinessPriority)
		}
	}
	return out, false, nil
}

// selectRetryEINTR calls unix.Select, silently retrying on EINTR: a signal
// interrupting the syscall is not a failure this backend needs to surface,
// since the caller will simply re-collect and re-poll on the next pass.
func selectRetryEINTR(nfd int, r, w, e *unix.FdSet, timeout *unix.Timeval) (int, error) {
	for {
		n, err := unix.Select(nfd, r, w, e, timeout)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}

func fdSet(set *unix.FdSet, fd int) {
	set.Bits[fd/64] |= int64(1) << (uint(fd) % 64)
}

func fdIsSet(set *unix.FdSet, fd int) bool {
	return set.Bits[fd/64]&(int64(1)<<(uint(fd)%64)) != 0
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
