//go:build unix

// File: ioasync/listener.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package ioasync

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-coro/api"
	"github.com/momentics/hioload-coro/corogo"
)

// Listener is a non-blocking TCP listening socket usable from inside a
// coroutine body: Accept suspends the calling coroutine until a connection
// is pending instead of blocking the whole process.
type Listener struct {
	fd int
}

// ListenTCP4 creates, binds and listens on a non-blocking IPv4 TCP socket.
func ListenTCP4(addr unix.SockaddrInet4, backlog int) (*Listener, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		return nil, wrapErrno(err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, wrapErrno(err)
	}
	if err := unix.Bind(fd, &addr); err != nil {
		unix.Close(fd)
		return nil, wrapErrno(err)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return nil, wrapErrno(err)
	}
	return &Listener{fd: fd}, nil
}

// Fd returns the underlying descriptor, for use in api.PollRequest values.
func (l *Listener) Fd() uintptr { return uintptr(l.fd) }

// Close closes the listening socket.
func (l *Listener) Close() error { return unix.Close(l.fd) }

// Accept suspends the calling coroutine until a connection is pending and
// returns it as an already non-blocking Descriptor.
func (l *Listener) Accept(y *corogo.Yielder) (*Descriptor, unix.Sockaddr, error) {
	for {
		nfd, sa, acceptErr := unix.Accept(l.fd)
		if acceptErr == nil {
			if err := unix.SetNonblock(nfd, true); err != nil {
				unix.Close(nfd)
				return nil, nil, wrapErrno(err)
			}
			return NewDescriptor(nfd), sa, nil
		}
		wrapped := wrapErrno(acceptErr)
		if !api.IsWouldBlock(wrapped) {
			return nil, nil, wrapped
		}
		if perr := corogo.AwaitPoll(y, api.PollRequest{Fd: l.Fd(), Events: api.ReadinessRead}); perr != nil {
			return nil, nil, perr
		}
	}
}
