//go:build unix

// File: ioasync/descriptor.go
// Package ioasync wraps a non-blocking socket fd with the coroutine-aware
// read/write/connect operations built on top of corogo.AwaitPoll: each
// blocking-shaped call here is really "attempt once, and if the kernel says
// not ready, suspend until the reactor says otherwise, then retry" —
// nonblocking-plus-poll discipline routed through the coroutine graph
// instead of a batch Send/Recv pair called from outside any wait-graph.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package ioasync

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-coro/api"
	"github.com/momentics/hioload-coro/corogo"
)

// Descriptor is a non-blocking socket fd usable from inside a coroutine
// body.
type Descriptor struct {
	fd int
}

// Socket creates a non-blocking socket of the given domain/type/protocol.
func Socket(domain, typ, proto int) (*Descriptor, error) {
	fd, err := unix.Socket(domain, typ|unix.SOCK_NONBLOCK, proto)
	if err != nil {
		return nil, wrapErrno(err)
	}
	return &Descriptor{fd: fd}, nil
}

// NewDescriptor wraps an already-open, already-non-blocking fd.
func NewDescriptor(fd int) *Descriptor { return &Descriptor{fd: fd} }

// Fd returns the underlying descriptor, for use in api.PollRequest values.
func (d *Descriptor) Fd() uintptr { return uintptr(d.fd) }

// Close closes the underlying fd.
func (d *Descriptor) Close() error { return unix.Close(d.fd) }

// SetNonblock explicitly sets or clears O_NONBLOCK; descriptors created via
// Socket are already non-blocking, this is for fds handed in from elsewhere
// (e.g. a listener's Accept result).
func (d *Descriptor) SetNonblock(nonblocking bool) error {
	return unix.SetNonblock(d.fd, nonblocking)
}

// ReadSome attempts a single non-blocking read, returning a WouldBlock
// error (see api.IsWouldBlock) instead of suspending when no data is
// currently available.
func (d *Descriptor) ReadSome(buf []byte) (int, error) {
	n, err := unix.Read(d.fd, buf)
	if err != nil {
		return 0, wrapErrno(err)
	}
	return n, nil
}

// WriteSome attempts a single non-blocking write.
func (d *Descriptor) WriteSome(buf []byte) (int, error) {
	n, err := unix.Write(d.fd, buf)
	if err != nil {
		return 0, wrapErrno(err)
	}
	return n, nil
}

// Read suspends the calling coroutine until buf has been filled in full,
// looping over short reads until either the buffer is full or the peer
// closes (a short return of fewer bytes than len(buf), nil error). mode
// selects whether the first underlying read is attempted before ever
// suspending (Eager) or only after the first poll (Lazy); every attempt
// after the first always polls first regardless of mode, per the op(buf)
// algorithm this and Write/Send share.
func (d *Descriptor) Read(y *corogo.Yielder, buf []byte, mode api.IOMode) (int, error) {
	total := 0
	eagerAttempt := mode == api.Eager
	for total < len(buf) {
		if !eagerAttempt {
			if perr := corogo.AwaitPoll(y, api.PollRequest{Fd: d.Fd(), Events: api.ReadinessRead}); perr != nil {
				return total, perr
			}
		}
		eagerAttempt = false
		n, err := d.ReadSome(buf[total:])
		if err != nil {
			if api.IsWouldBlock(err) {
				continue
			}
			return total, err
		}
		if n == 0 {
			return total, nil // EOF: short return.
		}
		total += n
	}
	return total, nil
}

// Write suspends the calling coroutine until buf has been written in full,
// looping over short writes until the whole buffer has gone out. See Read
// for the meaning of mode.
func (d *Descriptor) Write(y *corogo.Yielder, buf []byte, mode api.IOMode) (int, error) {
	n, _, err := d.writeAll(y, buf, mode == api.Eager)
	return n, err
}

// Send issues sendmsg over all remaining buffers, one batch per attempt,
// while more than one buffer remains; a partially sent front buffer is
// trimmed in place and stays in the next batch. Once a single buffer (whole
// or partly sent) is left, it finishes with scalar writes. See Read for the
// meaning of mode.
func (d *Descriptor) Send(y *corogo.Yielder, bufs [][]byte, mode api.IOMode) (int, error) {
	total := 0
	eagerAttempt := mode == api.Eager
	for len(bufs) > 1 {
		if !eagerAttempt {
			if perr := corogo.AwaitPoll(y, api.PollRequest{Fd: d.Fd(), Events: api.ReadinessWrite}); perr != nil {
				return total, perr
			}
		}
		eagerAttempt = false
		n, err := unix.SendmsgBuffers(d.fd, bufs, nil, nil, 0)
		if err != nil {
			wrapped := wrapErrno(err)
			if api.IsWouldBlock(wrapped) {
				continue
			}
			return total, wrapped
		}
		total += n
		bufs = consumeVectored(bufs, n)
	}
	if len(bufs) == 1 && len(bufs[0]) > 0 {
		n, _, err := d.writeAll(y, bufs[0], eagerAttempt)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// consumeVectored drops n bytes from the front of bufs, trimming a partially
// consumed buffer in place rather than reallocating it.
func consumeVectored(bufs [][]byte, n int) [][]byte {
	for n > 0 && len(bufs) > 0 {
		if n < len(bufs[0]) {
			bufs[0] = bufs[0][n:]
			return bufs
		}
		n -= len(bufs[0])
		bufs = bufs[1:]
	}
	return bufs
}

// writeAll writes buf in full, honoring an already-decided first-attempt
// eagerness (Send may have already spent its one eager attempt in the
// sendmsg loop before falling through to this scalar path). It reports the
// eagerAttempt flag's final value alongside bytes written and error, though
// callers that don't chain into another op ignore it.
func (d *Descriptor) writeAll(y *corogo.Yielder, buf []byte, eagerAttempt bool) (int, bool, error) {
	total := 0
	for total < len(buf) {
		if !eagerAttempt {
			if perr := corogo.AwaitPoll(y, api.PollRequest{Fd: d.Fd(), Events: api.ReadinessWrite}); perr != nil {
				return total, eagerAttempt, perr
			}
		}
		eagerAttempt = false
		n, err := d.WriteSome(buf[total:])
		if err != nil {
			if api.IsWouldBlock(err) {
				continue
			}
			return total, eagerAttempt, err
		}
		total += n
	}
	return total, eagerAttempt, nil
}

// Connect initiates a non-blocking connect and suspends until it completes,
// verifying success via SO_ERROR rather than trusting a writable fd alone —
// a writable-but-failed connect is otherwise indistinguishable from success
// on most socket implementations.
func (d *Descriptor) Connect(y *corogo.Yielder, addr unix.Sockaddr) error {
	err := unix.Connect(d.fd, addr)
	if err != nil && err != unix.EINPROGRESS {
		return wrapErrno(err)
	}
	if err == unix.EINPROGRESS {
		if perr := corogo.AwaitPoll(y, api.PollRequest{Fd: d.Fd(), Events: api.ReadinessWrite}); perr != nil {
			return perr
		}
	}
	soErr, gerr := unix.GetsockoptInt(d.fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if gerr != nil {
		return wrapErrno(gerr)
	}
	if soErr != 0 {
		return wrapErrno(unix.Errno(soErr))
	}
	return nil
}
