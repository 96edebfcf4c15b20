//go:build unix

package ioasync

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-coro/api"
)

// errnoError adapts a unix.Errno into an error that unwraps to an api.Error
// with ErrCodeIO, implementing WouldBlock
// so api.IsWouldBlock recognizes EAGAIN/EWOULDBLOCK/EINPROGRESS without
// this package needing its own exported sentinel per errno.
type errnoError struct {
	errno unix.Errno
}

func (e errnoError) Error() string {
	return "ioasync: " + e.errno.Error()
}

func (e errnoError) WouldBlock() bool {
	return e.errno == unix.EAGAIN || e.errno == unix.EWOULDBLOCK || e.errno == unix.EINPROGRESS
}

func (e errnoError) Unwrap() error {
	return api.NewError(api.ErrCodeIO, e.errno.Error())
}

func wrapErrno(err error) error {
	if errno, ok := err.(unix.Errno); ok {
		return errnoError{errno: errno}
	}
	return err
}
