// Package api
// Author: momentics@gmail.com
//
// Generic result carrier and error propagation.
//
// Result[T] is a value-or-error sum type: promise nodes initialize their
// result slot explicitly rather than relying on T's zero value, since a
// zero T is a valid success value for many T. The carrier itself stays a
// plain struct so it is trivially movable/copyable whenever T is.

package api

// Result wraps either a value of T or an error.
type Result[T any] struct {
	value T
	err   error
}

// Ok builds a successful result.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Err builds a failed result. Passing a nil err is a caller bug and panics,
// since a nil-error Result would be indistinguishable from success.
func Err[T any](err error) Result[T] {
	if err == nil {
		panic("api: Err called with nil error")
	}
	return Result[T]{err: err}
}

// IsErr reports whether this result holds an error.
func (r Result[T]) IsErr() bool { return r.err != nil }

// IsOK reports whether this result holds a value.
func (r Result[T]) IsOK() bool { return r.err == nil }

// Error returns the carried error, or nil on success.
func (r Result[T]) Error() error { return r.err }

// Value returns the carried value and error; callers that care about
// correctness on the error path should check Error() rather than Value().
func (r Result[T]) Value() (T, error) { return r.value, r.err }

// Must returns the value, panicking if the result holds an error. Reserved
// for call sites that have already proven success (e.g. right after IsOK).
func (r Result[T]) Must() T {
	if r.err != nil {
		panic(r.err)
	}
	return r.value
}
