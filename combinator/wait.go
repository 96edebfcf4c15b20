// File: combinator/wait.go
// Package combinator implements the composition primitives that attach and
// detach children to a coroutine's own promise node instead of copying the
// futures they compose: wait, when_all, when_any.
//
// Every combinator here is implemented as ordinary Go code running inside
// the calling coroutine — there is no separate combinator coroutine. It
// borrows the caller's own corogo.Node (via corogo.Yielder.Self) as its
// working set, exactly as described for "await current-promise": the
// futures being waited on are linked as children of the *caller's* own
// node, the caller parks, and on every resumption it rechecks which of them
// are now done, until the wait condition or deadline is satisfied. On the
// way out it restores the caller's child list to what it contained on
// entry, so combinators compose cleanly (a when_all of when_anys leaves no
// trace in its own caller's graph).
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package combinator

import (
	"time"

	"github.com/momentics/hioload-coro/api"
	"github.com/momentics/hioload-coro/corogo"
)

// Mode selects whether Wait returns as soon as one future completes or only
// once every future has. In either mode an elapsed deadline ends the wait
// early with a timed-out error.
type Mode int

const (
	// All waits for every future to complete.
	All Mode = iota
	// First returns as soon as any one future completes.
	First
)

// NoneReady is the index Wait and WhenAny return when no future became
// ready before the deadline elapsed.
const NoneReady = -1

// Wait links every not-yet-done future in futures under the calling
// coroutine's own node, optionally alongside a timer leaf for deadline, and
// parks until mode's condition holds. It returns the index of the first
// future observed ready, or NoneReady with a timed-out error if deadline
// elapsed first. On return the caller's child list is restored to exactly
// what it held on entry, regardless of outcome.
func Wait[T any](y *corogo.Yielder, mode Mode, futures []*corogo.Future[T], deadline *time.Time) (int, error) {
	if len(futures) == 0 {
		return 0, nil
	}

	snapshot := y.Self().ChildrenSnapshot()

	linked := make([]bool, len(futures))
	for i, f := range futures {
		if !f.Done() {
			f.Node().LinkUnderCaller(y)
			linked[i] = true
		}
	}

	var timer *corogo.Leaf
	if deadline != nil {
		timer = corogo.NewTimerLeaf(*deadline)
		timer.LinkUnderCaller(y)
	}

	restore := func() {
		for i, f := range futures {
			if linked[i] {
				f.Node().ClearCaller()
				linked[i] = false
			}
		}
		timer = nil
		y.Self().RestoreChildren(snapshot)
	}

	for {
		if idx := firstDone(futures); idx != NoneReady {
			if mode == First || allDone(futures) {
				restore()
				return idx, nil
			}
		}
		if timerExpired(timer) {
			restore()
			return NoneReady, api.ErrTimedOut
		}
		y.Park()
	}
}

func firstDone[T any](futures []*corogo.Future[T]) int {
	for i, f := range futures {
		if f.Done() {
			return i
		}
	}
	return NoneReady
}

func allDone[T any](futures []*corogo.Future[T]) bool {
	for _, f := range futures {
		if !f.Done() {
			return false
		}
	}
	return true
}

func timerExpired(l *corogo.Leaf) bool {
	return l != nil && l.Ready()
}

// WhenAll waits for every future in futures to complete and gathers each
// one's result into a slice in the same order, using Future.Peek so it
// never trips the single-retrieval guard out from under a caller who also
// holds these futures elsewhere.
func WhenAll[T any](y *corogo.Yielder, futures []*corogo.Future[T], deadline *time.Time) ([]api.Result[T], error) {
	if _, err := Wait(y, All, futures, deadline); err != nil {
		return nil, err
	}
	out := make([]api.Result[T], len(futures))
	for i, f := range futures {
		v, err, ok := f.Peek()
		if !ok {
			// Wait(All, ...) guarantees every future is done by the time it
			// returns without error; this would indicate a contract bug in
			// the reactor's dispatch order, not a normal runtime condition.
			out[i] = api.Err[T](api.NewError(api.ErrCodeBrokenPromise, "combinator: future not done after WhenAll"))
			continue
		}
		if err != nil {
			out[i] = api.Err[T](err)
		} else {
			out[i] = api.Ok(v)
		}
	}
	return out, nil
}

// WhenAny waits for the first future in futures to complete and returns its
// index; futures remains fully owned by the caller, who can still Get() the
// winner, Peek() the losers that happened to also finish, or simply drop
// the rest to cancel their sub-graphs.
func WhenAny[T any](y *corogo.Yielder, futures []*corogo.Future[T], deadline *time.Time) (int, error) {
	return Wait(y, First, futures, deadline)
}
