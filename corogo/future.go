// File: corogo/future.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package corogo

import "github.com/momentics/hioload-coro/api"

// Func is a coroutine body: it receives a Yielder giving it access to its
// own promise node and the primitives needed to suspend, and returns its
// final value or error when it completes.
type Func[T any] func(y *Yielder) (T, error)

// Yielder is handed to every running coroutine body: a capability that lets
// combinator-style code manipulate the calling coroutine's own graph node
// directly. Go has no access-control mechanism fine-grained enough to gate
// this to "combinator code only", so Yielder is simply handed to every
// coroutine body; callers are expected to use Self()/Park() only when
// implementing combinators, not as a general escape hatch (documented here,
// not enforced).
type Yielder struct {
	self *Node
	fr   *frame
}

// Self returns the running coroutine's own promise node.
func (y *Yielder) Self() *Node { return y.self }

// Park suspends the running coroutine until some other party — the reactor
// resuming a leaf, or a child finishing and walking its final_waiter chain
// — resumes this frame again.
func (y *Yielder) Park() { y.fr.suspend() }

// Future is a move-only owning handle over a coroutine frame. Go cannot
// enforce move-only at compile time, but the single-use guard (retrieved)
// gives the same "used at most once" externally-observable contract:
// awaiting or Get()-ing it twice returns ErrFutureRetrieved.
type Future[T any] struct {
	node      *Node
	result    api.Result[T]
	retrieved bool
}

// Go starts fn as a new coroutine. It eagerly runs fn up to its first
// suspension or completion before returning: a child coroutine runs
// synchronously from the moment of its creation up to its first suspension.
func Go[T any](fn Func[T]) *Future[T] {
	n := newNode()
	fr := newFrame()
	n.fr = fr
	fut := &Future[T]{node: n, result: api.Err[T](api.ErrBrokenPromise)}

	go func() {
		y := &Yielder{self: n, fr: fr}
		<-fr.resumeCh // wait for the eager-start kick below.
		v, err := fn(y)
		if err != nil {
			fut.result = api.Err[T](err)
		} else {
			fut.result = api.Ok(v)
		}
		n.finishCoroutine()
		fr.finish()
	}()

	fr.resume()
	return fut
}

// Spawn starts fn as a new coroutine and attaches it as a permanent,
// unawaited child of the calling coroutine's own node, so the reactor pass
// that drives the caller also drives fn to completion — without the caller
// ever suspending on it. Use this for fire-and-forget work started from
// inside a coroutine body (an accept loop spawning one coroutine per
// connection); use Go for work started from outside any coroutine, and
// Future.Await for work the caller actually needs the result of.
func Spawn[T any](y *Yielder, fn Func[T]) *Future[T] {
	fut := Go(fn)
	if !fut.node.finished {
		fut.node.AttachChild(y)
	}
	return fut
}

// Node exposes the future's underlying graph node, for the reactor and
// combinator packages.
func (f *Future[T]) Node() *Node { return f.node }

// Done reports whether the underlying coroutine has reached final
// suspension.
func (f *Future[T]) Done() bool { return f.node.finished }

// Peek returns the stored value without consuming the single-use guard;
// ok is false while the future is still pending. Intended for combinator
// internals (wait/when_all/when_any), which must be able to inspect several
// futures' results without each counting as "the" retrieval.
func (f *Future[T]) Peek() (value T, err error, ok bool) {
	if !f.node.finished {
		return value, nil, false
	}
	value, err = f.result.Value()
	return value, err, true
}

// Await suspends the calling coroutine until f completes: link f's node as
// a child of the caller, set f's final_waiter to the caller's frame,
// suspend, and on resumption read the stored value.
func (f *Future[T]) Await(y *Yielder) (T, error) {
	var zero T
	if f.retrieved {
		return zero, api.ErrFutureRetrieved
	}
	if f.node.finished {
		f.retrieved = true
		return f.result.Value()
	}
	f.node.LinkUnderCaller(y)
	y.Park()
	f.node.UnlinkFromCaller(y)
	f.retrieved = true
	return f.result.Value()
}

// Get synchronously drains f: while not done, it advances the default
// reactor runtime on f's root promise node, then consumes and returns the
// stored value. A second call returns ErrFutureRetrieved.
func (f *Future[T]) Get() (T, error) {
	return f.GetWith(DefaultRuntime())
}

// GetWith is Get but against an explicit Runtime, so tests can inject a
// deterministic fake poller instead of the platform default.
func (f *Future[T]) GetWith(rt *Runtime) (T, error) {
	var zero T
	if f.retrieved {
		return zero, api.ErrFutureRetrieved
	}
	for !f.node.finished {
		if err := Advance(f.node, rt); err != nil {
			return zero, err
		}
	}
	f.retrieved = true
	return f.result.Value()
}

// AwaitPoll suspends the calling coroutine until req is ready or its
// deadline elapses.
func AwaitPoll(y *Yielder, req api.PollRequest) error {
	lf := NewLeaf(req)
	if !lf.LinkUnderCaller(y) {
		return api.ErrOutOfMemory
	}
	y.Park()
	// The reactor's dispatch step already removed lf from y.self's children
	// before resuming us, so there is nothing left to unlink.
	return lf.err
}
