// File: corogo/node.go
// Package corogo implements the future/promise/await-graph core: every
// coroutine maintains a back-reference to its caller, so that when a caller
// suspends on multiple children the reactor sees a forest of "who is
// waiting on what".
//
// Go has no first-class resumable stack frames, so each coroutine here is a
// goroutine whose execution is serialized with its resumer through a pair of
// unbuffered rendezvous channels (frame.resumeCh / frame.suspendCh): exactly
// one goroutine is ever runnable at a time. The caller/children graph itself
// is real pointers between Node values, so every invariant holds against an
// actual graph rather than a simulation of one.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package corogo

import (
	"time"

	"github.com/momentics/hioload-coro/api"
	"github.com/momentics/hioload-coro/internal/smallvec"
)

// child is a tagged pointer to either a child Node or a Leaf — the variant
// a promise node's child list can hold.
type child struct {
	node *Node
	leaf *Leaf
}

func (c child) isLeaf() bool { return c.leaf != nil }

// frame is the coroutine-resumption handle: the Go substitute for a
// std::coroutine_handle. Resuming a frame hands control to its goroutine and
// blocks until that goroutine suspends again or finishes.
type frame struct {
	resumeCh  chan struct{}
	suspendCh chan suspendSignal
}

type suspendSignal struct {
	done bool
}

func newFrame() *frame {
	return &frame{
		resumeCh:  make(chan struct{}),
		suspendCh: make(chan suspendSignal),
	}
}

// resume hands control to fr's goroutine and blocks until it suspends again
// or finishes. It is the single primitive every wake-up path in this package
// funnels through: the eager start in Go, the reactor's Dispatch step, and a
// completing child's hand-off to its final_waiter all call this.
func (fr *frame) resume() suspendSignal {
	fr.resumeCh <- struct{}{}
	return <-fr.suspendCh
}

// suspend is called from inside the running coroutine's own goroutine: it
// reports that the coroutine is parking and blocks until resumed.
func (fr *frame) suspend() {
	fr.suspendCh <- suspendSignal{}
	<-fr.resumeCh
}

// finish is called exactly once, from inside the coroutine's own goroutine,
// when the user function returns.
func (fr *frame) finish() {
	fr.suspendCh <- suspendSignal{done: true}
}

// Node is a promise node: per-coroutine graph state. Its fields are
// manipulated only by whichever goroutine currently holds control (the
// frame-resumption protocol above guarantees at most one does at any
// instant), so no synchronization is required.
type Node struct {
	caller      *Node
	children    smallvec.Vec[child]
	finished    bool
	finalWaiter *frame
	fr          *frame // this node's own coroutine frame
}

func newNode() *Node {
	return &Node{}
}

// Caller returns the promise node currently awaiting this one, or nil at
// the top of a wait-graph.
func (n *Node) Caller() *Node { return n.caller }

// SetCaller links n under parent, asserting the single-consumer invariant:
// each promise is awaited by at most one other at any time. Violating it is
// a contract bug, not a runtime error, so it panics.
func (n *Node) SetCaller(parent *Node) {
	if n.caller != nil {
		panic("corogo: future already has a caller (single-consumer violation)")
	}
	n.caller = parent
}

// ClearCaller detaches n from its caller without touching the caller's own
// child list; callers are responsible for removing the corresponding edge,
// mirroring how a leaf stays in its parent's list until explicitly reaped by
// the reactor's dispatch step.
func (n *Node) ClearCaller() { n.caller = nil }

// Done reports whether the underlying coroutine has reached final
// suspension.
func (n *Node) Done() bool { return n.finished }

// setFinalWaiter records who to resume when n finishes.
func (n *Node) setFinalWaiter(fr *frame) { n.finalWaiter = fr }

// PushChildNode links child as a pending child promise of n.
func (n *Node) PushChildNode(c *Node) bool {
	return n.children.PushBack(child{node: c})
}

// PushChildLeaf links lf as a pending awaitable leaf of n, and records n as
// lf's owner so the leaf can find its way back out of n's child list.
func (n *Node) PushChildLeaf(lf *Leaf) bool {
	lf.owner = n
	return n.children.PushBack(child{leaf: lf})
}

// RemoveChildNode detaches child c from n's child list. A no-op if c is not
// currently linked (idempotent, so combinator scope-exit code can call it
// unconditionally).
func (n *Node) RemoveChildNode(c *Node) {
	smallvec.Erase(&n.children, child{node: c}, func(a, b child) bool {
		return !a.isLeaf() && !b.isLeaf() && a.node == b.node
	})
}

// RemoveChildLeaf detaches leaf lf from n's child list.
func (n *Node) RemoveChildLeaf(lf *Leaf) {
	smallvec.Erase(&n.children, child{leaf: lf}, func(a, b child) bool {
		return a.isLeaf() && b.isLeaf() && a.leaf == b.leaf
	})
}

// LinkUnderCaller links n under y's own node as a pending child and
// registers y's frame as the final_waiter to resume when n completes. This
// is the one operation both the plain "await a future" path and every
// combinator use to attach a node they are waiting on, so the completion
// protocol behaves identically regardless of who initiated the wait.
func (n *Node) LinkUnderCaller(y *Yielder) {
	n.SetCaller(y.self)
	y.self.PushChildNode(n)
	n.setFinalWaiter(y.fr)
}

// UnlinkFromCaller detaches n from y's own node's child list. Idempotent:
// safe to call even if n was already removed (e.g. by a completion that
// cleared its own caller link), so combinator scope-exit code never needs
// to track whether the removal already happened.
func (n *Node) UnlinkFromCaller(y *Yielder) {
	y.self.RemoveChildNode(n)
}

// AttachChild links n under y's own node as a permanent child without a
// final_waiter: the owning reactor pass still walks into n's leaves (so a
// detached coroutine makes progress exactly like an awaited one), but
// nothing is resumed when n finishes, since nobody is parked waiting for
// it. Used by Spawn for fire-and-forget coroutines — an accept loop
// spawning one coroutine per connection, say — that the caller never
// Awaits.
func (n *Node) AttachChild(y *Yielder) {
	n.SetCaller(y.self)
	y.self.PushChildNode(n)
}

// ChildRef is an opaque snapshot entry used to save and restore a node's
// child list around a combinator's scope, so a combinator can leave the
// caller's child list exactly as it found it on every exit path.
type ChildRef struct{ c child }

// ChildrenSnapshot captures the current child list for later restoration.
func (n *Node) ChildrenSnapshot() []ChildRef {
	raw := n.children.Snapshot()
	out := make([]ChildRef, len(raw))
	for i, c := range raw {
		out[i] = ChildRef{c: c}
	}
	return out
}

// RestoreChildren replaces n's child list with a prior snapshot.
func (n *Node) RestoreChildren(snapshot []ChildRef) {
	raw := make([]child, len(snapshot))
	for i, r := range snapshot {
		raw[i] = r.c
	}
	n.children.Restore(raw)
}

// finishCoroutine runs the generic completion protocol shared by every
// coroutine regardless of return type: clear the caller link (marking this
// node "ready" from the caller's perspective without touching the caller's
// child list, mirroring leaf readiness) and transfer control to the
// final_waiter if one was registered.
func (n *Node) finishCoroutine() {
	n.finished = true
	caller := n.caller
	n.caller = nil
	_ = caller // caller-side cleanup of the edge is the awaiter's job.
	if n.finalWaiter != nil {
		fw := n.finalWaiter
		n.finalWaiter = nil
		fw.resume()
	}
}

// Leaf is an awaitable leaf: a per-await I/O record. Its address is stable
// from first suspension to resumption because it is only ever reached through
// the pointer NewLeaf returns; each await allocates one Leaf.
type Leaf struct {
	Req    api.PollRequest
	ready  bool
	err    error // nil on success; non-nil and ready==true on failure/timeout.
	waiter *frame
	owner  *Node
}

// NewLeaf constructs a leaf from a poll request, uninitialized.
func NewLeaf(req api.PollRequest) *Leaf {
	return &Leaf{Req: req}
}

// NewTimerLeaf constructs a pure-timer leaf with the given deadline, used by
// combinators to implement a wait/when_all/when_any timeout.
func NewTimerLeaf(deadline time.Time) *Leaf {
	d := deadline
	return &Leaf{Req: api.PollRequest{Fd: api.NoFD, Deadline: &d}}
}

// Ready reports whether the reactor has set this leaf's result.
func (l *Leaf) Ready() bool { return l.ready }

// Err returns the leaf's result; valid only once Ready() is true.
func (l *Leaf) Err() error { return l.err }

// setReady is called by the reactor's Mark step.
func (l *Leaf) setReady(err error) {
	l.ready = true
	l.err = err
}

// setWaiter records which frame to resume once this leaf becomes ready.
func (l *Leaf) setWaiter(fr *frame) { l.waiter = fr }

// LinkUnderCaller attaches l to y's own node as a pending leaf and records
// y's frame as the waiter to resume once the reactor marks l ready. Reports
// false if the node's child list refused the push (never happens with the
// current smallvec implementation, but the fallible contract is kept so a
// future bounded-allocation variant can report it uniformly).
func (l *Leaf) LinkUnderCaller(y *Yielder) bool {
	if !y.self.PushChildLeaf(l) {
		return false
	}
	l.setWaiter(y.fr)
	return true
}

// UnlinkFromCaller detaches l from y's own node's child list. Idempotent.
func (l *Leaf) UnlinkFromCaller(y *Yielder) {
	y.self.RemoveChildLeaf(l)
}
