// File: internal/smallvec/smallvec.go
// Package smallvec provides an inline-2 small-buffer vector of pointers.
// Typical wait-graph nodes have one or two children (a single awaited
// future, or a single pending I/O), so the common case must not allocate.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package smallvec

// inlineCap is the number of elements stored without a heap spill buffer.
const inlineCap = 2

// Vec is an ordered sequence of pointers. The zero value is a valid, empty
// Vec. Growth beyond inlineCap spills to a heap-allocated slice that
// doubles in capacity; Erase preserves order of the remaining elements.
type Vec[T any] struct {
	inline [inlineCap]T
	n      int   // number of inline elements in use, only meaningful while spill == nil
	spill  []T   // non-nil once growth exceeds inlineCap
}

// Len returns the number of elements currently stored.
func (v *Vec[T]) Len() int {
	if v.spill != nil {
		return len(v.spill)
	}
	return v.n
}

// At returns the element at index i. Callers must keep i in range; this type
// trusts internal callers and is never exposed outside this module.
func (v *Vec[T]) At(i int) T {
	if v.spill != nil {
		return v.spill[i]
	}
	return v.inline[i]
}

// Set overwrites the element at index i.
func (v *Vec[T]) Set(i int, val T) {
	if v.spill != nil {
		v.spill[i] = val
		return
	}
	v.inline[i] = val
}

// PushBack appends val, spilling to the heap if the inline capacity is
// exceeded. It always reports ok=true; the result is kept so the contract
// stays fallible and callers can propagate "not enough memory" uniformly
// with every other allocating operation in the core.
func (v *Vec[T]) PushBack(val T) (ok bool) {
	if v.spill == nil {
		if v.n < inlineCap {
			v.inline[v.n] = val
			v.n++
			return true
		}
		// Spill: move the inline elements into a freshly doubled buffer.
		v.spill = make([]T, v.n, v.n*2)
		copy(v.spill, v.inline[:v.n])
	}
	if len(v.spill) == cap(v.spill) {
		grown := make([]T, len(v.spill), cap(v.spill)*2)
		copy(grown, v.spill)
		v.spill = grown
	}
	v.spill = append(v.spill, val)
	return true
}

// Erase removes the first element equal to val per eq, preserving the order
// of the remaining elements. Reports whether an element was removed.
func Erase[T any](v *Vec[T], val T, eq func(a, b T) bool) bool {
	n := v.Len()
	for i := 0; i < n; i++ {
		if eq(v.At(i), val) {
			v.eraseAt(i)
			return true
		}
	}
	return false
}

// eraseAt removes the element at index i, shifting later elements down.
func (v *Vec[T]) eraseAt(i int) {
	if v.spill != nil {
		v.spill = append(v.spill[:i], v.spill[i+1:]...)
		return
	}
	for j := i; j < v.n-1; j++ {
		v.inline[j] = v.inline[j+1]
	}
	v.n--
	var zero T
	v.inline[v.n] = zero
}

// EraseRange removes elements [from, to), preserving remaining order.
func (v *Vec[T]) EraseRange(from, to int) {
	if from >= to {
		return
	}
	if v.spill != nil {
		v.spill = append(v.spill[:from], v.spill[to:]...)
		return
	}
	shifted := v.n - to
	for j := 0; j < shifted; j++ {
		v.inline[from+j] = v.inline[to+j]
	}
	v.n -= to - from
	var zero T
	for j := v.n; j < to; j++ {
		v.inline[j] = zero
	}
}

// Clear empties the vector, releasing any spill buffer.
func (v *Vec[T]) Clear() {
	v.spill = nil
	var zero T
	for i := 0; i < v.n; i++ {
		v.inline[i] = zero
	}
	v.n = 0
}

// Each calls fn for every element in order. fn must not mutate v.
func (v *Vec[T]) Each(fn func(T)) {
	n := v.Len()
	for i := 0; i < n; i++ {
		fn(v.At(i))
	}
}

// Snapshot returns a copy of the current elements as a plain slice, used by
// combinators that need to save/restore a node's children around a scope.
func (v *Vec[T]) Snapshot() []T {
	out := make([]T, v.Len())
	for i := range out {
		out[i] = v.At(i)
	}
	return out
}

// Restore replaces the vector's contents with snapshot, reusing the inline
// storage when it fits.
func (v *Vec[T]) Restore(snapshot []T) {
	v.Clear()
	for _, e := range snapshot {
		v.PushBack(e)
	}
}
