// File: internal/metrics/history.go
// Package metrics exports reactor-pass telemetry to anything outside the
// single-threaded core that wants to watch it — a monitoring goroutine, a
// periodic exporter — without the reactor itself depending on what that
// consumer does with the numbers.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package metrics

import (
	"sync"
	"time"

	"github.com/eapache/queue"
)

// Sample describes one completed reactor pass.
type Sample struct {
	At          time.Time
	PollLatency time.Duration
	LeavesWoken int
}

// History is a bounded ring of recent reactor-pass samples, backed by
// eapache/queue's ring-buffer FIFO. It is the one place in this codebase
// where a second goroutine legitimately touches data the reactor also
// writes: History.Push is called from the reactor's own goroutine after
// each Advance, and History.Snapshot is called from whatever monitoring
// goroutine a caller wires up, so the internal queue is guarded by a mutex
// even though the coroutine core itself needs none.
type History struct {
	mu       sync.Mutex
	q        *queue.Queue
	capacity int
}

// NewHistory constructs a History retaining at most capacity samples,
// evicting the oldest once full.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 1
	}
	return &History{q: queue.New(), capacity: capacity}
}

// Push records a new sample, evicting the oldest if at capacity.
func (h *History) Push(s Sample) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.q.Add(s)
	for h.q.Length() > h.capacity {
		h.q.Remove()
	}
}

// Snapshot returns the currently retained samples, oldest first.
func (h *History) Snapshot() []Sample {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := h.q.Length()
	out := make([]Sample, n)
	for i := 0; i < n; i++ {
		out[i] = h.q.Get(i).(Sample)
	}
	return out
}

// Len reports how many samples are currently retained.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.q.Length()
}
