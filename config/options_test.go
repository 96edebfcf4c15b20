package config

import (
	"testing"
	"time"

	"github.com/momentics/hioload-coro/api"
)

func TestNewAppliesDefaults(t *testing.T) {
	o := New()
	if o.FDLimit != api.FDLimit {
		t.Fatalf("FDLimit = %d, want %d", o.FDLimit, api.FDLimit)
	}
	if o.PollBatchSize != 64 {
		t.Fatalf("PollBatchSize = %d, want 64", o.PollBatchSize)
	}
	if o.DefaultDeadline != 0 {
		t.Fatalf("DefaultDeadline = %v, want 0", o.DefaultDeadline)
	}
}

func TestWithOptionsOverrideDefaults(t *testing.T) {
	o := New(
		WithFDLimit(256),
		WithPollBatchSize(8),
		WithDefaultDeadline(time.Second),
		WithHistory(16),
	)
	if o.FDLimit != 256 {
		t.Fatalf("FDLimit = %d, want 256", o.FDLimit)
	}
	if o.PollBatchSize != 8 {
		t.Fatalf("PollBatchSize = %d, want 8", o.PollBatchSize)
	}
	if o.DefaultDeadline != time.Second {
		t.Fatalf("DefaultDeadline = %v, want 1s", o.DefaultDeadline)
	}
	if o.HistoryCapacity != 16 {
		t.Fatalf("HistoryCapacity = %d, want 16", o.HistoryCapacity)
	}
}

func TestDeadlineNilWhenUnconfigured(t *testing.T) {
	o := New()
	if d := o.Deadline(time.Now()); d != nil {
		t.Fatalf("Deadline() = %v, want nil", d)
	}
}

func TestDeadlineComputedRelativeToNow(t *testing.T) {
	o := New(WithDefaultDeadline(time.Minute))
	now := time.Now()
	d := o.Deadline(now)
	if d == nil {
		t.Fatalf("Deadline() = nil, want non-nil")
	}
	if !d.Equal(now.Add(time.Minute)) {
		t.Fatalf("Deadline() = %v, want %v", *d, now.Add(time.Minute))
	}
}

func TestNewRuntimeWiresHistoryWhenConfigured(t *testing.T) {
	o := New(WithHistory(4))
	rt := o.NewRuntime()
	if rt.History == nil {
		t.Fatalf("expected History to be wired when HistoryCapacity > 0")
	}
}

func TestNewRuntimeLeavesHistoryNilByDefault(t *testing.T) {
	o := New()
	rt := o.NewRuntime()
	if rt.History != nil {
		t.Fatalf("expected History to stay nil without WithHistory")
	}
}
