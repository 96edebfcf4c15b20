// File: config/options.go
// Package config defines functional options for tuning a reactor Runtime.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package config

import (
	"time"

	"github.com/momentics/hioload-coro/api"
	"github.com/momentics/hioload-coro/corogo"
	"github.com/momentics/hioload-coro/internal/logging"
	"github.com/momentics/hioload-coro/internal/metrics"
)

// Options carries reactor tuning knobs, assembled from functional Option
// values.
type Options struct {
	FDLimit         int
	PollBatchSize   int
	DefaultDeadline time.Duration
	Logger          api.Logger
	HistoryCapacity int
}

// Option customizes Options.
type Option func(*Options)

// defaults mirrors api.FDLimit and a zero default deadline (none).
func defaults() Options {
	return Options{
		FDLimit:         api.FDLimit,
		PollBatchSize:   64,
		DefaultDeadline: 0,
		HistoryCapacity: 0,
	}
}

// New builds an Options value from the given opts, starting from defaults.
func New(opts ...Option) Options {
	o := defaults()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithFDLimit overrides the platform fd ceiling a PollRequest may target.
// Only meaningful for tests or sandboxed environments with a tighter
// FD_SETSIZE than api.FDLimit assumes; production code should leave this at
// the default.
func WithFDLimit(n int) Option {
	return func(o *Options) { o.FDLimit = n }
}

// WithPollBatchSize caps how many leaves a single reactor pass aggregates
// into one Poll call before the rest wait for the next pass.
func WithPollBatchSize(n int) Option {
	return func(o *Options) { o.PollBatchSize = n }
}

// WithDefaultDeadline sets the duration Options.Deadline adds to the current
// time. The combinators do not read Options themselves; a caller passes the
// result of Options.Deadline to them explicitly. Zero means "no default" —
// Options.Deadline returns nil.
func WithDefaultDeadline(d time.Duration) Option {
	return func(o *Options) { o.DefaultDeadline = d }
}

// WithLogger attaches a logger to the constructed Runtime.
func WithLogger(l api.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithHistory enables reactor-pass telemetry, retaining at most capacity
// samples.
func WithHistory(capacity int) Option {
	return func(o *Options) { o.HistoryCapacity = capacity }
}

// NewRuntime builds a corogo.Runtime from o, wiring whichever poller has
// registered itself via corogo.SetDefaultPoller, plus o's Logger and
// History (if configured).
func (o Options) NewRuntime() *corogo.Runtime {
	rt := corogo.DefaultRuntime()
	rt.Logger = o.Logger
	rt.FDLimit = o.FDLimit
	rt.PollBatchSize = o.PollBatchSize
	if o.HistoryCapacity > 0 {
		rt.History = metrics.NewHistory(o.HistoryCapacity)
	}
	return rt
}

// Deadline returns a deadline computed from o.DefaultDeadline relative to
// now, or nil if no default deadline is configured.
func (o Options) Deadline(now time.Time) *time.Time {
	if o.DefaultDeadline <= 0 {
		return nil
	}
	d := now.Add(o.DefaultDeadline)
	return &d
}

// NewLogger is a convenience constructor for the stdlib-backed default
// logger, so callers don't need to import internal/logging directly.
func NewLogger(min api.LogLevel) api.Logger {
	return logging.New(min)
}
