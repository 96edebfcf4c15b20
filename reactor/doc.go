// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor supplies the platform-specific corogo.Poller
// implementation: one blocking readiness syscall per call, servicing every
// descriptor and deadline a single reactor pass collected. It registers its
// platform's backend with corogo on import via an init() side effect, the
// way database/sql drivers register themselves — callers only ever need
// to import this package once, from their program's entry point, and every
// corogo.Future.Get() call picks it up automatically.
package reactor
