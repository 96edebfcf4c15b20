// File: internal/logging/logging.go
// Package logging is the default implementation of api.Logger that the
// reactor pass logs through. It is
// deliberately small and stdlib log-based: no third-party logging library
// appears anywhere in this codebase's lineage, unlike the transport,
// polling, and queue concerns which all have a real dependency to lean on.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package logging

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/momentics/hioload-coro/api"
)

func levelName(l api.LogLevel) string {
	switch l {
	case api.LogLevelDebug:
		return "debug"
	case api.LogLevelInfo:
		return "info"
	case api.LogLevelWarn:
		return "warn"
	case api.LogLevelError:
		return "error"
	default:
		return "off"
	}
}

// Std is the default api.Logger, writing structured key=value lines to an
// underlying *log.Logger, gated by a minimum level.
type Std struct {
	min  api.LogLevel
	base *log.Logger
}

// New constructs a Std logger writing to os.Stderr at or above min.
func New(min api.LogLevel) *Std {
	return &Std{min: min, base: log.New(os.Stderr, "", log.LstdFlags)}
}

// Log writes one structured line if level meets the configured minimum.
func (s *Std) Log(level api.LogLevel, msg string, kv ...any) {
	if level < s.min {
		return
	}
	var b strings.Builder
	b.WriteString(levelName(level))
	b.WriteString(" ")
	b.WriteString(msg)
	for i := 0; i+1 < len(kv); i += 2 {
		b.WriteString(" ")
		b.WriteString(toString(kv[i]))
		b.WriteString("=")
		b.WriteString(toString(kv[i+1]))
	}
	s.base.Print(b.String())
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}
