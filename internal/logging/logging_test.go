package logging

import (
	"bytes"
	"log"
	"testing"

	"github.com/momentics/hioload-coro/api"
)

func TestLogFiltersBelowMinimum(t *testing.T) {
	var buf bytes.Buffer
	s := &Std{min: api.LogLevelWarn, base: log.New(&buf, "", 0)}

	s.Log(api.LogLevelInfo, "should not appear")
	if buf.Len() != 0 {
		t.Fatalf("info line logged below warn minimum: %q", buf.String())
	}

	s.Log(api.LogLevelWarn, "reactor pass slow", "passes", 3)
	if got := buf.String(); got == "" {
		t.Fatalf("warn line was not written")
	}
}
