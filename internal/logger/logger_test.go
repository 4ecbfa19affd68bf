package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	Info("hello", "key", "value")
	Warn("careful")
	Error("broken", "error", "boom")

	out := buf.String()
	for _, want := range []string{"hello", "key=value", "careful", "broken", "error=boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
