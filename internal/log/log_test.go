package log

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
)

func capture(t *testing.T, level Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(level)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(LevelInfo)
	})
	return &buf
}

func TestLevels(t *testing.T) {
	buf := capture(t, LevelWarn)

	Debug("hidden")
	Info("hidden")
	Warn("shown", "slot", 18)
	Error("failed", errors.New("boom"), "id", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("lines below the level leaked:\n%s", out)
	}
	if !strings.Contains(out, "[WARN] shown slot=18") {
		t.Errorf("missing warn line:\n%s", out)
	}
	if !strings.Contains(out, "[ERROR] failed err=boom id=3") {
		t.Errorf("missing error line:\n%s", out)
	}
}

func TestKeyValueFormatting(t *testing.T) {
	buf := capture(t, LevelDebug)

	Debug("request", "path", "/api/sessions", "msg", "two words", "empty", "", "dangling")

	out := buf.String()
	for _, want := range []string{`path=/api/sessions`, `msg="two words"`, `empty=""`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in %q", want, out)
		}
	}
	if strings.Contains(out, "dangling") {
		t.Errorf("trailing key without value should be dropped: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":  LevelDebug,
		" INFO ": LevelInfo,
		"warn":   LevelWarn,
		"Error":  LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}
