package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(Options{Level: "warn", Output: &buf}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	Info("should not appear", "key", "value")
	Warn("should appear", "key", "value")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Fatalf("info line leaked at warn level: %s", out)
	}
	if !strings.Contains(out, "should appear") || !strings.Contains(out, "key=value") {
		t.Fatalf("warn line missing: %s", out)
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(Options{Level: "error", Output: &buf}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel failed: %v", err)
	}

	Debug("debug message")
	if !strings.Contains(buf.String(), "debug message") {
		t.Fatalf("debug line missing after SetLevel: %s", buf.String())
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(Options{Level: "info", Format: "json", Output: &buf}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	With("request_id", "r1").Info("test message", "key", "value")

	out := buf.String()
	for _, want := range []string{`"msg":"test message"`, `"key":"value"`, `"request_id":"r1"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("JSON log does not contain %s: %s", want, out)
		}
	}
}

func TestInitRejectsUnknown(t *testing.T) {
	if err := Init(Options{Level: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if err := Init(Options{Format: "xml"}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
