package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(New(Options{Level: "info"}, &buf), "api")
	logger.Info("request served", "status", 200)

	out := buf.String()
	if !strings.Contains(out, `msg="[api] request served"`) {
		t.Fatalf("missing component prefix: %s", out)
	}
	if strings.Contains(out, "component=") {
		t.Fatalf("component attribute must be folded into the message: %s", out)
	}
	if !strings.Contains(out, "status=200") {
		t.Fatalf("missing attribute: %s", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "component", "store")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info must be filtered at warn: %s", out)
	}
	if !strings.Contains(out, `"msg":"[store] shown"`) {
		t.Fatalf("unexpected json output: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{"DEBUG": slog.LevelDebug, "warning": slog.LevelWarn, "error": slog.LevelError, "bogus": slog.LevelInfo}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
