package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "warn")
	defer Init(false, "", "", false)

	Infof("hidden %d", 1)
	Warnf("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info message should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown 2") {
		t.Fatalf("expected warn message, got %q", out)
	}
}

func TestDisabledLoggerIsSilent(t *testing.T) {
	if err := Init(false, "debug", "", true); err != nil {
		t.Fatalf("init: %v", err)
	}
	Errorf("nothing")
	With("k", "v").Info("nothing")
}

func TestWithCarriesAttrs(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "debug")
	defer Init(false, "", "", false)

	With("request_id", "abc", "status", 200).Debug("request")
	out := buf.String()
	if !strings.Contains(out, "request_id=abc") || !strings.Contains(out, "status=200") {
		t.Fatalf("expected attrs in output, got %q", out)
	}
}
