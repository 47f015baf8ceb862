package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_DefaultsToInfoLevel(t *testing.T) {
	log := New()

	if log.GetLevel() != slog.LevelInfo {
		t.Errorf("expected default level Info, got %v", log.GetLevel())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"Error", slog.LevelError},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNextLevel_Cycles(t *testing.T) {
	level := slog.LevelDebug
	seen := []slog.Level{level}
	for i := 0; i < 4; i++ {
		level = NextLevel(level)
		seen = append(seen, level)
	}

	want := []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError, slog.LevelDebug}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("step %d: expected %v, got %v", i, want[i], seen[i])
		}
	}
}

func TestSlogLogger_ImplementsInterface(t *testing.T) {
	var _ Logger = (*SlogLogger)(nil)
}

func TestSlogLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, slog.LevelWarn)

	log.Debug("debug message")
	log.Info("info message")
	if buf.Len() > 0 {
		t.Errorf("expected debug/info to be filtered at WARN level, got: %s", buf.String())
	}

	log.Warn("warn message", "prize", "special")
	out := buf.String()
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "prize=special") {
		t.Errorf("expected warn record with attrs, got: %s", out)
	}
}

func TestSlogLogger_SetLevelAtRuntime(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, slog.LevelError)

	log.Info("hidden")
	log.SetLevel(slog.LevelDebug)
	log.Debug("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("expected info record to be dropped before level change")
	}
	if !strings.Contains(out, "visible") {
		t.Error("expected debug record after level change")
	}
}

func TestSlogLogger_WithSharesLevelAndHTTPSwitch(t *testing.T) {
	var buf bytes.Buffer
	parent := NewWithWriter(&buf, slog.LevelInfo)
	child := parent.With("component", "runner")

	child.Info("draw started")
	if !strings.Contains(buf.String(), "component=runner") {
		t.Errorf("expected component attr, got: %s", buf.String())
	}

	parent.SetLevel(slog.LevelError)
	buf.Reset()
	child.Info("should be filtered")
	if buf.Len() > 0 {
		t.Errorf("expected child to follow parent level, got: %s", buf.String())
	}

	parent.EnableHTTPLogging()
	if !child.IsHTTPLoggingEnabled() {
		t.Error("expected child to see parent's HTTP logging switch")
	}
}

func TestSlogLogger_HTTPLogging(t *testing.T) {
	log := New()

	if log.IsHTTPLoggingEnabled() {
		t.Error("expected HTTP logging to be disabled by default")
	}
	log.EnableHTTPLogging()
	if !log.IsHTTPLoggingEnabled() {
		t.Error("expected HTTP logging to be enabled")
	}
	log.DisableHTTPLogging()
	if log.IsHTTPLoggingEnabled() {
		t.Error("expected HTTP logging to be disabled")
	}
}
