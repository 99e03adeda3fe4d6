package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"ERROR", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		logger, err := New(tt.level, FormatJSON)
		if err != nil {
			t.Fatalf("New(%q): %v", tt.level, err)
		}
		if !logger.Core().Enabled(tt.want) {
			t.Errorf("New(%q): level %v not enabled", tt.level, tt.want)
		}
		if tt.want > zapcore.DebugLevel && logger.Core().Enabled(tt.want-1) {
			t.Errorf("New(%q): level below %v unexpectedly enabled", tt.level, tt.want)
		}
	}
}

func TestNew_Console(t *testing.T) {
	if _, err := New("info", FormatConsole); err != nil {
		t.Fatalf("New console: %v", err)
	}
	if _, err := New("info", ""); err != nil {
		t.Fatalf("New default format: %v", err)
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New("loud", FormatJSON); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := New("info", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
