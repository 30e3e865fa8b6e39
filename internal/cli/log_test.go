package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("exported", "materials", 3) }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("lowered material") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("lowered material") }, true},
		{"warn at info level", log.InfoLevel, func(l *log.Logger) { l.Warn("fallback node") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Exported 2 materials")

	out := buf.String()
	if !strings.Contains(out, "Exported 2 materials (") {
		t.Errorf("progress output = %q, want message with duration", out)
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Fatal("loggerFromContext returned nil without a logger")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), custom)
	if got := loggerFromContext(ctx); got != custom {
		t.Errorf("loggerFromContext = %p, want %p", got, custom)
	}
}
