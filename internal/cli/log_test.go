package cli

import (
	"bytes"
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
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("layout complete") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("phase done") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("phase done") }, true},
		{"warn at error level", log.ErrorLevel, func(l *log.Logger) { l.Warn("cache miss") }, false},
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

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.done("layout complete", "nodes", 4, "layers", 3)

	out := buf.String()
	for _, want := range []string{"layout complete", "nodes=4", "layers=3", "elapsed="} {
		if !strings.Contains(out, want) {
			t.Errorf("progress.done() output = %q, want %q", out, want)
		}
	}
}
