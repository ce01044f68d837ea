package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{DEBUG, "DEBUG"},
		{INFO, "INFO"},
		{WARN, "WARN"},
		{ERROR, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, WARN)

	logger.Debug("debug message")
	logger.Info("info message")
	if buf.Len() > 0 {
		t.Error("DEBUG/INFO should be filtered when level is WARN")
	}

	logger.Warn("warn message")
	if !strings.Contains(buf.String(), "[WARN]") {
		t.Error("WARN should pass the filter")
	}

	buf.Reset()
	logger.Error("error message")
	if !strings.Contains(buf.String(), "[ERROR]") {
		t.Error("ERROR should pass the filter")
	}
}

func TestFormatWithArgs(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, DEBUG)

	logger.Info("value: %d", 42)

	if !strings.Contains(buf.String(), "value: 42") {
		t.Errorf("output should contain formatted value: %s", buf.String())
	}
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, DEBUG)

	derived := base.WithField("source", "activity")
	derived.fields["extra"] = true

	if len(base.fields) != 0 {
		t.Error("parent logger fields were mutated")
	}

	derived.Info("fetched")
	if !strings.Contains(buf.String(), "source=activity") {
		t.Errorf("field missing from output: %s", buf.String())
	}
}

func TestFieldsRenderSorted(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, DEBUG).WithFields(map[string]any{
		"zebra": 1,
		"alpha": 2,
	})

	logger.Info("msg")

	out := buf.String()
	if strings.Index(out, "alpha=2") > strings.Index(out, "zebra=1") {
		t.Errorf("fields not sorted: %s", out)
	}
}

func TestGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	origOutput := defaultLogger.output
	origLevel := defaultLogger.level
	defer func() {
		defaultLogger.output = origOutput
		defaultLogger.level = origLevel
	}()

	SetOutput(&buf)
	SetLevel(DEBUG)

	Debug("d")
	Info("i")
	Warn("w")
	Error("e")

	out := buf.String()
	for _, tag := range []string{"[DEBUG]", "[INFO]", "[WARN]", "[ERROR]"} {
		if !strings.Contains(out, tag) {
			t.Errorf("missing %s in global logger output", tag)
		}
	}
}

func TestConcurrentLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, DEBUG)

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func(n int) {
			logger.Info("message %d", n)
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 10 {
		t.Errorf("expected 10 log lines, got %d", len(lines))
	}
}
