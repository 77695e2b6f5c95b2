package observability

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestInitLogger_Development(t *testing.T) {
	InitLogger(false)

	if Logger == nil {
		t.Error("Logger should not be nil after initialization")
	}
}

func TestInitLogger_Production(t *testing.T) {
	InitLogger(true)

	if Logger == nil {
		t.Error("Logger should not be nil after initialization")
	}
}

func TestInitLoggerWithLevel(t *testing.T) {
	InitLoggerWithLevel(false, slog.LevelDebug)

	if Logger == nil {
		t.Error("Logger should not be nil after initialization")
	}
}

func TestLoggingFunctions(t *testing.T) {
	// Capture log output
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	Logger = slog.New(handler)

	Info("info message", "key", "value")
	Warn("warn message")
	Error("error message")
	Debug("debug message")

	output := buf.String()
	for _, want := range []string{"info message", "warn message", "error message", "debug message"} {
		if !strings.Contains(output, want) {
			t.Errorf("log output missing %q", want)
		}
	}
	if !strings.Contains(output, "key=value") {
		t.Error("log output missing structured attribute")
	}
}

func TestWithUser(t *testing.T) {
	var buf bytes.Buffer
	Logger = slog.New(slog.NewTextHandler(&buf, nil))

	WithUser(42).Info("did something")

	if !strings.Contains(buf.String(), "user_id=42") {
		t.Errorf("expected user_id field, got: %s", buf.String())
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	Logger = slog.New(slog.NewTextHandler(&buf, nil))

	WithError(errors.New("boom")).Error("failed")

	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("expected error field, got: %s", buf.String())
	}
}

func TestLoggingFunctions_AutoInit(t *testing.T) {
	Logger = nil
	Info("auto init should not panic")

	if Logger == nil {
		t.Error("Logger should be initialized lazily")
	}
}
