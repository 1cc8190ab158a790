package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kataras/golog"
	"github.com/stretchr/testify/assert"
)

func TestDefaultLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewCustomLogger(&buf, LogLevelWarn)

	logger.Debug("hidden debug")
	logger.Info("hidden info")
	logger.Warn("visible warn")
	logger.Error("visible error")

	out := buf.String()
	assert.NotContains(t, out, "hidden debug")
	assert.NotContains(t, out, "hidden info")
	assert.Contains(t, out, "visible warn")
	assert.Contains(t, out, "visible error")
}

func TestDefaultLoggerFormatting(t *testing.T) {
	var buf bytes.Buffer
	logger := NewCustomLogger(&buf, LogLevelDebug)

	logger.Info("adapter %s returned %d results", "vector", 3)

	assert.Contains(t, buf.String(), "adapter vector returned 3 results")
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "INFO", LogLevelInfo.String())
	assert.Equal(t, "WARN", LogLevelWarn.String())
	assert.Equal(t, "ERROR", LogLevelError.String())
	assert.Equal(t, "NONE", LogLevelNone.String())
	assert.True(t, strings.HasPrefix(LogLevel(42).String(), "UNKNOWN"))
}

func TestNoOpLogger(t *testing.T) {
	logger := &NoOpLogger{}
	logger.Debug("noop")
	logger.Info("noop")
	logger.Warn("noop")
	logger.Error("noop")
}

func TestDefaultLoggerSwap(t *testing.T) {
	original := GetDefaultLogger()
	defer SetDefaultLogger(original)

	noop := &NoOpLogger{}
	SetDefaultLogger(noop)
	assert.Same(t, Logger(noop), GetDefaultLogger())
}

func TestGologLogger(t *testing.T) {
	glogger := golog.New()
	logger := NewGologLogger(glogger)

	assert.Equal(t, LogLevelInfo, logger.GetLevel())

	logger.SetLevel(LogLevelDebug)
	assert.Equal(t, LogLevelDebug, logger.GetLevel())

	logger.Debug("debug %s", "message")
	logger.Info("info %d", 42)
	logger.Warn("warn")
	logger.Error("error %v", assert.AnError)

	logger.SetLevel(LogLevelNone)
	assert.Equal(t, LogLevelNone, logger.GetLevel())
	logger.Error("filtered out")
}
