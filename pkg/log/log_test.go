package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srodi/appimpact/pkg/config"
)

func restoreStandardLogger(t *testing.T) {
	std := logrus.StandardLogger()
	out, level, formatter, caller := std.Out, std.GetLevel(), std.Formatter, std.ReportCaller
	t.Cleanup(func() {
		std.SetOutput(out)
		std.SetLevel(level)
		std.SetFormatter(formatter)
		std.SetReportCaller(caller)
	})
}

func TestNewWritesToFile(t *testing.T) {
	restoreStandardLogger(t)
	file := filepath.Join(t.TempDir(), "appimpact.log")

	logger, closeLog, err := New(config.Log{Level: "warn", File: file}, false)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	assert.False(t, logger.ReportCaller)

	Component(logger, "engine").Info("dropped")
	Component(logger, "engine").Warn("sampling failed")
	require.NoError(t, closeLog())

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), "sampling failed")
	assert.Contains(t, string(b), "component=engine")
	assert.NotContains(t, string(b), "dropped")
}

func TestNewDebugFlagWins(t *testing.T) {
	restoreStandardLogger(t)
	logger, _, err := New(config.Log{Level: "error"}, true)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.True(t, logger.ReportCaller)
}

func TestNewRejectsBadLevel(t *testing.T) {
	restoreStandardLogger(t)
	_, _, err := New(config.Log{Level: "chatty"}, false)
	assert.Error(t, err)
}
