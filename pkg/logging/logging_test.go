package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLoggerFallsBackToDefault(t *testing.T) {
	assert.Same(t, slog.Default(), GetLogger(context.Background()))

	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := WithLogger(context.Background(), custom)
	assert.Same(t, custom, GetLogger(ctx))
}

func TestSetupWritesConsoleAndFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var console bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "driversync.log")
	logger, closeFn := Setup(Options{Console: &console, File: logFile, MaxSizeMB: 1})

	logger.Debug("hidden on console", "step", "detect")
	logger.Info("driver installed", "path", "C:/tools/chromedriver.exe")
	require.NoError(t, closeFn())

	assert.Contains(t, console.String(), "driver installed")
	assert.NotContains(t, console.String(), "hidden on console")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"driver installed"`)
	assert.Contains(t, string(data), `"msg":"hidden on console"`)
}
