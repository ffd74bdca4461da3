package obslog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_TO_CONSOLE", "false")
	t.Setenv("LOG_TO_FILE", "true")
	t.Setenv("LOG_FILE", "/tmp/x.log")
	t.Setenv("LOG_CALLER", "")

	opts := OptionsFromEnv()
	require.Equal(t, Options{
		Level:  "debug",
		Format: "json",
		ToFile: true,
		File:   "/tmp/x.log",
	}, opts)
}

func TestBuildWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "duel.log")
	logger, err := Build(Options{Level: "info", Format: "json", ToFile: true, File: path})
	require.NoError(t, err)

	logger.Info("duel_start")
	logger.Debug("hidden")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"duel_start"`)
	require.NotContains(t, string(data), "hidden")
}

func TestParseLevelAndFormat(t *testing.T) {
	require.Equal(t, zapcore.WarnLevel, parseLevel(" WARNING "))
	require.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
	require.Equal(t, "legacy", normalizeFormat("xml"))
	require.Equal(t, "console", normalizeFormat("Console"))
}

func TestGlobalDefaultsToNop(t *testing.T) {
	require.NotNil(t, L())
}
