package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"cinedeck/internal/core/config"
)

func TestNew_WritesRotatedJSONFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	l, cleanup := New(config.Log{Level: "info", Rotate: config.Rotate{Enable: true, Filename: file, MaxSizeMB: 1}},
		zap.String("app", "cinedeck"))
	l.Info("store: opened", zap.Int64("session", 1))
	l.Debug("hidden below level")
	cleanup()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"store: opened"`)
	assert.Contains(t, string(b), `"app":"cinedeck"`)
	assert.NotContains(t, string(b), "hidden below level")
	assert.NotContains(t, string(b), "\x1b[", "console colors never reach the file")
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	l, cleanup := New(config.Log{Level: "loud"})
	defer cleanup()
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.Equal(t, zapcore.WarnLevel, parseLevel(" WARN "))
}

func TestToWriter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	w := ToWriter(zap.New(core), zapcore.WarnLevel)
	n, err := w.Write([]byte("[GIN-debug] route added\n"))
	require.NoError(t, err)
	assert.Equal(t, len("[GIN-debug] route added\n"), n)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "[GIN-debug] route added", logs.All()[0].Message)
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
}
