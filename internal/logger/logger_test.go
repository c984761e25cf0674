package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNewFallsBackToInfo(t *testing.T) {
	log := New("not-a-level", "")
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNewWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")
	log := New("debug", path)
	log.Debug("hello")
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
	_ = log.Sync()
}
