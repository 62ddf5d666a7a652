package logging

import (
	"testing"

	"github.com/ewfx/gaied-aivengers/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func configWith(level, format string) *config.Config {
	v := config.NewEmptyViper()
	v.Set("logging.level", level)
	v.Set("logging.format", format)
	return config.NewFromViper(v)
}

func TestInitLoggerLevels(t *testing.T) {
	logger, err := InitLogger(configWith("debug", "json"))
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = InitLogger(configWith("error", "json"))
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestInitLoggerUnknownLevelFallsBackToInfo(t *testing.T) {
	logger, err := InitLogger(configWith("chatty", "json"))
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestInitLoggerConsoleFormat(t *testing.T) {
	logger, err := InitLogger(configWith("info", "console"))
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestInitConsoleLogger(t *testing.T) {
	logger, err := InitConsoleLogger(true, false)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = InitConsoleLogger(false, true)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
