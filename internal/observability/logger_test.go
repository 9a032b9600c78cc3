package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func resetLogger() {
	CLILogger = newCLILogger(zapcore.InfoLevel)
}

func TestSetVerbose(t *testing.T) {
	defer resetLogger()

	SetVerbose()
	assert.True(t, CLILogger.Core().Enabled(zapcore.DebugLevel))
}

func TestSetQuiet(t *testing.T) {
	defer resetLogger()

	SetQuiet()
	assert.False(t, CLILogger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, CLILogger.Core().Enabled(zapcore.WarnLevel))
	assert.True(t, CLILogger.Core().Enabled(zapcore.ErrorLevel))
}

func TestSetLevel(t *testing.T) {
	defer resetLogger()

	SetLevel("warn")
	assert.False(t, CLILogger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, CLILogger.Core().Enabled(zapcore.WarnLevel))

	SetLevel("debug")
	assert.True(t, CLILogger.Core().Enabled(zapcore.DebugLevel))
}

func TestSetLevel_UnknownNameIgnored(t *testing.T) {
	defer resetLogger()

	SetLevel("warn")
	SetLevel("loud")
	assert.False(t, CLILogger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, CLILogger.Core().Enabled(zapcore.WarnLevel))
}
