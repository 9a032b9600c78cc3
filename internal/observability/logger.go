// Package observability provides the shared CLI logger.
//
// Commands log operator-facing progress through CLILogger. The logger
// writes console-encoded output to stderr so that stdout stays reserved
// for JSONL records.
package observability

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the process-wide logger used by CLI commands.
var CLILogger = newCLILogger(zapcore.InfoLevel)

func newCLILogger(level zapcore.Level) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core)
}

// SetVerbose switches CLILogger to debug level.
func SetVerbose() {
	CLILogger = newCLILogger(zapcore.DebugLevel)
}

// SetQuiet suppresses progress logging, leaving only errors. JSONL
// output on stdout is unaffected.
func SetQuiet() {
	CLILogger = newCLILogger(zapcore.ErrorLevel)
}

// SetLevel applies a named level (debug, info, warn, error). Unknown
// names leave the logger unchanged.
func SetLevel(level string) {
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return
	}
	CLILogger = newCLILogger(l)
}
