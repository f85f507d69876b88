package logging

import (
	"go.uber.org/zap"
)

// New builds the logger for the command-line tools. Logs go to stderr so
// report output on stdout stays machine-readable. The default level is Warn
// to keep runs quiet; debug turns on the full operational log.
func New(debug bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
