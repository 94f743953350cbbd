package main

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// createLogger builds the process logger. The TUI owns the terminal, so
// interactive sessions log to a file instead of stderr.
func createLogger(debug bool, logFile string) (*zap.Logger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	if logFile != "" {
		cfg.OutputPaths = []string{logFile}
		cfg.ErrorOutputPaths = []string{logFile}
	}
	logger, err := cfg.Build()
	return logger, errors.Wrap(err, "create logger")
}
