package cli

import (
	"github.com/mark3labs/oas2types/internal/config"
	"github.com/mark3labs/oas2types/internal/logging"
	"go.uber.org/zap"
)

func newLogger(component string, verbose bool, env config.Env) (*zap.Logger, error) {
	level := env.LogLevel
	if verbose {
		level = "debug"
	}
	return logging.New(logging.Config{Component: component, Level: level, Format: env.LogFormat})
}
