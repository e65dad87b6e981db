package logging

import "go.uber.org/zap"

// New returns the process-wide logger. Debug mode switches to the
// development config with human-readable output.
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
