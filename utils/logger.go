package utils

import (
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.Must(zap.NewProduction()))
}

// GetLogger returns the process-wide logger.
func GetLogger() *zap.Logger {
	return zap.L()
}
