package log

import (
	"os"

	"go.uber.org/zap"
)

var Logger *zap.Logger

func EnsureLogger() {
	if Logger != nil {
		return
	}

	if os.Getenv("DEVELOPMENT") != "" {
		Logger, _ = zap.NewDevelopment()
	} else {
		Logger, _ = zap.NewProduction()
	}
}
