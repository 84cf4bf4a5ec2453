package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

const ServiceName = "projectbuddy"

// global accessible logger
var (
	logger *logrus.Logger
	Log    *logrus.Entry
)

// Tests never go through main, so the logger must be usable without Init.
func init() {
	Init("info", false)
}

func Init(level string, production bool) {
	logger = logrus.New()
	logger.SetOutput(os.Stderr)

	if production {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	Log = logger.WithFields(logrus.Fields{
		"service":        ServiceName,
		"is_development": !production,
	})
}
