package observability

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the process logger. The level is parsed leniently
// (unknown values mean info); setting json enables structured output for
// log collectors.
func NewLogger(level string, json bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)

	if json {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

// NewLoggerFromEnv reads HEARTH_LOG_LEVEL and HEARTH_LOG_JSON
func NewLoggerFromEnv() *logrus.Logger {
	level := os.Getenv("HEARTH_LOG_LEVEL")
	json := os.Getenv("HEARTH_LOG_JSON") == "true"
	return NewLogger(level, json)
}
