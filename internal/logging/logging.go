// Package logging centralises logrus setup for lora-chatd. Grounded on
// DevHub/RFModel/RF model.go's package-level logger (TextFormatter,
// level set at startup), generalised into a constructor so cmd/lora-chatd
// can drive the level from a flag instead of a hardcoded TraceLevel.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds a logrus.Logger writing text-formatted entries to stderr at
// the given level. An empty or unrecognised level falls back to Info.
func New(level string) *logrus.Logger {
	log := logrus.New()
	log.Out = os.Stderr
	log.Formatter = &logrus.TextFormatter{
		FullTimestamp: true,
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.Level = lvl
	return log
}

// Component returns an entry tagged with a component name, used to
// distinguish agent/session/radio log lines once several run in a
// single process.
func Component(log *logrus.Logger, name string) *logrus.Entry {
	return log.WithField("component", name)
}
