package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/projectbuddy/projectbuddy/internal/logger"
	"github.com/sirupsen/logrus"
)

// logrusAdapter routes watermill's internal logging through the service
// logger.
type logrusAdapter struct {
	entry *logrus.Entry
}

func newLogrusAdapter() watermill.LoggerAdapter {
	return &logrusAdapter{entry: logger.Log.WithField("component", "event_bus")}
}

func (l *logrusAdapter) Error(msg string, err error, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).WithError(err).Error(msg)
}

func (l *logrusAdapter) Info(msg string, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).Info(msg)
}

func (l *logrusAdapter) Debug(msg string, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).Debug(msg)
}

func (l *logrusAdapter) Trace(msg string, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).Trace(msg)
}

func (l *logrusAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &logrusAdapter{entry: l.entry.WithFields(logrus.Fields(fields))}
}
