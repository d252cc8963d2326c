package logger

import (
	"os"

	"github.com/anime-shed/vegindex-go/pkg/rgbvi"
	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger

func init() {
	Logger = New(os.Getenv("LOG_LEVEL"))
}

// New builds a JSON logger writing to stdout. Unknown levels fall back to info.
func New(level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(parseLevel(level))
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	return l
}

// SetLevel changes the level of the shared logger.
func SetLevel(level string) {
	Logger.SetLevel(parseLevel(level))
}

func parseLevel(level string) logrus.Level {
	switch level {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// WithFields creates a new entry with the given fields
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Logger.WithFields(fields)
}

// WithField creates a new entry with a single field
func WithField(key string, value interface{}) *logrus.Entry {
	return Logger.WithField(key, value)
}

// WithError creates a new entry with an error field
func WithError(err error) *logrus.Entry {
	return Logger.WithError(err)
}

// Info logs an info message
func Info(msg string) {
	Logger.Info(msg)
}

// Error logs an error message
func Error(msg string) {
	Logger.Error(msg)
}

// Debug logs a debug message
func Debug(msg string) {
	Logger.Debug(msg)
}

// Warn logs a warning message
func Warn(msg string) {
	Logger.Warn(msg)
}

// DiagnosticsHook turns index diagnostics into warnings on entry.
// A nil entry logs through the shared logger.
func DiagnosticsHook(entry *logrus.Entry) rgbvi.Hook {
	if entry == nil {
		entry = logrus.NewEntry(Logger)
	}
	return func(d rgbvi.Diagnostic) {
		entry.WithFields(logrus.Fields{
			"formula":  d.Formula,
			"kind":     d.Kind,
			"count":    d.Count,
			"total":    d.Total,
			"fraction": d.Fraction(),
		}).Warn(d.Message)
	}
}
