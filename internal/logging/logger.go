// Package logging provides structured logging for the offline sync layer.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	// global logger instance
	global *logrus.Logger
	once   sync.Once
)

// Init initializes the global logger. Subsequent calls are no-ops.
func Init(out io.Writer, level string) {
	once.Do(func() {
		global = logrus.New()
		global.SetOutput(out)
		global.SetFormatter(&logrus.JSONFormatter{})

		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			parsed = logrus.InfoLevel
		}
		global.SetLevel(parsed)
	})
}

// Get returns the global logger instance.
func Get() *logrus.Logger {
	if global == nil {
		Init(os.Stdout, "info")
	}
	return global
}

// withContext builds an entry carrying the merged context maps.
func withContext(context ...map[string]interface{}) *logrus.Entry {
	fields := logrus.Fields{}
	for _, c := range context {
		for k, v := range c {
			fields[k] = v
		}
	}
	return Get().WithFields(fields)
}

// Debug logs a debug message with optional context.
func Debug(message string, context ...map[string]interface{}) {
	withContext(context...).Debug(message)
}

// Info logs an info message with optional context.
func Info(message string, context ...map[string]interface{}) {
	withContext(context...).Info(message)
}

// Warn logs a warning message with optional context.
func Warn(message string, context ...map[string]interface{}) {
	withContext(context...).Warn(message)
}

// Error logs an error message with optional context.
func Error(message string, err error, context ...map[string]interface{}) {
	entry := withContext(context...)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error(message)
}

// ErrorWithCode logs an error message tagged with an application error code.
func ErrorWithCode(message string, code string, err error, context ...map[string]interface{}) {
	entry := withContext(context...).WithField("error_code", code)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error(message)
}
