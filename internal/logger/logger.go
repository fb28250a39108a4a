package logger

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// init installs JSON output with ISO 8601 timestamps so that packages logging
// before Setup runs (tests, migrations) still produce structured lines.
func init() {
	log.SetFormatter(&log.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
}

// Setup applies the configured level and format. Unknown levels fall back to info.
func Setup(level, format string) {
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)

	if strings.EqualFold(format, "text") {
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05Z07:00",
		})
	}
}

// Debug logs a message at debug level with optional fields
func Debug(message string, fields map[string]any) {
	log.WithFields(fields).Debug(message)
}

// Info logs a message at info level with optional fields
func Info(message string, fields map[string]any) {
	log.WithFields(fields).Info(message)
}

// Warn logs a message at warning level with optional fields
func Warn(message string, fields map[string]any) {
	log.WithFields(fields).Warn(message)
}

// Error logs a message at error level with optional fields
func Error(message string, fields map[string]any) {
	log.WithFields(fields).Error(message)
}

// Fatal logs a message at fatal level and exits the application
func Fatal(message string, fields map[string]any) {
	log.WithFields(fields).Fatal(message)
}
