// Package logger holds the process-wide structured logger.
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	once      sync.Once
	singleton *log.Logger
)

// Get returns the shared logger, creating it on first use.
func Get() *log.Logger {
	once.Do(func() {
		singleton = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "spvkit",
			Level:           log.InfoLevel,
		})
	})
	return singleton
}

// Configure applies the level name and caller reporting from config.
// Unknown level names leave the level unchanged.
func Configure(level string, caller bool) {
	l := Get()
	if lvl, err := log.ParseLevel(level); err == nil {
		l.SetLevel(lvl)
	}
	l.SetReportCaller(caller)
}

// SetOutput redirects the shared logger.
func SetOutput(w io.Writer) {
	Get().SetOutput(w)
}

func Debug(msg string, keyvals ...any) { Get().Debug(msg, keyvals...) }
func Info(msg string, keyvals ...any)  { Get().Info(msg, keyvals...) }
func Warn(msg string, keyvals ...any)  { Get().Warn(msg, keyvals...) }
func Error(msg string, keyvals ...any) { Get().Error(msg, keyvals...) }
