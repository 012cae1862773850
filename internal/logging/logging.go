// Package logging provides the structured logger shared by batch and
// gateway. Grounded on spec.md §7's "log once, never re-raise past the
// batch boundary" policy, reproduced at the call sites
// original_source/batch_device_reader.py uses logger.debug/info/
// warning/error.
package logging

import (
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	once    sync.Once
	charm   *log.Logger
	logMu   sync.RWMutex
	current = log.InfoLevel
)

func init() {
	once.Do(func() {
		charm = log.NewWithOptions(os.Stderr, log.Options{
			Level:           current,
			ReportTimestamp: true,
			Prefix:          "go-melsec",
		})
	})
}

// SetLevel adjusts the package-level logger's minimum level. Valid
// values are "debug", "info", "warn", and "error"; anything else
// leaves the level unchanged.
func SetLevel(level string) {
	var lvl log.Level
	switch level {
	case "debug":
		lvl = log.DebugLevel
	case "info":
		lvl = log.InfoLevel
	case "warn":
		lvl = log.WarnLevel
	case "error":
		lvl = log.ErrorLevel
	default:
		return
	}
	logMu.Lock()
	defer logMu.Unlock()
	current = lvl
	charm.SetLevel(lvl)
}

// With returns a derived logger carrying the given structured fields.
func With(keyvals ...interface{}) *log.Logger {
	return charm.With(keyvals...)
}

func Debug(msg interface{}, keyvals ...interface{}) { charm.Debug(msg, keyvals...) }
func Info(msg interface{}, keyvals ...interface{})  { charm.Info(msg, keyvals...) }
func Warn(msg interface{}, keyvals ...interface{})  { charm.Warn(msg, keyvals...) }
func Error(msg interface{}, keyvals ...interface{}) { charm.Error(msg, keyvals...) }
