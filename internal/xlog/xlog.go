// Package xlog provides the single process-global logger used by every
// other package in this module. It is the only legitimate global mutable
// state in the system: it is
// initialised once at process entry from the owning host's log level and
// log directory, and treated as write-once thereafter. Grounded on
// dagger-buildkit's structured-logging stack (logrus throughout its
// solver), generalising loguru's level/rotation setup into a logrus
// *Logger plus a size-rotating writer.
package xlog

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu     sync.Mutex
	global *Logger
	setup  bool
)

// Logger is a thin key-value wrapper over *logrus.Entry: callers pass
// alternating key/value pairs the way the original's loguru calls
// passed keyword arguments, and the wrapper folds them into a
// logrus.Fields before delegating.
type Logger struct {
	entry *logrus.Entry
}

func (l *Logger) fields(kvs []interface{}) *logrus.Entry {
	if len(kvs) == 0 {
		return l.entry
	}
	f := make(logrus.Fields, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		key, _ := kvs[i].(string)
		f[key] = kvs[i+1]
	}
	return l.entry.WithFields(f)
}

func (l *Logger) Debug(msg string, kvs ...interface{}) { l.fields(kvs).Debug(msg) }
func (l *Logger) Info(msg string, kvs ...interface{})  { l.fields(kvs).Info(msg) }
func (l *Logger) Warn(msg string, kvs ...interface{})  { l.fields(kvs).Warn(msg) }
func (l *Logger) Error(msg string, kvs ...interface{}) { l.fields(kvs).Error(msg) }

// Setup initialises the process-global logger from the owning host's
// configured level and log directory. Calling Setup more than once is a
// programming error everywhere except in tests, where Reset is used to
// restore the zero state between cases.
func Setup(idSystem, idHost, idProcess, level, dir string) error {
	mu.Lock()
	defer mu.Unlock()
	if setup {
		return nil
	}

	base := logrus.New()
	base.SetLevel(parseLevel(level))

	if dir == "" {
		base.SetOutput(os.Stderr)
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		name := idSystem + "_" + idProcess + ".log"
		rf, err := openRotatingFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		base.SetOutput(rf)
	}

	global = &Logger{entry: base.WithFields(logrus.Fields{"system": idSystem, "host": idHost})}
	setup = true
	return nil
}

// Logger returns the process-global logger, falling back to a stderr
// logger at info level if Setup was never called (e.g. in unit tests
// that exercise a single package in isolation).
func Logger() *Logger {
	mu.Lock()
	defer mu.Unlock()
	if global == nil {
		return &Logger{entry: logrus.NewEntry(logrus.StandardLogger())}
	}
	return global
}

// Reset clears the write-once guard. Test-only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	global = nil
	setup = false
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
