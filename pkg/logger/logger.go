package logger

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

// The package shares one logger across every command and server path.
// Output goes to stderr so stdout stays clean for piped results.
var (
	logger         *log.Logger
	initLoggerOnce sync.Once
)

// InitLogger prepares the shared logger. Safe to call more than once.
func InitLogger() {
	initLoggerOnce.Do(func() {
		logger = log.New(os.Stderr)
		logger.SetLevel(log.InfoLevel)
	})
}

func ensureInitialized() {
	InitLogger()
}

// SetLevel sets the logging level
func SetLevel(level log.Level) {
	ensureInitialized()
	logger.SetLevel(level)
}

// SetDebug toggles between debug and info level
func SetDebug(debug bool) {
	ensureInitialized()
	if debug {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}
}

// SetOutput redirects log output, keeping stderr free for another writer
func SetOutput(w io.Writer) {
	ensureInitialized()
	logger.SetOutput(w)
}

// SetJSON switches between JSON records and the human-readable text format.
// Hosts that capture server logs want one JSON object per line.
func SetJSON(enabled bool) {
	ensureInitialized()
	if enabled {
		logger.SetFormatter(log.JSONFormatter)
	} else {
		logger.SetFormatter(log.TextFormatter)
	}
}

// Info logs at info level
func Info(msg string, keyvals ...any) {
	ensureInitialized()
	logger.Info(msg, keyvals...)
}

// Debug logs at debug level
func Debug(msg string, keyvals ...any) {
	ensureInitialized()
	logger.Debug(msg, keyvals...)
}

// Error logs at error level
func Error(msg string, keyvals ...any) {
	ensureInitialized()
	logger.Error(msg, keyvals...)
}

// Warn logs at warn level
func Warn(msg string, keyvals ...any) {
	ensureInitialized()
	logger.Warn(msg, keyvals...)
}

// Fatal logs at fatal level and exits
func Fatal(msg string, keyvals ...any) {
	ensureInitialized()
	logger.Fatal(msg, keyvals...)
}

// With returns a child logger carrying the given key-value context
func With(keyvals ...any) *log.Logger {
	ensureInitialized()
	return logger.With(keyvals...)
}

// Quiet raises the level so only errors reach the terminal. Used when a
// command pipes flowchart or export text to stdout.
func Quiet() {
	ensureInitialized()
	logger.SetLevel(log.ErrorLevel)
}

// Disable drops all log output
func Disable() {
	ensureInitialized()
	logger.SetOutput(io.Discard)
}

// Enable restores log output to stderr
func Enable() {
	ensureInitialized()
	logger.SetOutput(os.Stderr)
}
