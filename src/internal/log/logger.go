package log

import (
	"io"
	"os"
	"sync"

	charm "github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu          sync.RWMutex
	verbose     = false
	disableLogs = false
	forceStdErr = false

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	file   *lumberjack.Logger

	outLogger = newLogger(os.Stdout)
	errLogger = newLogger(os.Stderr)
)

// FileOptions configures the optional rotated log file.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func newLogger(w io.Writer) *charm.Logger {
	l := charm.NewWithOptions(w, charm.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05",
	})
	if verbose {
		l.SetLevel(charm.DebugLevel)
	} else {
		l.SetLevel(charm.InfoLevel)
	}
	return l
}

// rebuild must be called with mu held.
func rebuild() {
	out, errOut := stdout, stderr
	if forceStdErr {
		out = stderr
	}
	if file != nil {
		out = io.MultiWriter(out, file)
		errOut = io.MultiWriter(errOut, file)
	}
	outLogger = newLogger(out)
	errLogger = newLogger(errOut)
}

// SetVerbose sets the logging verbosity. If true, debug messages are displayed.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	rebuild()
}

// IsVerbose returns true if verbose logging is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// DisableLogs disables all logging.
func DisableLogs() {
	mu.Lock()
	defer mu.Unlock()
	disableLogs = true
}

// IsDisabled returns true if logging is disabled.
func IsDisabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return disableLogs
}

// SetForceStdErr routes every level to stderr, keeping stdout free for command output.
func SetForceStdErr(v bool) {
	mu.Lock()
	defer mu.Unlock()
	forceStdErr = v
	rebuild()
}

// SetOutput replaces the console writers. Used by tests.
func SetOutput(out, errOut io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	stdout, stderr = out, errOut
	rebuild()
}

// SetLogFile mirrors all log output into a size-rotated file.
// An empty path disables the file sink.
func SetLogFile(opts FileOptions) {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		_ = file.Close()
		file = nil
	}
	if opts.Path != "" {
		file = &lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
		}
	}
	rebuild()
}

// Debugf logs a debug message if verbose is true.
func Debugf(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	if disableLogs || !verbose {
		return
	}
	outLogger.Debugf(format, args...)
}

// Infof logs an info message.
func Infof(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	if disableLogs {
		return
	}
	outLogger.Infof(format, args...)
}

// Warnf logs a warning message.
func Warnf(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	if disableLogs {
		return
	}
	outLogger.Warnf(format, args...)
}

// Errorf logs an error message to stderr.
func Errorf(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	if disableLogs {
		return
	}
	errLogger.Errorf(format, args...)
}

// Fatalf logs an error message and exits the program.
func Fatalf(format string, args ...interface{}) {
	Errorf(format, args...)
	os.Exit(1)
}
