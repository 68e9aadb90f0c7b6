// Package logger provides logging for the bom-scrapper bootstrapper.
//
// Two sinks are supported. Verbose messages are printed to stderr when the
// --verbose flag is set, so users can follow each bootstrap step. A
// structured JSON log file is written independently of verbosity once
// Setup has been called, keeping a record of every run.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileName is the log file created inside the directory passed to Setup.
const FileName = "bootstrap.log"

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	file              = discardLogger()
	logFile *os.File
	logPath string
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Setup opens dir/bootstrap.log in append mode and routes structured
// records to it. The returned cleanup closes the file and restores the
// discarding sink.
func Setup(dir string, debug bool) (func() error, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	h := slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339Nano))
			}
			return a
		},
	})

	mu.Lock()
	if logFile != nil {
		_ = logFile.Close()
	}
	file = slog.New(h)
	logFile = f
	logPath = path
	mu.Unlock()

	cleanup := func() error {
		mu.Lock()
		defer mu.Unlock()

		var cerr error
		if logFile != nil {
			cerr = logFile.Close()
		}
		logFile = nil
		logPath = ""
		file = discardLogger()
		return cerr
	}

	return cleanup, nil
}

// L returns the structured file logger.
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return file
}

// Path returns the active log file path, or "" before Setup.
func Path() string {
	mu.RLock()
	defer mu.RUnlock()
	return logPath
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write(slog.LevelDebug, "[DEBUG] ", format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write(slog.LevelInfo, "[INFO] ", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	write(slog.LevelWarn, "[WARN] ", format, args...)
}

// Section prints a step header if verbose mode is enabled.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
	file.Info("step", "name", name)
}

func write(level slog.Level, prefix, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintln(output, prefix+msg)
	}
	file.Log(context.Background(), level, msg)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
