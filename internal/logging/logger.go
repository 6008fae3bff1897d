// Package logging provides the leveled console logger used across camstitch.
// Console lines are human readable and optionally colored; when a log file
// is configured every line is also appended there as a zerolog JSON record.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/backmassage/camstitch/internal/config"
	"github.com/backmassage/camstitch/internal/term"
)

// Logger provides leveled, optionally colored logging with optional file sink.
type Logger struct {
	mu      sync.Mutex
	verbose bool
	out     io.Writer
	errOut  io.Writer
	file    *os.File
	sink    *zerolog.Logger
}

// NewLogger configures terminal colors from cfg and optionally opens the log
// file. Call Close() when done if LogFile was set.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.Logging.Color)

	l := &Logger{
		verbose: cfg.Logging.Verbose,
		out:     os.Stdout,
		errOut:  os.Stderr,
	}

	if cfg.Logging.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.Logging.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		sink := zerolog.New(f).With().Timestamp().Logger()
		l.file = f
		l.sink = &sink
	}
	return l, nil
}

// SetOutput redirects console output. ERROR lines go to errOut.
func (l *Logger) SetOutput(out, errOut io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = out
	l.errOut = errOut
}

// Verbose reports whether debug output is enabled.
func (l *Logger) Verbose() bool { return l.verbose }

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		l.sink = nil
		return err
	}
	return nil
}

func (l *Logger) line(tag, color string, level zerolog.Level, text string) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.out
	if level == zerolog.ErrorLevel {
		out = l.errOut
	}
	if color != "" {
		_, _ = io.WriteString(out, ts+" "+color+"["+tag+"]"+term.NC+" "+text+"\n")
	} else {
		_, _ = io.WriteString(out, ts+" ["+tag+"] "+text+"\n")
	}
	if l.sink != nil {
		l.sink.WithLevel(level).Str("tag", tag).Msg(text)
	}
}

// Print writes preformatted text (tables, banners) to the console as is.
// It is not copied to the log file.
func (l *Logger) Print(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	_, _ = io.WriteString(l.out, text)
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...interface{}) {
	l.line("INFO", term.Blue, zerolog.InfoLevel, fmt.Sprintf(format, args...))
}

// Step logs a pipeline stage transition (magenta).
func (l *Logger) Step(format string, args ...interface{}) {
	l.line("STEP", term.Magenta, zerolog.InfoLevel, fmt.Sprintf(format, args...))
}

// Success logs at SUCCESS level (green).
func (l *Logger) Success(format string, args ...interface{}) {
	l.line("SUCCESS", term.Green, zerolog.InfoLevel, fmt.Sprintf(format, args...))
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...interface{}) {
	l.line("WARN", term.Yellow, zerolog.WarnLevel, fmt.Sprintf(format, args...))
}

// Error logs at ERROR level (red), to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.line("ERROR", term.Red, zerolog.ErrorLevel, fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level (cyan) only when verbose; no-op otherwise.
func (l *Logger) Debug(verbose bool, format string, args ...interface{}) {
	if !verbose {
		return
	}
	l.line("DEBUG", term.Cyan, zerolog.DebugLevel, fmt.Sprintf(format, args...))
}
