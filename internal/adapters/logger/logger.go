// Package logger implements a logging adapter using log/slog.
package logger

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"go.trai.ch/harvest/internal/core/ports"
	"go.trai.ch/harvest/internal/ui/style"
)

// messager describes an error that can report its own message without the chain.
// This matches the Message() method provided by zerr.Error (go.trai.ch/zerr v0.3.0+).
// If zerr's API changes, errors will gracefully fall back to standard error handling.
type messager interface {
	Message() string
}

// sink is the slog destination shared by a Logger and all loggers derived from it.
type sink struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	jsonMode bool
	output   io.Writer
}

// Logger implements ports.Logger using log/slog.
type Logger struct {
	sink *sink
	id   string
}

// New creates a new Logger instance.
func New() ports.Logger {
	s := &sink{output: os.Stderr}
	s.rebuild()
	return &Logger{sink: s}
}

// SetOutput updates the logger's output destination.
// It preserves the current JSON mode setting.
// If w is nil, os.Stderr is used as the default.
func (l *Logger) SetOutput(w io.Writer) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	l.sink.output = w
	l.sink.rebuild()
}

// SetJSON switches between JSON and pretty logging.
// The output destination is preserved from SetOutput calls.
func (l *Logger) SetJSON(enable bool) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	l.sink.jsonMode = enable
	l.sink.rebuild()
}

// rebuild must be called with mu held or before the sink is shared.
func (s *sink) rebuild() {
	w := s.output
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if s.jsonMode {
		s.logger = slog.New(slog.NewJSONHandler(w, opts))
		return
	}
	s.logger = slog.New(NewPrettyHandler(w, opts))
}

// For returns a Logger attributing its records to the identifier id.
// Derived loggers follow SetOutput and SetJSON calls made on their parent.
func (l *Logger) For(id string) ports.Logger {
	return &Logger{sink: l.sink, id: id}
}

func (l *Logger) args() []any {
	if l.id == "" {
		return nil
	}
	return []any{IDKey, l.id}
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.sink.mu.RLock()
	defer l.sink.mu.RUnlock()
	l.sink.logger.Info(msg, l.args()...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.sink.mu.RLock()
	defer l.sink.mu.RUnlock()
	l.sink.logger.Warn(msg, l.args()...)
}

// Error logs an error message.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}

	l.sink.mu.RLock()
	defer l.sink.mu.RUnlock()

	if l.sink.jsonMode {
		l.sink.logger.Error("operation failed", append(l.args(), "error", err.Error())...)
		return
	}

	l.sink.logger.Error(formatErrorEntries(collectErrorEntries(err)), l.args()...)
}

// ErrorEntry is one layer of an error chain.
type ErrorEntry struct {
	Message string
}

// collectErrorEntries traverses the error chain programmatically.
// zerr layers contribute their own message; the first standard error ends the walk.
func collectErrorEntries(err error) []ErrorEntry {
	var entries []ErrorEntry
	current := err

	for current != nil {
		m, ok := current.(messager)
		if !ok {
			entries = append(entries, ErrorEntry{Message: current.Error()})
			break
		}
		entries = append(entries, ErrorEntry{Message: m.Message()})
		current = errors.Unwrap(current)
	}

	return entries
}

// formatErrorEntries formats the collected messages hierarchically.
func formatErrorEntries(entries []ErrorEntry) string {
	var formattedLines []string

	for i, entry := range entries {
		lines := strings.Split(entry.Message, "\n")

		if i == 0 {
			formattedLines = append(formattedLines, "Error: "+lines[0])
			// Indent any continuation lines to align with "Error: "
			for _, line := range lines[1:] {
				formattedLines = append(formattedLines, "       "+line)
			}
			continue
		}

		if i == 1 {
			formattedLines = append(formattedLines, "", "  Caused by:")
		}
		formattedLines = append(formattedLines, "    "+style.Arrow+" "+lines[0])
		for _, line := range lines[1:] {
			formattedLines = append(formattedLines, "      "+line)
		}
	}

	return strings.Join(formattedLines, "\n")
}
