// Package toast carries short, transient operator-facing messages.
package toast

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Toaster shows a transient message to the operator.
type Toaster interface {
	Show(level Level, message string)
}

// Discard drops every toast.
var Discard Toaster = discard{}

type discard struct{}

func (discard) Show(Level, string) {}

// Log writes toasts to a structured logger.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Show(level Level, message string) {
	switch level {
	case LevelError:
		l.logger.Error(message, "toast", string(level))
	default:
		l.logger.Info(message, "toast", string(level))
	}
}

// Writer prints toasts as single lines, e.g. "[error] Not found".
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (t *Writer) Show(level Level, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "[%s] %s\n", level, message)
}

// Toast is one recorded message.
type Toast struct {
	Level   Level
	Message string
}

// Recorder keeps every toast in memory.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *Recorder) Show(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, Toast{Level: level, Message: message})
}

// Toasts returns a copy of the recorded toasts.
func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.toasts...)
}
