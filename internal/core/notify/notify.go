// Package notify defines user-facing notifications raised from domain events.
package notify

import (
	"fmt"
	"io"
	"sync"
)

// Level represents the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification represents a single notification event.
type Notification struct {
	Level   Level
	Message string
}

// Sink receives notifications.
type Sink interface {
	Notify(n Notification)
}

// Writer prints notifications as "level: message" lines. Notifications below
// Min are discarded.
type Writer struct {
	mu  sync.Mutex
	w   io.Writer
	Min Level
}

// NewWriter returns a Writer printing to w.
func NewWriter(w io.Writer, min Level) *Writer {
	return &Writer{w: w, Min: min}
}

// Notify implements Sink.
func (s *Writer) Notify(n Notification) {
	if rank(n.Level) < rank(s.Min) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintf(s.w, "%s: %s\n", n.Level, n.Message)
}

// Recorder collects notifications in memory.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify implements Sink.
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

func rank(l Level) int {
	switch l {
	case LevelWarning:
		return 1
	case LevelError:
		return 2
	default:
		return 0
	}
}
