// Package notify presents transient success/error/info messages.
//
// Producers running inside tea.Cmd goroutines hand notifications to a Queue;
// the UI loop drains the queue into a Stack, which owns the toasts on screen
// and schedules their removal.
package notify

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

// DisplayDuration is how long a toast stays on screen.
const DisplayDuration = 3 * time.Second

// Severity classifies a notification.
type Severity int

const (
	Success Severity = iota
	Error
	Info
)

func (s Severity) String() string {
	switch s {
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Notification is a single toast.
type Notification struct {
	ID        uint64
	Title     string
	Message   string
	Severity  Severity
	CreatedAt time.Time
}

// Notifier accepts notifications. Implementations never fail.
type Notifier interface {
	Notify(title, message string, severity Severity)
}

// ShowMsg carries a notification into the UI loop
type ShowMsg struct{ Notification Notification }

// ExpiredMsg fires when a toast's display time is over
type ExpiredMsg struct{ ID uint64 }

// DismissMsg removes a toast before it expires
type DismissMsg struct{ ID uint64 }

const queueSize = 64

// Queue is a non-blocking Notifier backed by a buffered channel.
type Queue struct {
	ch     chan Notification
	seq    atomic.Uint64
	logger *log.Logger
	now    func() time.Time
}

// NewQueue creates a queue. logger may be nil.
func NewQueue(logger *log.Logger) *Queue {
	return &Queue{
		ch:     make(chan Notification, queueSize),
		logger: logger,
		now:    time.Now,
	}
}

// Notify enqueues a notification; when the buffer is full it is dropped.
func (q *Queue) Notify(title, message string, severity Severity) {
	n := Notification{
		ID:        q.seq.Add(1),
		Title:     title,
		Message:   message,
		Severity:  severity,
		CreatedAt: q.now(),
	}
	select {
	case q.ch <- n:
	default:
		if q.logger != nil {
			q.logger.Warn("notification dropped", "title", title, "severity", severity)
		}
	}
}

// Wait returns a command that blocks until the next notification arrives.
// Re-issue it after every ShowMsg.
func (q *Queue) Wait() tea.Cmd {
	return func() tea.Msg {
		return ShowMsg{Notification: <-q.ch}
	}
}
