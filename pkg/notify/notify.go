// Package notify renders short user-facing success and error messages.
package notify

import (
	"fmt"
	"io"
	"sync"
)

// Messages shown by the tour list controller
const (
	MsgLoadError       = "Error loading tours"
	MsgStatusUpdated   = "Status updated successfully"
	MsgStatusError     = "Error updating status"
	MsgGuideAssigned   = "Guide assigned successfully"
	MsgGuideAssignFail = "Error assigning guide"
)

// Level distinguishes success notifications from error notifications
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a single message shown to the user
type Notification struct {
	Level   Level
	Message string
}

// Notifier shows transient notifications to the user
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Console writes notifications as single marked lines
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole creates a notifier that writes to w
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Success(msg string) {
	c.write("✓", msg)
}

func (c *Console) Error(msg string) {
	c.write("✗", msg)
}

func (c *Console) write(mark, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "%s %s\n", mark, msg)
}

// Recorder keeps every notification in order. Safe for concurrent use.
type Recorder struct {
	mu            sync.Mutex
	notifications []Notification
}

func (r *Recorder) Success(msg string) {
	r.add(Notification{Level: LevelSuccess, Message: msg})
}

func (r *Recorder) Error(msg string) {
	r.add(Notification{Level: LevelError, Message: msg})
}

func (r *Recorder) add(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

// All returns a copy of the recorded notifications
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.notifications))
	copy(out, r.notifications)
	return out
}

// Count returns how many notifications match level and message
func (r *Recorder) Count(level Level, msg string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, notification := range r.notifications {
		if notification.Level == level && notification.Message == msg {
			n++
		}
	}
	return n
}

// CountLevel returns how many notifications have the given level
func (r *Recorder) CountLevel(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, notification := range r.notifications {
		if notification.Level == level {
			n++
		}
	}
	return n
}
