// Package notify carries user-visible notices (the storefront's toasts) from
// domain operations to whatever presents them.
package notify

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Level is the severity a notice is presented with
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is one user-visible message
type Notice struct {
	Level       Level  `json:"status"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Notifier presents notices to the user
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Recorder collects notices in order; the HTTP layer returns them with the response
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Notify appends n
func (r *Recorder) Notify(_ context.Context, n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of everything recorded so far
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Log writes notices to a logger, used when nobody is watching
type Log struct {
	logger logrus.FieldLogger
}

// NewLog creates a logging notifier
func NewLog(logger logrus.FieldLogger) *Log {
	return &Log{logger: logger}
}

// Notify logs n at a level matching its severity
func (l *Log) Notify(_ context.Context, n Notice) {
	entry := l.logger.WithFields(logrus.Fields{
		"notice":      n.Title,
		"description": n.Description,
	})

	switch n.Level {
	case LevelError:
		entry.Error("notice")
	case LevelWarning:
		entry.Warn("notice")
	default:
		entry.Info("notice")
	}
}

// Discard drops every notice
type Discard struct{}

// Notify does nothing
func (Discard) Notify(context.Context, Notice) {}

// Info, Success, Warning and Error build notices.

func Info(title, description string) Notice {
	return Notice{Level: LevelInfo, Title: title, Description: description}
}

func Success(title, description string) Notice {
	return Notice{Level: LevelSuccess, Title: title, Description: description}
}

func Warning(title, description string) Notice {
	return Notice{Level: LevelWarning, Title: title, Description: description}
}

func Error(title, description string) Notice {
	return Notice{Level: LevelError, Title: title, Description: description}
}
