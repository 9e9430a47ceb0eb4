package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Level defines the severity of a log entry.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String satisfies fmt.Stringer.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var (
	mu     sync.RWMutex
	logger *slog.Logger
)

// Init configures the package-level logger. It must be called once at
// startup before any other function in this package is used; subsequent
// calls replace the logger (useful in tests).
func Init(level Level, output io.Writer) {
	if output == nil {
		output = os.Stderr
	}
	handler := slog.NewTextHandler(output, &slog.HandlerOptions{Level: level.slogLevel()})
	mu.Lock()
	logger = slog.New(handler)
	mu.Unlock()
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if logger == nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return logger
}

func logf(level Level, subsystem string, err error, format string, args ...interface{}) {
	l := current()
	if !l.Enabled(context.Background(), level.slogLevel()) {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	attrs := []slog.Attr{slog.String("subsystem", subsystem)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	l.LogAttrs(context.Background(), level.slogLevel(), msg, attrs...)
}

// Debug logs a debug-level message tagged with subsystem.
func Debug(subsystem, format string, args ...interface{}) {
	logf(LevelDebug, subsystem, nil, format, args...)
}

// Info logs an info-level message tagged with subsystem.
func Info(subsystem, format string, args ...interface{}) {
	logf(LevelInfo, subsystem, nil, format, args...)
}

// Warn logs a warn-level message tagged with subsystem.
func Warn(subsystem, format string, args ...interface{}) {
	logf(LevelWarn, subsystem, nil, format, args...)
}

// Error logs an error-level message tagged with subsystem, carrying err.
func Error(subsystem string, err error, format string, args ...interface{}) {
	logf(LevelError, subsystem, err, format, args...)
}

// TruncateID returns a truncated identifier safe for inclusion in logs
// (first 8 characters followed by an ellipsis), so full session/principal
// ids never land in plaintext logs.
func TruncateID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}

// AuditEvent is a structured record of a security-sensitive operation.
type AuditEvent struct {
	Action    string // e.g. "token_issue", "auth_failure", "instance_register"
	Outcome   string // "success" or "failure"
	Principal string // truncated principal id, if known
	Target    string // e.g. template or instance name
	Details   string
	Error     string
}

// Audit logs a structured audit event at Info level with an "[AUDIT]" prefix.
func Audit(event AuditEvent) {
	parts := make([]string, 0, 6)
	parts = append(parts, "action="+event.Action, "outcome="+event.Outcome)
	if event.Principal != "" {
		parts = append(parts, "principal="+event.Principal)
	}
	if event.Target != "" {
		parts = append(parts, "target="+event.Target)
	}
	if event.Details != "" {
		parts = append(parts, "details="+event.Details)
	}
	if event.Error != "" {
		parts = append(parts, "error="+event.Error)
	}
	logf(LevelInfo, "AUDIT", nil, "[AUDIT] %s", strings.Join(parts, " "))
}

// Now returns the current time; call sites use this instead of time.Now
// directly so log-timestamp behavior stays centralized and mockable.
func Now() time.Time { return time.Now() }
