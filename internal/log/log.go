// Package log provides structured logging for undopad.
// Output goes to a debug log file opened through tea.LogToFile, so the
// terminal owned by the editor is never written to. Logging is off until
// Init is called (--debug flag or UNDOPAD_DEBUG env).
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/undopad/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

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

// ParseLevel maps a config string to a Level. Unknown names map to debug.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelDebug
	}
}

// Category groups related log messages.
type Category string

const (
	CatHistory Category = "history" // Checkpoints, undo and redo
	CatTimer   Category = "timer"   // Debounce scheduling
	CatConfig  Category = "config"  // Configuration loading/saving
	CatUI      Category = "ui"      // Editor updates
	CatKeys    Category = "keys"    // Key binding resolution
	CatWatcher Category = "watcher" // Config file watcher events
	CatReplay  Category = "replay"  // Headless script replay
	CatTrace   Category = "trace"   // Tracing provider lifecycle
	CatCache   Category = "cache"   // Render caches
)

// Logger provides structured logging.
type Logger struct {
	mu       sync.Mutex
	closer   io.Closer
	writer   io.Writer
	enabled  bool
	minLevel Level
	session  string
	broker   *pubsub.Broker[string]
}

var (
	defaultLogger *Logger
	defaultMu     sync.Mutex
)

// Init opens path for appending and installs it as the global log output.
// Returns a cleanup function that closes the file.
func Init(path string) (func(), error) {
	f, err := tea.LogToFile(path, "")
	if err != nil {
		return nil, fmt.Errorf("opening debug log %s: %w", path, err)
	}
	install(newLogger(f, f))
	return func() {
		defaultMu.Lock()
		defer defaultMu.Unlock()
		if defaultLogger != nil && defaultLogger.closer != nil {
			_ = defaultLogger.closer.Close()
			defaultLogger.closer = nil
			defaultLogger.writer = nil
		}
	}, nil
}

// InitWriter installs w as the global log output. Used by tests and by the
// replay command's --verbose mode (stderr).
func InitWriter(w io.Writer) {
	install(newLogger(w, nil))
}

// Reset removes the global logger. Subsequent log calls are dropped.
func Reset() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger != nil && defaultLogger.broker != nil {
		defaultLogger.broker.Close()
	}
	defaultLogger = nil
}

func newLogger(w io.Writer, c io.Closer) *Logger {
	return &Logger{
		closer:   c,
		writer:   w,
		enabled:  true,
		minLevel: LevelDebug,
		broker:   pubsub.NewBroker[string](),
	}
}

func install(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger != nil && defaultLogger.broker != nil {
		defaultLogger.broker.Close()
	}
	defaultLogger = l
}

func current() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultLogger
}

// Enabled reports whether a logger is installed and enabled.
func Enabled() bool {
	l := current()
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

// SetSession tags every subsequent line with session=<id>.
func SetSession(id string) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.session = id
		l.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	log(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	log(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	log(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	log(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	log(LevelError, cat, msg, fields...)
}

func log(level Level, cat Category, msg string, fields ...any) {
	l := current()
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || level < l.minLevel {
		return
	}

	// Format: 2025-12-06T10:45:00 [DEBUG] [history] message key=value key2=value2
	var b strings.Builder
	b.WriteString(time.Now().Format("2006-01-02T15:04:05"))
	fmt.Fprintf(&b, " [%s] [%s] %s", level, cat, msg)
	if l.session != "" {
		fmt.Fprintf(&b, " session=%s", l.session)
	}
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=<missing>", fields[len(fields)-1])
	}
	b.WriteByte('\n')
	entry := b.String()

	if l.writer != nil {
		_, _ = io.WriteString(l.writer, entry)
	}

	if l.broker != nil {
		l.broker.Publish(pubsub.CreatedEvent, strings.TrimSuffix(entry, "\n"))
	}
}

// LogEvent is a pubsub event containing a log entry.
type LogEvent = pubsub.Event[string]

// LogListener wraps a continuous listener for log events.
type LogListener = pubsub.ContinuousListener[string]

// NewListener creates a new log event listener, or nil when logging is not
// initialized. The listener is cleaned up when ctx is cancelled.
func NewListener(ctx context.Context) *LogListener {
	l := current()
	if l == nil || l.broker == nil {
		return nil
	}
	return pubsub.NewContinuousListener(ctx, l.broker)
}

// DefaultPath returns the debug log path: UNDOPAD_LOG if set, otherwise
// debug.log in the working directory.
func DefaultPath() string {
	if p := os.Getenv("UNDOPAD_LOG"); p != "" {
		return p
	}
	return "debug.log"
}
