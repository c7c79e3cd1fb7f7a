package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	debugColor   = color.New(color.FgCyan)
	infoColor    = color.New(color.FgBlue)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	successColor = color.New(color.FgGreen)
	methodColor  = color.New(color.FgMagenta)
	timeColor    = color.New(color.FgHiBlack)
)

type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

var (
	mu          sync.RWMutex
	globalLevel = LogLevelInfo
)

var out io.Writer = os.Stdout

// ParseLevel maps a config value to a level. Unknown values mean info.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	}
	return LogLevelInfo
}

// SetGlobalLevel sets the level every new Log starts with.
func SetGlobalLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	globalLevel = level
}

// SetOutput redirects all log output. nil restores stdout.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stdout
	}
	out = w
}

type Log struct {
	level LogLevel
	err   error
}

func New() *Log {
	mu.RLock()
	defer mu.RUnlock()
	return &Log{
		level: globalLevel,
	}
}

func (l *Log) WithError(err error) *Log {
	return &Log{level: l.level, err: err}
}

func (l *Log) timestamp() string {
	return time.Now().Format("15:04:05")
}

func (l *Log) print(c *color.Color, icon, msg string) {
	line := msg
	if l.err != nil {
		line = fmt.Sprintf("%s: %v", msg, l.err)
	}

	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintf(out, "%s %s\n", timeColor.Sprintf("[%s]", l.timestamp()), c.Sprintf("%s %s", icon, line))
}

func (l *Log) Debug(msg string) {
	if l.level > LogLevelDebug {
		return
	}
	l.print(debugColor, "🔍", msg)
}

func (l *Log) Info(msg string) {
	if l.level > LogLevelInfo {
		return
	}
	l.print(infoColor, "ℹ️ ", msg)
}

func (l *Log) Success(msg string) {
	if l.level > LogLevelInfo {
		return
	}
	l.print(successColor, "✓", msg)
}

func (l *Log) Warn(msg string) {
	if l.level > LogLevelWarn {
		return
	}
	l.print(warnColor, "⚠️ ", msg)
}

func (l *Log) Error(msg string) {
	l.print(errorColor, "❌", msg)
}

// Request logs a served HTTP request, colored by status class.
func (l *Log) Request(method, path string, statusCode int, duration time.Duration) {
	if l.level > LogLevelInfo {
		return
	}

	var c *color.Color
	switch {
	case statusCode >= 500:
		c = errorColor
	case statusCode >= 400:
		c = warnColor
	case statusCode >= 300:
		c = debugColor
	default:
		c = successColor
	}

	var durationStr string
	switch {
	case duration < time.Millisecond:
		durationStr = fmt.Sprintf("%dµs", duration.Microseconds())
	case duration < time.Second:
		durationStr = fmt.Sprintf("%dms", duration.Milliseconds())
	default:
		durationStr = fmt.Sprintf("%.2fs", duration.Seconds())
	}

	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintf(out, "%s %s %-40s %s %s\n",
		timeColor.Sprintf("[%s]", l.timestamp()),
		methodColor.Sprintf("%-6s", method),
		path,
		c.Sprintf("[%d]", statusCode),
		timeColor.Sprintf("(%s)", durationStr))
}
