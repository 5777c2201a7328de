package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"docpipe/internal/domain"
)

// LogLevel represents different logging levels
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// AppLogger implements the domain.Logger interface
type AppLogger struct {
	level     LogLevel
	component string
	logger    *log.Logger
}

// NewLogger creates a logger writing to stdout.
func NewLogger(levelStr string) domain.Logger {
	return NewLoggerWithWriter(levelStr, os.Stdout)
}

// NewLoggerWithWriter creates a logger writing to w.
func NewLoggerWithWriter(levelStr string, w io.Writer) *AppLogger {
	return &AppLogger{
		level:  parseLogLevel(levelStr),
		logger: log.New(w, "", 0),
	}
}

// Named returns a copy of the logger that tags every line with a component name.
func (l *AppLogger) Named(component string) *AppLogger {
	return &AppLogger{
		level:     l.level,
		component: component,
		logger:    l.logger,
	}
}

func (l *AppLogger) Info(msg string, fields ...interface{}) {
	if l.level <= INFO {
		l.log("INFO", msg, fields...)
	}
}

func (l *AppLogger) Error(msg string, err error, fields ...interface{}) {
	if l.level <= ERROR {
		allFields := append([]interface{}{"error", err}, fields...)
		l.log("ERROR", msg, allFields...)
	}
}

func (l *AppLogger) Debug(msg string, fields ...interface{}) {
	if l.level <= DEBUG {
		l.log("DEBUG", msg, fields...)
	}
}

func (l *AppLogger) Warn(msg string, fields ...interface{}) {
	if l.level <= WARN {
		l.log("WARN", msg, fields...)
	}
}

func (l *AppLogger) log(level, msg string, fields ...interface{}) {
	timestamp := time.Now().UTC().Format("2006-01-02 15:04:05")

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s: ", timestamp, level)
	if l.component != "" {
		fmt.Fprintf(&sb, "[%s] ", l.component)
	}
	sb.WriteString(msg)

	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&sb, " %v=%v", fields[i], quoteIfSpaced(fields[i+1]))
	}
	// A dangling key is still worth seeing.
	if len(fields)%2 == 1 {
		fmt.Fprintf(&sb, " %v=?", fields[len(fields)-1])
	}

	l.logger.Println(sb.String())
}

func quoteIfSpaced(v interface{}) interface{} {
	s, ok := v.(string)
	if ok && strings.ContainsAny(s, " \t\n") {
		return fmt.Sprintf("%q", s)
	}
	return v
}

func parseLogLevel(levelStr string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}
