package handler

import (
	"fmt"
	"strings"
	"sync"
)

// MockHandlerLogger records log lines for handler tests.
type MockHandlerLogger struct {
	mu    sync.Mutex
	lines []string
}

func NewMockHandlerLogger() *MockHandlerLogger {
	return &MockHandlerLogger{}
}

func (l *MockHandlerLogger) record(level, msg string, fields ...interface{}) {
	var sb strings.Builder
	sb.WriteString(level + " " + msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&sb, " %v=%v", fields[i], fields[i+1])
	}
	l.mu.Lock()
	l.lines = append(l.lines, sb.String())
	l.mu.Unlock()
}

func (l *MockHandlerLogger) Info(msg string, fields ...interface{}) {
	l.record("INFO", msg, fields...)
}

func (l *MockHandlerLogger) Debug(msg string, fields ...interface{}) {
	l.record("DEBUG", msg, fields...)
}

func (l *MockHandlerLogger) Warn(msg string, fields ...interface{}) {
	l.record("WARN", msg, fields...)
}

func (l *MockHandlerLogger) Error(msg string, err error, fields ...interface{}) {
	l.record("ERROR", msg, append([]interface{}{"error", err}, fields...)...)
}

func (l *MockHandlerLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

func (l *MockHandlerLogger) Contains(substr string) bool {
	for _, line := range l.Lines() {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
