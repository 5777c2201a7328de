package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"docpipe/internal/domain"
)

// MockLogger implements domain.Logger for testing
type MockLogger struct {
	mu       sync.Mutex
	messages []string
}

func (m *MockLogger) Info(msg string, fields ...interface{})  { m.add("INFO", msg, fields...) }
func (m *MockLogger) Debug(msg string, fields ...interface{}) { m.add("DEBUG", msg, fields...) }
func (m *MockLogger) Warn(msg string, fields ...interface{})  { m.add("WARN", msg, fields...) }
func (m *MockLogger) Error(msg string, err error, fields ...interface{}) {
	m.add("ERROR", msg, append([]interface{}{"error", err}, fields...)...)
}

func (m *MockLogger) add(level, msg string, fields ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, fmt.Sprintf("%s %s %v", level, msg, fields))
}

func (m *MockLogger) Contains(substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.messages {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

// fakeStore is a ContentStore with injectable failures.
type fakeStore struct {
	name   string
	mu     sync.Mutex
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
	gets   int
}

func newFakeStore(name string) *fakeStore {
	return &fakeStore{name: name, data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeStore) Name() string { return f.name }

func (f *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return v, nil
}

func (f *fakeStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	f.ttls[key] = ttl
	return nil
}

type recordingObserver struct {
	mu      sync.Mutex
	lookups []string
}

func (r *recordingObserver) ObserveLookup(layer, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups = append(r.lookups, layer+"="+result)
}
