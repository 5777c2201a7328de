package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type MockLogger struct {
	mu       sync.Mutex
	messages []string
}

func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) record(level, msg string, args []interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	line := level + ": " + msg
	for i := 0; i+1 < len(args); i += 2 {
		line += fmt.Sprintf(" %v=%v", args[i], args[i+1])
	}
	m.messages = append(m.messages, line)
}

func (m *MockLogger) Info(msg string, args ...interface{})  { m.record("INFO", msg, args) }
func (m *MockLogger) Debug(msg string, args ...interface{}) { m.record("DEBUG", msg, args) }
func (m *MockLogger) Warn(msg string, args ...interface{})  { m.record("WARN", msg, args) }
func (m *MockLogger) Error(msg string, err error, args ...interface{}) {
	m.record("ERROR", msg+" - "+err.Error(), args)
}

func (m *MockLogger) Contains(substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, line := range m.messages {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

// buildZip writes an in-memory archive with the given parts in order.
func buildZip(t *testing.T, parts [][2]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p[0])
		require.NoError(t, err)
		_, err = w.Write([]byte(p[1]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const (
	wordNS    = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`
	drawingNS = `xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"`
	coreXML   = `<?xml version="1.0" encoding="UTF-8"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Q3 Review</dc:title><dc:creator>Ana Lima</dc:creator></cp:coreProperties>`
)

func slideXML(paragraphs ...string) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?><p:sld ` + drawingNS + `><p:cSld><p:spTree><p:sp><p:txBody>`)
	for _, p := range paragraphs {
		sb.WriteString(`<a:p><a:r><a:t>` + p + `</a:t></a:r></a:p>`)
	}
	sb.WriteString(`</p:txBody></p:sp></p:spTree></p:cSld></p:sld>`)
	return sb.String()
}

// fakePDF serves canned page text.
type fakePDF struct {
	pages     []string
	meta      map[string]string
	pageDelay time.Duration
	failPage  int
	closed    bool
}

func (f *fakePDF) NumPage() int { return len(f.pages) }

func (f *fakePDF) Text(n int) (string, error) {
	if f.pageDelay > 0 {
		time.Sleep(f.pageDelay)
	}
	if f.failPage > 0 && n+1 == f.failPage {
		return "", fmt.Errorf("page %d is damaged", n+1)
	}
	return f.pages[n], nil
}

func (f *fakePDF) Metadata() map[string]string { return f.meta }

func (f *fakePDF) Close() error {
	f.closed = true
	return nil
}

func pdfOpener(doc *fakePDF) PDFOpener {
	return func([]byte) (PDFDocument, error) {
		return doc, nil
	}
}

// stuckPDF blocks on its first page until unblock is closed, ignoring
// cancellation the way a wedged native decoder does.
type stuckPDF struct {
	unblock chan struct{}
}

func (s *stuckPDF) NumPage() int { return 1 }

func (s *stuckPDF) Text(int) (string, error) {
	<-s.unblock
	return "late page", nil
}

func (s *stuckPDF) Metadata() map[string]string { return nil }
func (s *stuckPDF) Close() error                { return nil }

var fakePDFBytes = []byte("%PDF-1.7\n% test fixture\n")
