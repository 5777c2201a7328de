package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"docpipe/internal/domain"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		mime     string
		want     Format
		wantErr  bool
	}{
		{"pdf by extension", "report.pdf", "", FormatPDF, false},
		{"extension is case insensitive", "REPORT.DOCX", "", FormatDOCX, false},
		{"generic mime ignored for office file", "deck.pptx", "text/plain", FormatPPTX, false},
		{"extension beats conflicting mime", "sheet.xlsx", "application/pdf", FormatXLSX, false},
		{"markdown is text", "README.md", "", FormatTXT, false},
		{"tsv is csv", "data.tsv", "", FormatCSV, false},
		{"rtf", "memo.rtf", "", FormatRTF, false},
		{"specific mime without extension", "upload", "application/pdf", FormatPDF, false},
		{"specific mime with parameters", "upload", "text/csv; charset=utf-8", FormatCSV, false},
		{"specific mime with unknown extension", "upload.bin", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", FormatDOCX, false},
		{"generic text/plain alone is not enough", "upload", "text/plain", FormatUnknown, true},
		{"octet-stream ignored", "upload.bin", "application/octet-stream", FormatUnknown, true},
		{"zip ignored", "archive.zip", "application/zip", FormatUnknown, true},
		{"malformed mime ignored", "upload", ";;;", FormatUnknown, true},
		{"legacy word unsupported", "old.doc", "application/msword", FormatUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.filename, tt.mime)
			if tt.wantErr {
				assert.True(t, errors.Is(err, domain.ErrUnsupportedFormat))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatsAreComplete(t *testing.T) {
	e := New(DefaultConfig(), NewMockLogger())

	assert.Len(t, e.handlers, len(Formats))
	for _, f := range Formats {
		t.Run(f.String(), func(t *testing.T) {
			assert.Contains(t, e.handlers, f)
			assert.NotEqual(t, "unknown", f.String())
			assert.NotEqual(t, "application/octet-stream", f.MIMEType())
		})
	}
	assert.Equal(t, "unknown", FormatUnknown.String())
}

func TestCheckSignature(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		data    []byte
		wantErr bool
	}{
		{"pdf header", FormatPDF, []byte("%PDF-1.4 ..."), false},
		{"pdf header after junk", FormatPDF, append(make([]byte, 100), []byte("%PDF-1.4")...), false},
		{"pdf header too late", FormatPDF, append(make([]byte, 2048), []byte("%PDF-1.4")...), true},
		{"zip for docx", FormatDOCX, []byte("PK\x03\x04rest"), false},
		{"not zip for xlsx", FormatXLSX, []byte("GIF89a"), true},
		{"rtf with bom and whitespace", FormatRTF, []byte("\xEF\xBB\xBF \r\n{\\rtf1 x}"), false},
		{"rtf without header", FormatRTF, []byte("plain"), true},
		{"text has no signature", FormatTXT, []byte("anything"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkSignature(tt.format, tt.data)
			if tt.wantErr {
				assert.True(t, errors.Is(err, domain.ErrCorruptSignature))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
