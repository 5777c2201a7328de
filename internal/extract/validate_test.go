package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"docpipe/internal/domain"
)

func TestValidateText(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		raw     string
		text    string
		wantErr bool
	}{
		{"plain text", FormatTXT, "hello", "hello", false},
		{"tabs and newlines", FormatTXT, "a\tb\nc", "a\tb\nc", false},
		{"zip prefix", FormatTXT, "PK\x03\x04", "PK", true},
		{"zip end of central directory", FormatPDF, "PK\x05\x06", "PK\x05\x06", true},
		{"text starting with PK", FormatTXT, "PKI overview: certificates", "PKI overview: certificates", false},
		{"pdf page starting with PK", FormatPDF, "PKI overview", "PKI overview", false},
		{"bare PK from a zip decoder", FormatDOCX, "PK garbage", "PK garbage", true},
		{"pdf prefix", FormatTXT, "%PDF-1.4", "%PDF-1.4", true},
		{"rtf prefix", FormatTXT, `{\rtf1}`, `{\rtf1}`, true},
		{"ole prefix in raw output", FormatRTF, "\xD0\xCF\x11\xE0\xA1", "\uFFFD", true},
		{"signature after whitespace", FormatTXT, "  \n%PDF", "%PDF", true},
		{"nul byte", FormatTXT, "a\x00b", "a\x00b", true},
		{"carriage return", FormatTXT, "a\rb", "a\rb", true},
		{"signature later in text is fine", FormatTXT, "see %PDF docs", "see %PDF docs", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateText(tt.format, tt.raw, tt.text)
			if tt.wantErr {
				assert.True(t, errors.Is(err, domain.ErrBinaryLeakage), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
