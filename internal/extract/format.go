package extract

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"docpipe/internal/domain"
)

// Format is the closed set of document formats the extractor can decode.
type Format int

const (
	FormatUnknown Format = iota
	FormatPDF
	FormatDOCX
	FormatXLSX
	FormatPPTX
	FormatTXT
	FormatCSV
	FormatRTF
)

// Formats lists every supported format.
var Formats = []Format{FormatPDF, FormatDOCX, FormatXLSX, FormatPPTX, FormatTXT, FormatCSV, FormatRTF}

func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatDOCX:
		return "docx"
	case FormatXLSX:
		return "xlsx"
	case FormatPPTX:
		return "pptx"
	case FormatTXT:
		return "txt"
	case FormatCSV:
		return "csv"
	case FormatRTF:
		return "rtf"
	default:
		return "unknown"
	}
}

// MIMEType returns the canonical media type for the format.
func (f Format) MIMEType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPPTX:
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case FormatTXT:
		return "text/plain"
	case FormatCSV:
		return "text/csv"
	case FormatRTF:
		return "application/rtf"
	default:
		return "application/octet-stream"
	}
}

var extensionFormats = map[string]Format{
	".pdf":      FormatPDF,
	".docx":     FormatDOCX,
	".xlsx":     FormatXLSX,
	".pptx":     FormatPPTX,
	".txt":      FormatTXT,
	".text":     FormatTXT,
	".md":       FormatTXT,
	".markdown": FormatTXT,
	".log":      FormatTXT,
	".csv":      FormatCSV,
	".tsv":      FormatCSV,
	".rtf":      FormatRTF,
}

// Media types that name exactly one supported format. Generic values such as
// text/plain or application/octet-stream never select a decoder.
var specificMIMEFormats = map[string]Format{
	"application/pdf": FormatPDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   FormatDOCX,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         FormatXLSX,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": FormatPPTX,
	"text/markdown":             FormatTXT,
	"text/csv":                  FormatCSV,
	"application/csv":           FormatCSV,
	"text/tab-separated-values": FormatCSV,
	"application/rtf":           FormatRTF,
	"text/rtf":                  FormatRTF,
}

// DetectFormat picks the decoder for an upload. The file extension wins; the
// declared MIME type is consulted only when the extension is missing or
// unknown, and only if it is specific to one supported format.
func DetectFormat(filename, declaredMIME string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if f, ok := extensionFormats[ext]; ok {
		return f, nil
	}

	if mediaType := normalizeMIME(declaredMIME); mediaType != "" {
		if f, ok := specificMIMEFormats[mediaType]; ok {
			return f, nil
		}
	}

	if ext == "" {
		return FormatUnknown, fmt.Errorf("%w: cannot determine type of %q", domain.ErrUnsupportedFormat, filename)
	}
	return FormatUnknown, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, ext)
}

func normalizeMIME(declared string) string {
	declared = strings.TrimSpace(declared)
	if declared == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return ""
	}
	return strings.ToLower(mediaType)
}
