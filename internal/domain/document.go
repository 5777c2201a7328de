package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// SourceDocument is an upload as handed over by the transport. It lives for
// the duration of one extraction call.
type SourceDocument struct {
	Data         []byte
	FileName     string
	DeclaredMIME string
	// Hash is the content hash when the caller already computed it.
	Hash string
	// Release is called once the decoder for this document has stopped.
	// On timeout that happens after Extract has already returned.
	Release func()
}

// Done runs the Release callback, if any.
func (d SourceDocument) Done() {
	if d.Release != nil {
		d.Release()
	}
}

// Size returns the raw byte length of the document.
func (d SourceDocument) Size() int64 {
	return int64(len(d.Data))
}

// Validate checks the document carries something to extract.
func (d SourceDocument) Validate() error {
	if len(d.Data) == 0 {
		return &ValidationError{Field: "file", Message: "file is empty"}
	}
	if strings.TrimSpace(d.FileName) == "" {
		return &ValidationError{Field: "file_name", Message: "file name is required"}
	}
	return nil
}

// ExtractionMetadata holds format-specific details gathered while decoding.
type ExtractionMetadata struct {
	Warnings       []string          `json:"warnings,omitempty"`
	SheetNames     []string          `json:"sheetNames,omitempty"`
	SlideTitles    []string          `json:"slideTitles,omitempty"`
	PagesWithText  int               `json:"pagesWithText,omitempty"`
	RowCount       int               `json:"rowCount,omitempty"`
	Truncated      bool              `json:"truncated,omitempty"`
	OriginalLength int               `json:"originalLength,omitempty"`
	Extra          map[string]string `json:"extra,omitempty"`
}

// AddWarning records a warning once.
func (m *ExtractionMetadata) AddWarning(w string) {
	for _, existing := range m.Warnings {
		if existing == w {
			return
		}
	}
	m.Warnings = append(m.Warnings, w)
}

// HasWarning reports whether w was recorded.
func (m *ExtractionMetadata) HasWarning(w string) bool {
	for _, existing := range m.Warnings {
		if existing == w {
			return true
		}
	}
	return false
}

// SetExtra stores a free-form metadata value, ignoring blanks.
func (m *ExtractionMetadata) SetExtra(key, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if m.Extra == nil {
		m.Extra = make(map[string]string)
	}
	m.Extra[key] = value
}

// ExtractedContent is the normalized text of a document plus what was learned decoding it.
type ExtractedContent struct {
	Text           string             `json:"text"`
	Format         string             `json:"format"`
	MimeType       string             `json:"mimeType"`
	PageCount      int                `json:"pageCount"`
	WordCount      int                `json:"wordCount"`
	CharacterCount int                `json:"characterCount"`
	Title          string             `json:"title,omitempty"`
	Author         string             `json:"author,omitempty"`
	Metadata       ExtractionMetadata `json:"metadata"`
}

// ComputeCounts fills in word and character counts from Text.
func (c *ExtractedContent) ComputeCounts() {
	c.CharacterCount = utf8.RuneCountInString(c.Text)
	c.WordCount = len(strings.Fields(c.Text))
}

// ExtractionRecord is a cached extraction, reused across models and budgets.
type ExtractionRecord struct {
	FileHash         string           `json:"fileHash"`
	OriginalFileName string           `json:"originalFileName"`
	FileSize         int64            `json:"fileSize"`
	MimeType         string           `json:"mimeType"`
	Content          ExtractedContent `json:"content"`
	ExtractedAt      time.Time        `json:"extractedAt"`
}
