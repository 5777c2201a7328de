package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceDocument_Validate(t *testing.T) {
	tests := []struct {
		name    string
		doc     SourceDocument
		wantErr bool
		errMsg  string
	}{
		{
			name: "Valid document",
			doc:  SourceDocument{Data: []byte("hello"), FileName: "a.txt"},
		},
		{
			name:    "Empty data",
			doc:     SourceDocument{FileName: "a.txt"},
			wantErr: true,
			errMsg:  "file: file is empty",
		},
		{
			name:    "Blank file name",
			doc:     SourceDocument{Data: []byte("x"), FileName: "  "},
			wantErr: true,
			errMsg:  "file_name: file name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.doc.Validate()
			if tt.wantErr {
				assert.EqualError(t, err, tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSourceDocument_Done(t *testing.T) {
	assert.NotPanics(t, func() { SourceDocument{}.Done() })

	calls := 0
	SourceDocument{Release: func() { calls++ }}.Done()
	assert.Equal(t, 1, calls)
}

func TestExtractionMetadata_AddWarningDeduplicates(t *testing.T) {
	var m ExtractionMetadata
	m.AddWarning("truncated")
	m.AddWarning("truncated")
	m.AddWarning("page_cap_reached")

	assert.Equal(t, []string{"truncated", "page_cap_reached"}, m.Warnings)
	assert.True(t, m.HasWarning("page_cap_reached"))
	assert.False(t, m.HasWarning("no_extractable_text"))
}

func TestExtractionMetadata_SetExtraIgnoresBlank(t *testing.T) {
	var m ExtractionMetadata
	m.SetExtra("producer", "   ")
	assert.Nil(t, m.Extra)

	m.SetExtra("producer", " LibreOffice ")
	assert.Equal(t, "LibreOffice", m.Extra["producer"])
}

func TestExtractedContent_ComputeCounts(t *testing.T) {
	c := ExtractedContent{Text: "héllo wörld\nsecond line"}
	c.ComputeCounts()

	assert.Equal(t, 23, c.CharacterCount)
	assert.Equal(t, 4, c.WordCount)
}

func TestFittingChunks(t *testing.T) {
	chunks := []Chunk{
		{Index: 1, FitsInContext: true},
		{Index: 2, FitsInContext: false},
		{Index: 3, FitsInContext: true},
	}

	got := FittingChunks(chunks)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Index)
	assert.Equal(t, 3, got[1].Index)
	assert.NotNil(t, FittingChunks(nil))
}

func TestValidationError_Error(t *testing.T) {
	assert.Equal(t, "model: unknown", (&ValidationError{Field: "model", Message: "unknown"}).Error())
	assert.Equal(t, "bad input", (&ValidationError{Message: "bad input"}).Error())
}
