package repository

import (
	"fmt"
	"strings"
)

const (
	ResultKeyPrefix     = "result"
	ExtractionKeyPrefix = "extract"
)

// ResultKey addresses a full processing result. It depends on everything that
// changes the output: content, model and chunk budget.
func ResultKey(fileHash, canonicalModel string, maxTokens int) string {
	return fmt.Sprintf("%s:%s:%s:%d", ResultKeyPrefix, fileHash, strings.ToLower(canonicalModel), maxTokens)
}

// ExtractionKey addresses the extracted content of a file, which does not
// depend on the model.
func ExtractionKey(fileHash string) string {
	return ExtractionKeyPrefix + ":" + fileHash
}
