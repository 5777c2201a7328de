package domain

// Chunk is one token-budgeted slice of a document.
type Chunk struct {
	Index          int    `json:"index"`
	TotalChunks    int    `json:"totalChunks"`
	Text           string `json:"text"`
	TokenCount     int    `json:"tokenCount"`
	CharacterCount int    `json:"characterCount"`
	WordCount      int    `json:"wordCount"`
	Preview        string `json:"preview"`
	Sentences      int    `json:"sentences"`
	FitsInContext  bool   `json:"fitsInContext"`
	Oversized      bool   `json:"oversized,omitempty"`
	// OverlapChars is the length in runes of the text repeated from the
	// previous chunk, separator included.
	OverlapChars int `json:"overlapChars,omitempty"`
}

// ChunkingStats describes a chunking run.
type ChunkingStats struct {
	TotalChunks     int     `json:"totalChunks"`
	TotalTokens     int     `json:"totalTokens"`
	AvgTokens       float64 `json:"avgTokens"`
	MinTokens       int     `json:"minTokens"`
	MaxTokens       int     `json:"maxTokens"`
	OversizedChunks int     `json:"oversizedChunks"`
	OverlapTokens   int     `json:"overlapTokens"`
	Sections        int     `json:"sections"`
	Sentences       int     `json:"sentences"`
	Clauses         int     `json:"clauses"`
	Windows         int     `json:"windows"`
}

// FittingChunks returns the chunks flagged as fitting the context window.
func FittingChunks(chunks []Chunk) []Chunk {
	out := make([]Chunk, 0, len(chunks))
	for _, c := range chunks {
		if c.FitsInContext {
			out = append(out, c)
		}
	}
	return out
}
