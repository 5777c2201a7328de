package domain

import "time"

const (
	ApproachDirect  = "direct"
	ApproachChunked = "chunked"
)

// ProcessingInfo carries run diagnostics.
type ProcessingInfo struct {
	RecommendedApproach string        `json:"recommendedApproach"`
	ChunkCount          int           `json:"chunkCount"`
	ProcessingTimeMs    int64         `json:"processingTimeMs"`
	ChunkingStats       ChunkingStats `json:"chunkingStats"`
}

// ProcessingResult is the full outcome of one pipeline run. It is also the
// record persisted under the result key.
type ProcessingResult struct {
	Success           bool             `json:"success"`
	RecordID          string           `json:"recordId"`
	OriginalFileName  string           `json:"originalFileName"`
	FileSize          int64            `json:"fileSize"`
	MimeType          string           `json:"mimeType"`
	FileHash          string           `json:"fileHash"`
	Model             string           `json:"model"`
	MaxTokensPerChunk int              `json:"maxTokensPerChunk"`
	ExtractedContent  ExtractedContent `json:"extractedContent"`
	TokenAnalysis     TokenProfile     `json:"tokenAnalysis"`
	Chunks            []Chunk          `json:"chunks"`
	OptimalChunks     []Chunk          `json:"optimalChunks"`
	Processing        ProcessingInfo   `json:"processing"`
	Cached            bool             `json:"cached"`
	ExpiresAt         time.Time        `json:"expiresAt"`
}

// ReoptimizeResult is the outcome of re-chunking cached text for another model.
type ReoptimizeResult struct {
	Success           bool          `json:"success"`
	FileHash          string        `json:"fileHash"`
	TargetModel       string        `json:"targetModel"`
	MaxContextTokens  int           `json:"maxContextTokens"`
	TokenAnalysis     TokenProfile  `json:"tokenAnalysis"`
	Chunks            []Chunk       `json:"chunks"`
	TotalChunks       int           `json:"totalChunks"`
	ChunkingStats     ChunkingStats `json:"chunkingStats"`
	ProcessingTimeMs  int64         `json:"processingTimeMs"`
	ExtractionSkipped bool          `json:"extractionSkipped"`
}
