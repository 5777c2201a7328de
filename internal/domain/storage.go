package domain

import (
	"encoding/json"
	"time"
)

// StoredRecord is the envelope written to the durable store.
type StoredRecord struct {
	CacheKey  string          `json:"cache_key"`
	FileHash  string          `json:"file_hash"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	ExpiresAt time.Time       `json:"expires_at"`
	CreatedAt time.Time       `json:"created_at"`
}

const (
	RecordKindResult     = "result"
	RecordKindExtraction = "extraction"
)
