package domain

// TokenProfile summarizes how a text measures up against one model.
type TokenProfile struct {
	ModelID              string  `json:"modelId"`
	CanonicalModel       string  `json:"canonicalModel"`
	TotalTokens          int     `json:"totalTokens"`
	ContextLimit         int     `json:"contextLimit"`
	EstimatedCost        float64 `json:"estimatedCost"`
	ExceedsContext       bool    `json:"exceedsContext"`
	UtilizationPercent   float64 `json:"utilizationPercent"`
	ChunksNeeded         int     `json:"chunksNeeded"`
	RecommendedChunkSize int     `json:"recommendedChunkSize"`
	CharacterCount       int     `json:"characterCount"`
	WordCount            int     `json:"wordCount"`
	Estimated            bool    `json:"estimated"`
}

// ModelInfo is the public view of a model profile.
type ModelInfo struct {
	ID              string   `json:"id"`
	Family          string   `json:"family"`
	Encoding        string   `json:"encoding"`
	ContextLimit    int      `json:"contextLimit"`
	InputCostPer1K  float64  `json:"inputCostPer1k"`
	OutputCostPer1K float64  `json:"outputCostPer1k"`
	Aliases         []string `json:"aliases,omitempty"`
}
