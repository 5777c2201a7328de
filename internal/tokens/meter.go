package tokens

import (
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"docpipe/internal/domain"
)

// DefaultBufferRatio is the share of the context window kept free when sizing chunks.
const DefaultBufferRatio = 0.2

// Meter counts tokens and prices text against model profiles. It is safe
// for concurrent use; the pricing table is swapped atomically.
type Meter struct {
	table    atomic.Pointer[PricingTable]
	encoders *encoderCache
	logger   domain.Logger

	warnOnce sync.Map
}

// NewMeter creates a Meter. A nil table selects the built-in profiles.
func NewMeter(table *PricingTable, logger domain.Logger) *Meter {
	if table == nil {
		table = BuiltinPricingTable()
	}
	m := &Meter{
		encoders: newEncoderCache(),
		logger:   logger,
	}
	m.table.Store(table)
	return m
}

// Pricing returns the table currently in effect.
func (m *Meter) Pricing() *PricingTable {
	return m.table.Load()
}

// UpdatePricing replaces the whole pricing table in one step.
func (m *Meter) UpdatePricing(table *PricingTable) error {
	if table == nil || len(table.profiles) == 0 {
		return domain.ErrInvalidPricing
	}
	m.table.Store(table)
	m.logger.Info("Pricing table updated", "models", len(table.profiles), "default_model", table.defaultModel)
	return nil
}

// Resolve returns the canonical profile for modelID.
func (m *Meter) Resolve(modelID string) ModelProfile {
	return m.Pricing().Resolve(modelID)
}

// CountTokens never fails: without an exact tokenizer it estimates.
func (m *Meter) CountTokens(text, modelID string) int {
	n, _ := m.count(text, m.Resolve(modelID))
	return n
}

func (m *Meter) count(text string, p ModelProfile) (n int, estimated bool) {
	if text == "" {
		return 0, !p.Exact()
	}
	if !p.Exact() {
		return EstimateTokens(text), true
	}

	enc, err := m.encoders.get(p.Encoding)
	if err == nil {
		n, err = encode(enc, text)
	}
	if err != nil {
		if _, seen := m.warnOnce.LoadOrStore(p.Encoding, struct{}{}); !seen {
			m.logger.Warn("Tokenizer unavailable; estimating token counts", "encoding", p.Encoding, "error", err)
		}
		return EstimateTokens(text), true
	}
	return n, false
}

// ContextLimit returns the model's context window in tokens.
func (m *Meter) ContextLimit(modelID string) int {
	return m.Resolve(modelID).ContextLimit
}

// EstimateCost prices tokens as input at the model's rate, rounded to six decimals.
func (m *Meter) EstimateCost(tokens int, modelID string) float64 {
	return costOf(tokens, m.Resolve(modelID))
}

func costOf(tokens int, p ModelProfile) float64 {
	return roundTo(float64(tokens)/1000*p.InputCostPer1K, 6)
}

// RecommendedChunkSize is floor(contextLimit * (1 - bufferRatio)). Ratios
// outside [0, 1) fall back to DefaultBufferRatio.
func (m *Meter) RecommendedChunkSize(modelID string, bufferRatio float64) int {
	return recommendedSize(m.Resolve(modelID), bufferRatio)
}

func recommendedSize(p ModelProfile, bufferRatio float64) int {
	if bufferRatio < 0 || bufferRatio >= 1 || math.IsNaN(bufferRatio) {
		bufferRatio = DefaultBufferRatio
	}
	size := int(math.Floor(float64(p.ContextLimit) * (1 - bufferRatio)))
	if size < 1 {
		size = 1
	}
	return size
}

// Analyze measures text against modelID using a single pricing snapshot.
func (m *Meter) Analyze(text, modelID string) domain.TokenProfile {
	p := m.Resolve(modelID)
	tokens, estimated := m.count(text, p)
	recommended := recommendedSize(p, DefaultBufferRatio)

	profile := domain.TokenProfile{
		ModelID:              strings.TrimSpace(modelID),
		CanonicalModel:       p.ID,
		TotalTokens:          tokens,
		ContextLimit:         p.ContextLimit,
		EstimatedCost:        costOf(tokens, p),
		ExceedsContext:       tokens > p.ContextLimit,
		RecommendedChunkSize: recommended,
		CharacterCount:       utf8.RuneCountInString(text),
		WordCount:            len(strings.Fields(text)),
		Estimated:            estimated,
	}
	if p.ContextLimit > 0 {
		profile.UtilizationPercent = roundTo(float64(tokens)/float64(p.ContextLimit)*100, 2)
	}
	if tokens > 0 {
		profile.ChunksNeeded = int(math.Ceil(float64(tokens) / float64(recommended)))
	}
	return profile
}

// Models lists the public view of every profile, sorted by id.
func (m *Meter) Models() []domain.ModelInfo {
	profiles := m.Pricing().Profiles()
	out := make([]domain.ModelInfo, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, domain.ModelInfo{
			ID:              p.ID,
			Family:          p.Family,
			Encoding:        p.Encoding,
			ContextLimit:    p.ContextLimit,
			InputCostPer1K:  p.InputCostPer1K,
			OutputCostPer1K: p.OutputCostPer1K,
			Aliases:         p.Aliases,
		})
	}
	return out
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
