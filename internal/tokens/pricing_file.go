package tokens

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"docpipe/internal/domain"
)

type pricingFile struct {
	DefaultModel string                      `toml:"default_model"`
	Models       map[string]pricingFileModel `toml:"models"`
}

type pricingFileModel struct {
	Family          string   `toml:"family"`
	Encoding        *string  `toml:"encoding"`
	ContextLimit    int      `toml:"context_limit"`
	InputCostPer1K  *float64 `toml:"input_cost_per_1k"`
	OutputCostPer1K *float64 `toml:"output_cost_per_1k"`
	Aliases         []string `toml:"aliases"`
}

// LoadPricingFile reads a TOML pricing file and merges it over the built-in
// profiles. Fields left out of an entry keep their built-in values.
//
//	default_model = "gpt-4o"
//
//	[models."gpt-4o"]
//	input_cost_per_1k = 0.002
//
//	[models.house-llm]
//	context_limit = 32000
//	input_cost_per_1k = 0.0001
//	aliases = ["house"]
func LoadPricingFile(path string) (*PricingTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pricing file: %w", err)
	}
	return ParsePricing(data)
}

// ParsePricing is LoadPricingFile for in-memory TOML.
func ParsePricing(data []byte) (*PricingTable, error) {
	var file pricingFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPricing, err)
	}

	builtin := BuiltinProfiles()
	index := make(map[string]int, len(builtin))
	for i, p := range builtin {
		index[p.ID] = i
	}

	for rawID, entry := range file.Models {
		id := normalizeModelID(rawID)
		i, exists := index[id]
		if !exists {
			builtin = append(builtin, ModelProfile{ID: id, Family: "custom"})
			i = len(builtin) - 1
			index[id] = i
		}
		p := &builtin[i]
		if entry.Family != "" {
			p.Family = entry.Family
		}
		if entry.Encoding != nil {
			p.Encoding = *entry.Encoding
		}
		if entry.ContextLimit != 0 {
			p.ContextLimit = entry.ContextLimit
		}
		if entry.InputCostPer1K != nil {
			p.InputCostPer1K = *entry.InputCostPer1K
		}
		if entry.OutputCostPer1K != nil {
			p.OutputCostPer1K = *entry.OutputCostPer1K
		}
		if entry.Aliases != nil {
			p.Aliases = entry.Aliases
		}
	}

	defaultModel := file.DefaultModel
	if defaultModel == "" {
		defaultModel = DefaultModel
	}
	return NewPricingTable(defaultModel, builtin)
}
