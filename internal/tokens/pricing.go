package tokens

import (
	"fmt"
	"sort"
	"strings"

	"docpipe/internal/domain"
)

// PricingTable maps model ids to profiles. It is never modified after
// NewPricingTable returns; replace it wholesale via Meter.UpdatePricing.
type PricingTable struct {
	defaultModel string
	profiles     map[string]ModelProfile
	aliases      map[string]string
	prefixes     []string
}

// NewPricingTable validates profiles and indexes them. defaultModel must be
// one of the profile ids.
func NewPricingTable(defaultModel string, profiles []ModelProfile) (*PricingTable, error) {
	if len(profiles) == 0 {
		return nil, fmt.Errorf("%w: no model profiles", domain.ErrInvalidPricing)
	}

	t := &PricingTable{
		defaultModel: normalizeModelID(defaultModel),
		profiles:     make(map[string]ModelProfile, len(profiles)),
		aliases:      make(map[string]string),
	}

	for _, p := range profiles {
		p.ID = normalizeModelID(p.ID)
		if err := validateProfile(p); err != nil {
			return nil, err
		}
		if _, dup := t.profiles[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate model %q", domain.ErrInvalidPricing, p.ID)
		}
		aliases := make([]string, 0, len(p.Aliases))
		for _, a := range p.Aliases {
			if a = normalizeModelID(a); a != "" && a != p.ID {
				aliases = append(aliases, a)
			}
		}
		p.Aliases = aliases
		t.profiles[p.ID] = p
	}

	for id, p := range t.profiles {
		for _, a := range p.Aliases {
			if _, clash := t.profiles[a]; clash {
				return nil, fmt.Errorf("%w: alias %q of %q shadows a model id", domain.ErrInvalidPricing, a, id)
			}
			if owner, taken := t.aliases[a]; taken && owner != id {
				return nil, fmt.Errorf("%w: alias %q claimed by %q and %q", domain.ErrInvalidPricing, a, owner, id)
			}
			t.aliases[a] = id
		}
	}

	if _, ok := t.profiles[t.defaultModel]; !ok {
		return nil, fmt.Errorf("%w: default model %q has no profile", domain.ErrInvalidPricing, defaultModel)
	}

	for id := range t.profiles {
		t.prefixes = append(t.prefixes, id)
	}
	for a := range t.aliases {
		t.prefixes = append(t.prefixes, a)
	}
	// Longest first so dated snapshots resolve to the most specific family.
	sort.Slice(t.prefixes, func(i, j int) bool {
		if len(t.prefixes[i]) != len(t.prefixes[j]) {
			return len(t.prefixes[i]) > len(t.prefixes[j])
		}
		return t.prefixes[i] < t.prefixes[j]
	})
	return t, nil
}

// BuiltinPricingTable returns the shipped table.
func BuiltinPricingTable() *PricingTable {
	t, err := NewPricingTable(DefaultModel, BuiltinProfiles())
	if err != nil {
		panic(fmt.Sprintf("builtin pricing table is invalid: %v", err))
	}
	return t
}

func validateProfile(p ModelProfile) error {
	switch {
	case p.ID == "":
		return fmt.Errorf("%w: model id is required", domain.ErrInvalidPricing)
	case p.ContextLimit <= 0:
		return fmt.Errorf("%w: %s: context limit must be positive", domain.ErrInvalidPricing, p.ID)
	case p.InputCostPer1K < 0 || p.OutputCostPer1K < 0:
		return fmt.Errorf("%w: %s: costs must not be negative", domain.ErrInvalidPricing, p.ID)
	}
	return nil
}

// normalizeModelID lowercases and trims an id and drops a provider prefix
// such as "openai/".
func normalizeModelID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		id = id[i+1:]
	}
	return id
}

// Resolve maps any model id to its canonical profile: alias, exact id,
// longest known prefix, then the default profile.
func (t *PricingTable) Resolve(modelID string) ModelProfile {
	p, _ := t.lookup(modelID)
	return p
}

// Known reports whether modelID resolves without falling back to the default.
func (t *PricingTable) Known(modelID string) bool {
	_, ok := t.lookup(modelID)
	return ok
}

func (t *PricingTable) lookup(modelID string) (ModelProfile, bool) {
	id := normalizeModelID(modelID)
	if id != "" {
		if canonical, ok := t.aliases[id]; ok {
			return t.profiles[canonical], true
		}
		if p, ok := t.profiles[id]; ok {
			return p, true
		}
		for _, prefix := range t.prefixes {
			if strings.HasPrefix(id, prefix) {
				if canonical, ok := t.aliases[prefix]; ok {
					return t.profiles[canonical], true
				}
				return t.profiles[prefix], true
			}
		}
	}
	return t.profiles[t.defaultModel], false
}

// DefaultModel returns the fallback model id.
func (t *PricingTable) DefaultModel() string {
	return t.defaultModel
}

// Profiles returns every profile sorted by id.
func (t *PricingTable) Profiles() []ModelProfile {
	out := make([]ModelProfile, 0, len(t.profiles))
	for _, p := range t.profiles {
		p.Aliases = append([]string(nil), p.Aliases...)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
