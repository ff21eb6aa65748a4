package item

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Definition describes the static metadata for an item kind. Definitions are
// immutable once constructed and shared by pointer across every stack of the
// same kind; runtime systems never modify one.
type Definition struct {
	ID            string   `json:"id"`
	MaxStack      int      `json:"max_stack"`
	Weight        float64  `json:"weight"`
	HasDurability bool     `json:"has_durability"`
	DurabilityMax float64  `json:"durability_max,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Name          string   `json:"name,omitempty"`
	Description   string   `json:"description,omitempty"`
}

// DefinitionParams describes the configurable fields used when constructing a
// Definition.
type DefinitionParams struct {
	ID            string
	MaxStack      int
	Weight        float64
	HasDurability bool
	DurabilityMax float64
	Tags          []string
	Name          string
	Description   string
}

// NewDefinition validates and constructs a canonical Definition. Tags are
// deduplicated and sorted so marshalled output stays deterministic.
func NewDefinition(params DefinitionParams) (*Definition, error) {
	if params.ID == "" {
		return nil, fmt.Errorf("item id must be provided")
	}
	if params.MaxStack < 1 {
		return nil, fmt.Errorf("item %q: max stack must be >= 1, got %d", params.ID, params.MaxStack)
	}
	if params.Weight < 0 {
		return nil, fmt.Errorf("item %q: weight must be >= 0, got %g", params.ID, params.Weight)
	}
	if params.HasDurability && params.DurabilityMax <= 0 {
		return nil, fmt.Errorf("item %q: durability max must be > 0 when durability is tracked", params.ID)
	}
	if !params.HasDurability && params.DurabilityMax != 0 {
		return nil, fmt.Errorf("item %q: durability max set on an item without durability", params.ID)
	}

	tags := make([]string, 0, len(params.Tags))
	seen := make(map[string]struct{}, len(params.Tags))
	for _, tag := range params.Tags {
		if tag == "" {
			return nil, fmt.Errorf("item %q: empty tag", params.ID)
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	return &Definition{
		ID:            params.ID,
		MaxStack:      params.MaxStack,
		Weight:        params.Weight,
		HasDurability: params.HasDurability,
		DurabilityMax: params.DurabilityMax,
		Tags:          tags,
		Name:          params.Name,
		Description:   params.Description,
	}, nil
}

// HasTag reports whether the definition carries the given classification tag.
func (d *Definition) HasTag(tag string) bool {
	if d == nil {
		return false
	}
	idx := sort.SearchStrings(d.Tags, tag)
	return idx < len(d.Tags) && d.Tags[idx] == tag
}

// Stackable reports whether more than one unit may share a slot.
func (d *Definition) Stackable() bool {
	return d != nil && d.MaxStack > 1
}

// MarshalDefinitions returns the stable JSON representation for a slice of
// definitions, ordered by id regardless of input order.
func MarshalDefinitions(defs []*Definition) ([]byte, error) {
	stable := make([]*Definition, len(defs))
	copy(stable, defs)
	sort.Slice(stable, func(i, j int) bool {
		return stable[i].ID < stable[j].ID
	})
	return json.Marshal(stable)
}
