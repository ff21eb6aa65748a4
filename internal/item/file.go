package item

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefinitionDocument models a single designer-authored catalog entry as it
// appears on disk. The struct is exported so tooling (the schema generator
// under cmd/itemschema) can reflect over the configuration contract shared
// with designers.
type DefinitionDocument struct {
	ID            string   `json:"id" jsonschema:"title=Item id,pattern=^[a-z0-9_]+$,minLength=1,description=Stable identifier referenced by saves and gameplay systems"`
	MaxStack      int      `json:"max_stack" jsonschema:"title=Max stack,minimum=1,description=Units one slot may hold; 1 means non-stackable"`
	Weight        float64  `json:"weight" jsonschema:"title=Unit weight,minimum=0,description=Weight of a single unit"`
	HasDurability bool     `json:"has_durability,omitempty" jsonschema:"description=Whether instances track a depletable durability value"`
	DurabilityMax float64  `json:"durability_max,omitempty" jsonschema:"description=Durability of a fresh instance; required when has_durability is true"`
	Tags          []string `json:"tags,omitempty" jsonschema:"description=Free-form classification tags consumed by gameplay systems"`
	Name          string   `json:"name,omitempty" jsonschema:"description=Display name for placeholder UI"`
	Description   string   `json:"description,omitempty" jsonschema:"description=Flavor text for placeholder UI"`
}

// FileDefinitions represents the contents of config/items/definitions.json:
// the canonical array format authored by designers.
type FileDefinitions []DefinitionDocument

// DefaultPath returns the canonical catalog location relative to the module
// root.
func DefaultPath() string {
	return filepath.Join("config", "items", "definitions.json")
}

// LoadFile parses a definitions file and merges its entries into the catalog,
// replacing built-in definitions that share an id. Entries are validated
// through NewDefinition; the first invalid entry aborts the load and leaves
// the catalog unchanged.
func (c *Catalog) LoadFile(path string) error {
	if c == nil {
		return fmt.Errorf("nil catalog")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read item definitions: %w", err)
	}

	var docs FileDefinitions
	if err := json.Unmarshal(data, &docs); err != nil {
		return fmt.Errorf("parse item definitions %s: %w", path, err)
	}

	parsed := make([]*Definition, 0, len(docs))
	seen := make(map[string]struct{}, len(docs))
	for i, doc := range docs {
		def, err := NewDefinition(DefinitionParams{
			ID:            doc.ID,
			MaxStack:      doc.MaxStack,
			Weight:        doc.Weight,
			HasDurability: doc.HasDurability,
			DurabilityMax: doc.DurabilityMax,
			Tags:          doc.Tags,
			Name:          doc.Name,
			Description:   doc.Description,
		})
		if err != nil {
			return fmt.Errorf("item definitions %s entry %d: %w", path, i, err)
		}
		if _, dup := seen[def.ID]; dup {
			return fmt.Errorf("item definitions %s: duplicate id %q", path, def.ID)
		}
		seen[def.ID] = struct{}{}
		parsed = append(parsed, def)
	}

	c.mu.Lock()
	for _, def := range parsed {
		c.defs[def.ID] = def
	}
	c.mu.Unlock()
	return nil
}
