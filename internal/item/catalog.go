package item

import (
	"sort"
	"sync"
)

// Catalog maps item ids to their shared definitions. Lookups return the same
// pointer for a given id so stacks of one kind always reference one
// Definition instance.
type Catalog struct {
	mu   sync.RWMutex
	defs map[string]*Definition
}

// NewCatalog builds an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{defs: make(map[string]*Definition)}
}

// DefaultCatalog returns a catalog seeded with the built-in survival item set.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	for _, def := range builtinDefinitions() {
		c.defs[def.ID] = def
	}
	return c
}

// Register adds or replaces a definition. Nil definitions are ignored.
func (c *Catalog) Register(def *Definition) {
	if c == nil || def == nil || def.ID == "" {
		return
	}
	c.mu.Lock()
	c.defs[def.ID] = def
	c.mu.Unlock()
}

// Lookup resolves an item id to its definition.
func (c *Catalog) Lookup(id string) (*Definition, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	def, ok := c.defs[id]
	c.mu.RUnlock()
	return def, ok
}

// Definitions returns every registered definition sorted by id.
func (c *Catalog) Definitions() []*Definition {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defs := make([]*Definition, 0, len(c.defs))
	for _, def := range c.defs {
		defs = append(defs, def)
	}
	c.mu.RUnlock()
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}

// Len reports the number of registered definitions.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.defs)
}

func builtinDefinitions() []*Definition {
	return []*Definition{
		mustDefine(DefinitionParams{
			ID:          "wood",
			MaxStack:    20,
			Weight:      0.5,
			Tags:        []string{"resource"},
			Name:        "Wood",
			Description: "A rough log chopped from a coastal pine.",
		}),
		mustDefine(DefinitionParams{
			ID:          "stone",
			MaxStack:    20,
			Weight:      1.0,
			Tags:        []string{"resource"},
			Name:        "Stone",
			Description: "A fist-sized chunk of grey rock.",
		}),
		mustDefine(DefinitionParams{
			ID:          "fiber",
			MaxStack:    50,
			Weight:      0.1,
			Tags:        []string{"resource"},
			Name:        "Plant Fiber",
			Description: "Stringy fibers stripped from beach grass.",
		}),
		mustDefine(DefinitionParams{
			ID:          "berries",
			MaxStack:    10,
			Weight:      0.2,
			Tags:        []string{"food"},
			Name:        "Berries",
			Description: "A handful of tart red berries.",
		}),
		mustDefine(DefinitionParams{
			ID:            "stone_axe",
			MaxStack:      1,
			Weight:        2.5,
			HasDurability: true,
			DurabilityMax: 100,
			Tags:          []string{"tool", "chopping"},
			Name:          "Stone Axe",
			Description:   "A sharpened stone lashed to a wooden haft.",
		}),
		mustDefine(DefinitionParams{
			ID:            "stone_pickaxe",
			MaxStack:      1,
			Weight:        3.0,
			HasDurability: true,
			DurabilityMax: 120,
			Tags:          []string{"tool", "mining"},
			Name:          "Stone Pickaxe",
			Description:   "Heavy, crude, and good enough to crack rock.",
		}),
		mustDefine(DefinitionParams{
			ID:          "rope",
			MaxStack:    5,
			Weight:      0.8,
			Tags:        []string{"crafted"},
			Name:        "Rope",
			Description: "Braided fiber cord.",
		}),
	}
}

func mustDefine(params DefinitionParams) *Definition {
	def, err := NewDefinition(params)
	if err != nil {
		panic(err)
	}
	return def
}
