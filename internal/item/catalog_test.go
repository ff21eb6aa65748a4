package item

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalogLookup(t *testing.T) {
	catalog := DefaultCatalog()
	if catalog.Len() == 0 {
		t.Fatalf("expected built-in definitions")
	}

	wood, ok := catalog.Lookup("wood")
	if !ok {
		t.Fatalf("expected wood in the default catalog")
	}
	if wood.MaxStack != 20 {
		t.Fatalf("expected wood max stack 20, got %d", wood.MaxStack)
	}

	again, _ := catalog.Lookup("wood")
	if wood != again {
		t.Fatalf("expected repeated lookups to return the same pointer")
	}

	if _, ok := catalog.Lookup("unobtainium"); ok {
		t.Fatalf("expected unknown id to miss")
	}
}

func TestCatalogDefinitionsSorted(t *testing.T) {
	catalog := DefaultCatalog()
	defs := catalog.Definitions()
	for i := 1; i < len(defs); i++ {
		if defs[i-1].ID >= defs[i].ID {
			t.Fatalf("expected definitions sorted by id, %q before %q", defs[i-1].ID, defs[i].ID)
		}
	}
}

func TestLoadFileMergesEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "definitions.json")
	doc := `[
		{"id": "driftwood", "max_stack": 30, "weight": 0.4, "tags": ["resource"]},
		{"id": "wood", "max_stack": 40, "weight": 0.5, "tags": ["resource"]}
	]`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	catalog := DefaultCatalog()
	if err := catalog.LoadFile(path); err != nil {
		t.Fatalf("load definitions: %v", err)
	}

	drift, ok := catalog.Lookup("driftwood")
	if !ok || drift.MaxStack != 30 {
		t.Fatalf("expected driftwood registered with max stack 30")
	}
	wood, _ := catalog.Lookup("wood")
	if wood.MaxStack != 40 {
		t.Fatalf("expected designer file to override built-in wood, got %d", wood.MaxStack)
	}
}

func TestLoadFileRejectsInvalidEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "definitions.json")
	doc := `[
		{"id": "driftwood", "max_stack": 30, "weight": 0.4},
		{"id": "broken", "max_stack": 0, "weight": 1}
	]`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	catalog := DefaultCatalog()
	if err := catalog.LoadFile(path); err == nil {
		t.Fatalf("expected invalid entry to abort the load")
	}
	if _, ok := catalog.Lookup("driftwood"); ok {
		t.Fatalf("expected aborted load to leave the catalog unchanged")
	}
}

func TestLoadFileRejectsDuplicateIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "definitions.json")
	doc := `[
		{"id": "driftwood", "max_stack": 30, "weight": 0.4},
		{"id": "driftwood", "max_stack": 10, "weight": 0.4}
	]`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if err := DefaultCatalog().LoadFile(path); err == nil {
		t.Fatalf("expected duplicate ids to abort the load")
	}
}

func TestLoadFileMissingPath(t *testing.T) {
	if err := DefaultCatalog().LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected missing file to error")
	}
}
