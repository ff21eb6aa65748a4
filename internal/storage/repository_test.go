package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"stranded/server/internal/inv"
	"stranded/server/internal/item"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitSQLite(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("init sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := testDB(t)
	repo := NewInventoryRepository(db)
	catalog := item.DefaultCatalog()
	ctx := context.Background()

	wood, _ := catalog.Lookup("wood")
	axe, _ := catalog.Lookup("stone_axe")

	original := inv.NewInventory(6, 30)
	original.AddItem(wood, 25, inv.NoDurability)
	original.AddItem(axe, 1, 64)
	original.MoveSlot(1, 4)

	if err := repo.Save(ctx, "player-1", original); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := repo.Load(ctx, "player-1", catalog)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.SlotCount() != 6 {
		t.Fatalf("expected slot count 6, got %d", loaded.SlotCount())
	}
	if loaded.MaxWeight() != 30 {
		t.Fatalf("expected max weight 30, got %g", loaded.MaxWeight())
	}
	for i := 0; i < original.SlotCount(); i++ {
		want := original.Slot(i)
		got := loaded.Slot(i)
		if (want == nil) != (got == nil) {
			t.Fatalf("slot %d occupancy mismatch", i)
		}
		if want == nil {
			continue
		}
		if want.Def().ID != got.Def().ID || want.Amount() != got.Amount() || want.Durability() != got.Durability() {
			t.Fatalf("slot %d mismatch: want %s/%d/%g, got %s/%d/%g",
				i, want.Def().ID, want.Amount(), want.Durability(),
				got.Def().ID, got.Amount(), got.Durability())
		}
	}
}

func TestSaveReplacesPreviousState(t *testing.T) {
	db := testDB(t)
	repo := NewInventoryRepository(db)
	catalog := item.DefaultCatalog()
	ctx := context.Background()

	wood, _ := catalog.Lookup("wood")
	inventory := inv.NewInventory(4, 0)
	inventory.AddItem(wood, 25, inv.NoDurability)
	if err := repo.Save(ctx, "player-1", inventory); err != nil {
		t.Fatalf("first save: %v", err)
	}

	inventory.RemoveItem("wood", 20)
	if err := repo.Save(ctx, "player-1", inventory); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, err := repo.Load(ctx, "player-1", catalog)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := loaded.CountItem("wood"); got != 5 {
		t.Fatalf("expected 5 wood after resave, got %d", got)
	}
}

func TestLoadMissingOwner(t *testing.T) {
	db := testDB(t)
	repo := NewInventoryRepository(db)

	_, err := repo.Load(context.Background(), "ghost", item.DefaultCatalog())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadRejectsUnknownDefinition(t *testing.T) {
	db := testDB(t)
	repo := NewInventoryRepository(db)
	ctx := context.Background()

	seedHeader(t, db, "player-1", 4)
	seedSlot(t, db, "player-1", 0, "unobtainium", 3, -1)

	if _, err := repo.Load(ctx, "player-1", item.DefaultCatalog()); err == nil {
		t.Fatalf("expected unknown definition to fail the load")
	}
}

func TestLoadRejectsAmountAboveMaxStack(t *testing.T) {
	db := testDB(t)
	repo := NewInventoryRepository(db)
	ctx := context.Background()

	// wood has max stack 20; a saved amount of 50 is corrupt data rather
	// than something to clamp silently.
	seedHeader(t, db, "player-1", 4)
	seedSlot(t, db, "player-1", 0, "wood", 50, -1)

	if _, err := repo.Load(ctx, "player-1", item.DefaultCatalog()); err == nil {
		t.Fatalf("expected over-stack amount to fail the load")
	}
}

func TestLoadRejectsOutOfRangeSlotIndex(t *testing.T) {
	db := testDB(t)
	repo := NewInventoryRepository(db)
	ctx := context.Background()

	seedHeader(t, db, "player-1", 2)
	seedSlot(t, db, "player-1", 5, "wood", 3, -1)

	if _, err := repo.Load(ctx, "player-1", item.DefaultCatalog()); err == nil {
		t.Fatalf("expected out-of-range slot index to fail the load")
	}
}

func TestDeleteRemovesSave(t *testing.T) {
	db := testDB(t)
	repo := NewInventoryRepository(db)
	catalog := item.DefaultCatalog()
	ctx := context.Background()

	wood, _ := catalog.Lookup("wood")
	inventory := inv.NewInventory(2, 0)
	inventory.AddItem(wood, 5, inv.NoDurability)
	if err := repo.Save(ctx, "player-1", inventory); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := repo.Delete(ctx, "player-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Load(ctx, "player-1", catalog); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, "player-1"); err != nil {
		t.Fatalf("expected deleting an absent save to succeed, got %v", err)
	}
}

func seedHeader(t *testing.T, db *sql.DB, ownerID string, slotCount int) {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO inventories (owner_id, slot_count, max_weight, saved_at) VALUES (?, ?, 0, datetime('now'))`,
		ownerID, slotCount,
	)
	if err != nil {
		t.Fatalf("seed header: %v", err)
	}
}

func seedSlot(t *testing.T, db *sql.DB, ownerID string, index int, defID string, amount int, durability float64) {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO inventory_slots (owner_id, slot_index, definition_id, amount, durability) VALUES (?, ?, ?, ?, ?)`,
		ownerID, index, defID, amount, durability,
	)
	if err != nil {
		t.Fatalf("seed slot: %v", err)
	}
}
