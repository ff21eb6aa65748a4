package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stranded/server/internal/inv"
	"stranded/server/internal/item"
)

// ErrNotFound reports that no inventory is saved for the requested owner.
var ErrNotFound = errors.New("inventory not found")

// InventoryRepository persists inventories as one row per occupied slot:
// (slot_index, definition_id, amount, durability). Loading reconstructs
// stacks through the catalog and rejects rows that violate the definition's
// limits instead of silently clamping them.
type InventoryRepository struct {
	db *sql.DB
}

func NewInventoryRepository(db *sql.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// Save writes the full state of the inventory for ownerID, replacing any
// previous save.
func (r *InventoryRepository) Save(ctx context.Context, ownerID string, inventory *inv.Inventory) error {
	if inventory == nil {
		return fmt.Errorf("nil inventory for owner %q", ownerID)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO inventories (owner_id, slot_count, max_weight, saved_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(owner_id) DO UPDATE SET slot_count = excluded.slot_count, max_weight = excluded.max_weight, saved_at = excluded.saved_at`,
		ownerID, inventory.SlotCount(), inventory.MaxWeight(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save inventory header: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM inventory_slots WHERE owner_id = ?`, ownerID); err != nil {
		return fmt.Errorf("clear previous slots: %w", err)
	}

	for i := 0; i < inventory.SlotCount(); i++ {
		stack := inventory.Slot(i)
		if stack == nil {
			continue
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO inventory_slots (owner_id, slot_index, definition_id, amount, durability) VALUES (?, ?, ?, ?, ?)`,
			ownerID, i, stack.Def().ID, stack.Amount(), stack.Durability(),
		)
		if err != nil {
			return fmt.Errorf("save slot %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Load rebuilds the inventory saved for ownerID. Saved rows referencing an
// unknown definition, an out-of-range slot, or an amount outside
// (0, MaxStack] fail the load.
func (r *InventoryRepository) Load(ctx context.Context, ownerID string, catalog *item.Catalog) (*inv.Inventory, error) {
	if catalog == nil {
		return nil, fmt.Errorf("nil catalog")
	}

	var slotCount int
	var maxWeight float64
	err := r.db.QueryRowContext(ctx,
		`SELECT slot_count, max_weight FROM inventories WHERE owner_id = ?`, ownerID,
	).Scan(&slotCount, &maxWeight)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("owner %q: %w", ownerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load inventory header: %w", err)
	}

	inventory := inv.NewInventory(slotCount, maxWeight)

	rows, err := r.db.QueryContext(ctx,
		`SELECT slot_index, definition_id, amount, durability FROM inventory_slots WHERE owner_id = ? ORDER BY slot_index ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("load inventory slots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var index, amount int
		var defID string
		var durability float64
		if err := rows.Scan(&index, &defID, &amount, &durability); err != nil {
			return nil, fmt.Errorf("scan slot row: %w", err)
		}

		def, ok := catalog.Lookup(defID)
		if !ok {
			return nil, fmt.Errorf("owner %q slot %d: unknown definition %q", ownerID, index, defID)
		}
		if index < 0 || index >= slotCount {
			return nil, fmt.Errorf("owner %q: slot index %d outside [0, %d)", ownerID, index, slotCount)
		}
		if amount <= 0 || amount > def.MaxStack {
			return nil, fmt.Errorf("owner %q slot %d: amount %d outside (0, %d]", ownerID, index, amount, def.MaxStack)
		}
		if durability >= 0 && durability > def.DurabilityMax {
			return nil, fmt.Errorf("owner %q slot %d: durability %g exceeds max %g", ownerID, index, durability, def.DurabilityMax)
		}
		if !inventory.RestoreSlot(index, def, amount, durability) {
			return nil, fmt.Errorf("owner %q: duplicate slot index %d", ownerID, index)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slot rows: %w", err)
	}

	return inventory, nil
}

// Delete removes the saved inventory for ownerID. Deleting an absent save is
// not an error.
func (r *InventoryRepository) Delete(ctx context.Context, ownerID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM inventory_slots WHERE owner_id = ?`, ownerID); err != nil {
		return fmt.Errorf("delete slots: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM inventories WHERE owner_id = ?`, ownerID); err != nil {
		return fmt.Errorf("delete header: %w", err)
	}
	return tx.Commit()
}
