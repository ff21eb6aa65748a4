package inv

import "stranded/server/internal/item"

// Inventory is a fixed-size slot container with stacking, weight accounting,
// and change notification. Slot indices are stable identifiers; the model
// never compacts. All mutation goes through the methods below — every one is
// a total function over malformed input (bad indices, nil definitions,
// non-positive counts return a neutral result instead of failing).
//
// The model is not safe for concurrent use; the owning entity must confine
// calls to a single goroutine or serialize them itself.
type Inventory struct {
	slots     []*Stack
	maxWeight float64
	observers []Observer
}

// NewInventory builds an inventory with slotCount empty slots. maxWeight is
// an advisory cap: 0 means unlimited, and a positive value only drives
// IsOverWeight, never admission control.
func NewInventory(slotCount int, maxWeight float64) *Inventory {
	if slotCount < 0 {
		slotCount = 0
	}
	if maxWeight < 0 {
		maxWeight = 0
	}
	return &Inventory{
		slots:     make([]*Stack, slotCount),
		maxWeight: maxWeight,
	}
}

// SlotCount returns the fixed number of slots.
func (inv *Inventory) SlotCount() int {
	if inv == nil {
		return 0
	}
	return len(inv.slots)
}

// MaxWeight returns the advisory weight cap (0 = unlimited).
func (inv *Inventory) MaxWeight() float64 {
	if inv == nil {
		return 0
	}
	return inv.maxWeight
}

// Slot returns the stack at index, or nil when the index is out of range or
// the slot is logically empty. The returned stack is owned by the model;
// callers read it and mutate only through Inventory methods.
func (inv *Inventory) Slot(index int) *Stack {
	if inv == nil || index < 0 || index >= len(inv.slots) {
		return nil
	}
	stack := inv.slots[index]
	if stack.IsEmpty() {
		return nil
	}
	return stack
}

// AddItem places amount units of def, topping off existing stacks first and
// then filling empty slots, and returns the overflow that found no home.
// Durability-bearing items (durability >= 0) skip the stacking phase and
// always claim fresh slots. A nil def or non-positive amount is rejected by
// returning the full request.
func (inv *Inventory) AddItem(def *item.Definition, amount int, durability float64) int {
	if inv == nil || def == nil || amount <= 0 {
		return amount
	}

	remaining := amount
	touched := make([]int, 0, 2)

	// Stacking phase: only stackable, durability-less items top off
	// existing stacks of the same definition.
	if def.MaxStack > 1 && durability < 0 {
		for i, stack := range inv.slots {
			if remaining == 0 {
				break
			}
			if stack.IsEmpty() || stack.Def() != def || stack.HasDurability() {
				continue
			}
			before := remaining
			remaining = stack.Add(remaining)
			if remaining != before {
				touched = append(touched, i)
			}
		}
	}

	// New-slot phase: claim the lowest empty slot until everything is
	// placed or the inventory runs out of room.
	for remaining > 0 {
		idx := inv.firstEmptySlot()
		if idx < 0 {
			break
		}
		size := remaining
		if size > def.MaxStack {
			size = def.MaxStack
		}
		inv.slots[idx] = NewStack(def, size, durability)
		remaining -= size
		touched = append(touched, idx)
	}

	if len(touched) > 0 {
		for _, i := range touched {
			inv.notifySlot(i)
		}
		inv.notifyChanged()
	}
	return remaining
}

// RemoveItem takes up to amount units matching id out of the inventory,
// scanning slots in index order, and returns the amount actually removed.
func (inv *Inventory) RemoveItem(id string, amount int) int {
	if inv == nil || amount <= 0 {
		return 0
	}

	removed := 0
	touched := make([]int, 0, 2)
	for i, stack := range inv.slots {
		if removed == amount {
			break
		}
		if stack.IsEmpty() || stack.Def().ID != id {
			continue
		}
		taken := stack.Remove(amount - removed)
		if taken == 0 {
			continue
		}
		removed += taken
		if stack.IsEmpty() {
			inv.slots[i] = nil
		}
		touched = append(touched, i)
	}

	if removed > 0 {
		for _, i := range touched {
			inv.notifySlot(i)
		}
		inv.notifyChanged()
	}
	return removed
}

// RemoveSlot empties the slot at index and returns the detached stack, which
// the caller now owns exclusively (e.g. to spawn a ground item). Returns nil
// when the slot is empty or the index invalid.
func (inv *Inventory) RemoveSlot(index int) *Stack {
	if inv == nil || index < 0 || index >= len(inv.slots) {
		return nil
	}
	stack := inv.slots[index]
	if stack.IsEmpty() {
		inv.slots[index] = nil
		return nil
	}
	inv.slots[index] = nil
	inv.notifySlot(index)
	inv.notifyChanged()
	return stack
}

// RemoveFromSlot detaches up to amount units from the slot at index. When
// amount covers the whole stack this behaves as RemoveSlot; otherwise the
// remainder stays in place and the split-off stack is returned.
func (inv *Inventory) RemoveFromSlot(index, amount int) *Stack {
	if inv == nil || index < 0 || index >= len(inv.slots) || amount <= 0 {
		return nil
	}
	stack := inv.slots[index]
	if stack.IsEmpty() {
		return nil
	}
	if amount >= stack.Amount() {
		return inv.RemoveSlot(index)
	}
	detached := stack.Split(amount)
	if detached == nil {
		return nil
	}
	inv.notifySlot(index)
	inv.notifyChanged()
	return detached
}

// MoveSlot relocates, merges, or swaps the stacks at from and to. Merging
// into a compatible target moves as much as fits; any remainder stays in the
// source slot. Incompatible targets swap. Invalid indices, equal indices, or
// an empty source are no-ops with no notification.
func (inv *Inventory) MoveSlot(from, to int) {
	if inv == nil || from == to {
		return
	}
	if from < 0 || from >= len(inv.slots) || to < 0 || to >= len(inv.slots) {
		return
	}
	source := inv.slots[from]
	if source.IsEmpty() {
		return
	}
	target := inv.slots[to]

	switch {
	case target.IsEmpty():
		inv.slots[to] = source
		inv.slots[from] = nil
	case target.CanMergeWith(source):
		moved := source.Amount() - target.Add(source.Amount())
		source.Remove(moved)
		if source.IsEmpty() {
			inv.slots[from] = nil
		}
	default:
		inv.slots[from], inv.slots[to] = target, source
	}

	inv.notifySlot(from)
	inv.notifySlot(to)
	inv.notifyChanged()
}

// SplitSlot carves splitAmount units off the stack at index into the lowest
// empty slot. Returns false with no mutation when the slot is empty, the
// amount is out of the valid (0, amount) range, or no empty slot exists.
func (inv *Inventory) SplitSlot(index, splitAmount int) bool {
	if inv == nil || index < 0 || index >= len(inv.slots) {
		return false
	}
	stack := inv.slots[index]
	if stack.IsEmpty() || splitAmount <= 0 || splitAmount >= stack.Amount() {
		return false
	}
	empty := inv.firstEmptySlot()
	if empty < 0 {
		return false
	}
	detached := stack.Split(splitAmount)
	if detached == nil {
		return false
	}
	inv.slots[empty] = detached
	inv.notifySlot(index)
	inv.notifySlot(empty)
	inv.notifyChanged()
	return true
}

// CountItem sums the units matching id across every slot.
func (inv *Inventory) CountItem(id string) int {
	if inv == nil {
		return 0
	}
	total := 0
	for _, stack := range inv.slots {
		if !stack.IsEmpty() && stack.Def().ID == id {
			total += stack.Amount()
		}
	}
	return total
}

// HasItem reports whether at least amount units matching id are held.
func (inv *Inventory) HasItem(id string, amount int) bool {
	if amount < 1 {
		amount = 1
	}
	return inv.CountItem(id) >= amount
}

// CanAddItem reports whether AddItem for a durability-less request of amount
// units would place everything. It mirrors both placement phases without
// mutating.
func (inv *Inventory) CanAddItem(def *item.Definition, amount int) bool {
	if inv == nil || def == nil {
		return false
	}
	if amount < 1 {
		amount = 1
	}
	capacity := 0
	for _, stack := range inv.slots {
		if stack.IsEmpty() {
			capacity += def.MaxStack
			continue
		}
		if def.MaxStack > 1 && stack.Def() == def && !stack.HasDurability() {
			capacity += stack.FreeSpace()
		}
		if capacity >= amount {
			return true
		}
	}
	return capacity >= amount
}

// Cleanup normalizes any logically empty stack to a nil slot. Idempotent and
// silent.
func (inv *Inventory) Cleanup() {
	if inv == nil {
		return
	}
	for i, stack := range inv.slots {
		if stack != nil && stack.IsEmpty() {
			inv.slots[i] = nil
		}
	}
}

// Clear empties every slot and fires a single aggregate notification.
func (inv *Inventory) Clear() {
	if inv == nil {
		return
	}
	for i := range inv.slots {
		inv.slots[i] = nil
	}
	inv.notifyChanged()
}

// CurrentWeight sums the weight of every non-empty slot.
func (inv *Inventory) CurrentWeight() float64 {
	if inv == nil {
		return 0
	}
	total := 0.0
	for _, stack := range inv.slots {
		if !stack.IsEmpty() {
			total += stack.TotalWeight()
		}
	}
	return total
}

// IsOverWeight reports whether a configured weight cap is exceeded. The cap
// never blocks AddItem; this flag is for the caller to surface.
func (inv *Inventory) IsOverWeight() bool {
	if inv == nil || inv.maxWeight <= 0 {
		return false
	}
	return inv.CurrentWeight() > inv.maxWeight
}

// UsedSlots counts the non-empty slots.
func (inv *Inventory) UsedSlots() int {
	if inv == nil {
		return 0
	}
	used := 0
	for _, stack := range inv.slots {
		if !stack.IsEmpty() {
			used++
		}
	}
	return used
}

// RestoreSlot places a stack rebuilt from persisted state directly into an
// empty slot. Callers validate amounts against the definition beforehand;
// no notifications fire. Returns false for an invalid index, nil definition,
// non-positive amount, or an occupied slot.
func (inv *Inventory) RestoreSlot(index int, def *item.Definition, amount int, durability float64) bool {
	if inv == nil || def == nil || index < 0 || index >= len(inv.slots) || amount <= 0 {
		return false
	}
	if !inv.slots[index].IsEmpty() {
		return false
	}
	inv.slots[index] = NewStack(def, amount, durability)
	return true
}

func (inv *Inventory) firstEmptySlot() int {
	for i, stack := range inv.slots {
		if stack.IsEmpty() {
			return i
		}
	}
	return -1
}
