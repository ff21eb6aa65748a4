package inv

import "stranded/server/internal/item"

// NoDurability marks a stack that does not track durability. Stacks carrying
// a durability value (>= 0) are tracked individually and never merge.
const NoDurability float64 = -1

// Stack is a mutable quantity of one item kind occupying a single inventory
// slot. A stack holds the shared definition pointer from the catalog, an
// amount within [0, MaxStack], and an optional durability value.
type Stack struct {
	def        *item.Definition
	amount     int
	durability float64
}

// NewStack builds a stack for def sized to amount, clamped to
// [0, def.MaxStack]. A negative durability is normalized to NoDurability;
// a non-negative one is clamped to def.DurabilityMax.
func NewStack(def *item.Definition, amount int, durability float64) *Stack {
	if def == nil {
		return nil
	}
	if amount < 0 {
		amount = 0
	}
	if amount > def.MaxStack {
		amount = def.MaxStack
	}
	if durability < 0 {
		durability = NoDurability
	} else if durability > def.DurabilityMax {
		durability = def.DurabilityMax
	}
	return &Stack{def: def, amount: amount, durability: durability}
}

// Def returns the shared definition for this stack.
func (s *Stack) Def() *item.Definition {
	if s == nil {
		return nil
	}
	return s.def
}

// Amount returns the number of units in the stack.
func (s *Stack) Amount() int {
	if s == nil {
		return 0
	}
	return s.amount
}

// Durability returns the current durability, or NoDurability when the stack
// does not track one.
func (s *Stack) Durability() float64 {
	if s == nil {
		return NoDurability
	}
	return s.durability
}

// HasDurability reports whether the stack tracks a durability value.
func (s *Stack) HasDurability() bool {
	return s != nil && s.durability >= 0
}

// IsEmpty reports whether the stack holds no units.
func (s *Stack) IsEmpty() bool {
	return s == nil || s.amount <= 0
}

// IsFull reports whether the stack is at its definition's stack limit.
func (s *Stack) IsFull() bool {
	return s != nil && s.amount >= s.def.MaxStack
}

// FreeSpace returns how many more units fit in the stack.
func (s *Stack) FreeSpace() int {
	if s == nil {
		return 0
	}
	free := s.def.MaxStack - s.amount
	if free < 0 {
		return 0
	}
	return free
}

// TotalWeight returns the combined weight of every unit in the stack.
func (s *Stack) TotalWeight() float64 {
	if s == nil {
		return 0
	}
	return s.def.Weight * float64(s.amount)
}

// Add grows the stack by up to count units, bounded by FreeSpace, and
// returns the overflow that did not fit. A count <= 0 is a no-op returning 0.
func (s *Stack) Add(count int) int {
	if s == nil || count <= 0 {
		return 0
	}
	fitted := s.FreeSpace()
	if fitted > count {
		fitted = count
	}
	s.amount += fitted
	return count - fitted
}

// Remove takes up to count units out of the stack and returns the amount
// actually removed.
func (s *Stack) Remove(count int) int {
	if s == nil || count <= 0 {
		return 0
	}
	if count > s.amount {
		count = s.amount
	}
	s.amount -= count
	return count
}

// SetAmount overwrites the amount, clamped to [0, MaxStack]. Deserialization
// goes through the storage layer which rejects out-of-range saved amounts
// before they reach a live stack.
func (s *Stack) SetAmount(n int) {
	if s == nil {
		return
	}
	if n < 0 {
		n = 0
	}
	if n > s.def.MaxStack {
		n = s.def.MaxStack
	}
	s.amount = n
}

// ReduceDurability lowers durability by amount, floored at zero, and reports
// whether the stack broke (durability reached zero). Stacks without
// durability are untouched and never report broken.
func (s *Stack) ReduceDurability(amount float64) bool {
	if s == nil || s.durability < 0 || amount <= 0 {
		return false
	}
	s.durability -= amount
	if s.durability <= 0 {
		s.durability = 0
		return true
	}
	return false
}

// CanMergeWith reports whether other's units could flow into this stack:
// same definition, other non-empty, this stack not full, and neither side
// tracking durability.
func (s *Stack) CanMergeWith(other *Stack) bool {
	if s == nil || other == nil || other.IsEmpty() {
		return false
	}
	if s.def != other.def {
		return false
	}
	if s.IsFull() {
		return false
	}
	if s.HasDurability() || other.HasDurability() {
		return false
	}
	return true
}

// Split carves splitAmount units off into a new stack carrying the same
// definition and durability. Valid only for 0 < splitAmount < Amount;
// anything else returns nil with no mutation.
func (s *Stack) Split(splitAmount int) *Stack {
	if s == nil || splitAmount <= 0 || splitAmount >= s.amount {
		return nil
	}
	s.amount -= splitAmount
	return &Stack{def: s.def, amount: splitAmount, durability: s.durability}
}

// Clone returns an independent copy of the stack.
func (s *Stack) Clone() *Stack {
	if s == nil {
		return nil
	}
	copied := *s
	return &copied
}
