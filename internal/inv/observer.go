package inv

// Observer receives change notifications from one Inventory. Handlers run
// synchronously on the mutating call in subscription order and must not
// mutate the inventory they observe.
type Observer interface {
	// InventoryChanged fires once per logical mutation that altered state.
	InventoryChanged()
	// SlotChanged fires for every slot index a mutation touched.
	SlotChanged(index int)
}

// ObserverFuncs adapts plain callbacks to the Observer interface. Either
// field may be nil.
type ObserverFuncs struct {
	OnChanged     func()
	OnSlotChanged func(index int)
}

func (o *ObserverFuncs) InventoryChanged() {
	if o != nil && o.OnChanged != nil {
		o.OnChanged()
	}
}

func (o *ObserverFuncs) SlotChanged(index int) {
	if o != nil && o.OnSlotChanged != nil {
		o.OnSlotChanged(index)
	}
}

// Subscribe registers an observer. Registration order determines
// notification order. Duplicate registrations are ignored.
func (inv *Inventory) Subscribe(obs Observer) {
	if inv == nil || obs == nil {
		return
	}
	for _, existing := range inv.observers {
		if existing == obs {
			return
		}
	}
	inv.observers = append(inv.observers, obs)
}

// Unsubscribe removes a previously registered observer.
func (inv *Inventory) Unsubscribe(obs Observer) {
	if inv == nil || obs == nil {
		return
	}
	for i, existing := range inv.observers {
		if existing == obs {
			inv.observers = append(inv.observers[:i], inv.observers[i+1:]...)
			return
		}
	}
}

func (inv *Inventory) notifyChanged() {
	for _, obs := range inv.observers {
		obs.InventoryChanged()
	}
}

func (inv *Inventory) notifySlot(index int) {
	for _, obs := range inv.observers {
		obs.SlotChanged(index)
	}
}
