package inventory

import "encoding/json"

// Entry is the structured inventory record for one item. Older guild
// documents stored a bare quantity; those decode into an Entry with
// UsableAttacks zero and are upgraded by Migrate.
type Entry struct {
	Quantity      int `json:"quantity"`
	UsableAttacks int `json:"usableAttacksAvailable"`

	// legacy marks an entry decoded from the scalar shape. It is
	// cleared by Migrate and never serialized.
	legacy bool
}

// UnmarshalJSON accepts both the legacy scalar shape and the structured
// object shape.
func (e *Entry) UnmarshalJSON(data []byte) error {
	// Try the legacy bare-quantity shape first (backwards compatibility)
	var qty int
	if err := json.Unmarshal(data, &qty); err == nil {
		e.Quantity = qty
		e.UsableAttacks = 0
		e.legacy = true
		return nil
	}

	type alias Entry
	aux := &struct{ *alias }{alias: (*alias)(e)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	e.legacy = false
	if e.UsableAttacks > e.Quantity {
		e.UsableAttacks = e.Quantity
	}
	return nil
}

// IsLegacy reports whether the entry was decoded from the scalar shape
// and has not yet been migrated.
func (e Entry) IsLegacy() bool {
	return e.legacy
}

// Inventory maps item IDs to entries.
type Inventory map[string]Entry

// Quantity returns the held quantity for an item, zero when absent.
func (inv Inventory) Quantity(itemID string) int {
	return inv[itemID].Quantity
}

// UsableAttacks returns the uncommitted attack count for an item.
func (inv Inventory) UsableAttacks(itemID string) int {
	return inv[itemID].UsableAttacks
}

// Set writes the structured form for an item. Usable attacks are
// clamped to [0, quantity]; a non-positive quantity removes the entry.
func (inv Inventory) Set(itemID string, quantity, usableAttacks int) {
	if quantity <= 0 {
		delete(inv, itemID)
		return
	}
	if usableAttacks < 0 {
		usableAttacks = 0
	}
	if usableAttacks > quantity {
		usableAttacks = quantity
	}
	inv[itemID] = Entry{Quantity: quantity, UsableAttacks: usableAttacks}
}

// Grant adds quantity to an item. For combat-capable items the granted
// units are immediately usable for attacks.
func (inv Inventory) Grant(itemID string, quantity int, combat bool) {
	if quantity <= 0 {
		return
	}
	e := inv[itemID]
	usable := e.UsableAttacks
	if combat {
		usable += quantity
	}
	inv.Set(itemID, e.Quantity+quantity, usable)
}

// Migrate upgrades legacy scalar entries to the structured shape.
// UsableAttacks is initialized to the full quantity only for items the
// caller reports as combat-capable. Returns true when any entry changed,
// so a second run over the same inventory returns false.
func (inv Inventory) Migrate(isCombat func(itemID string) bool) bool {
	changed := false
	for itemID, e := range inv {
		if !e.legacy {
			continue
		}
		usable := 0
		if isCombat != nil && isCombat(itemID) {
			usable = e.Quantity
		}
		inv[itemID] = Entry{Quantity: e.Quantity, UsableAttacks: usable}
		changed = true
	}
	return changed
}
