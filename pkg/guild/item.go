package guild

// Item is an admin-defined game item. Outcome values are the currency
// delta per held unit applied under the matching round polarity; attack
// and defense values are optional combat stats.
type Item struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	Emoji            string `json:"emoji,omitempty"`
	GoodOutcomeValue int    `json:"good_outcome_value,omitempty"`
	BadOutcomeValue  int    `json:"bad_outcome_value,omitempty"`
	AttackValue      int    `json:"attack_value,omitempty"`
	DefenseValue     int    `json:"defense_value,omitempty"`
	Consumable       bool   `json:"consumable,omitempty"`
	StaminaBoost     int    `json:"stamina_boost,omitempty"`
}

// OutcomeValue returns the per-unit currency delta for a round polarity.
func (it *Item) OutcomeValue(good bool) int {
	if good {
		return it.GoodOutcomeValue
	}
	return it.BadOutcomeValue
}

// PlaceholderItemName is rendered for dangling item references.
const PlaceholderItemName = "unknown item"

// ItemName resolves an item's display name, degrading to a placeholder
// for deleted items.
func (r *Record) ItemName(itemID string) string {
	if it, ok := r.Item(itemID); ok {
		return it.Name
	}
	return PlaceholderItemName
}
