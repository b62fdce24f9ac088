package guild

import (
	"time"

	"github.com/guildforge/engine/pkg/inventory"
)

// Purchase is one line of a player's purchase history.
type Purchase struct {
	StoreID  string    `json:"store_id"`
	ItemID   string    `json:"item_id"`
	Quantity int       `json:"quantity"`
	Price    int       `json:"price"`
	At       time.Time `json:"at"`
}

// Player is the per-player record embedded in the guild document.
type Player struct {
	ID          string               `json:"id"`
	Currency    int                  `json:"currency"`
	Inventory   inventory.Inventory  `json:"inventory,omitempty"`
	Cooldowns   map[string]time.Time `json:"cooldowns,omitempty"`
	UseCounts   map[string]int       `json:"usage_counts,omitempty"`
	Purchases   []Purchase           `json:"purchase_history,omitempty"`
	Initialized bool                 `json:"initialized,omitempty"`
}

func (p *Player) normalize() {
	if p.Inventory == nil {
		p.Inventory = make(inventory.Inventory)
	}
	if p.Cooldowns == nil {
		p.Cooldowns = make(map[string]time.Time)
	}
	if p.UseCounts == nil {
		p.UseCounts = make(map[string]int)
	}
}

// EnsurePlayer returns the player record for an id, creating an
// initialized profile on first contact.
func (r *Record) EnsurePlayer(playerID string) *Player {
	p, ok := r.Players[playerID]
	if !ok || p == nil {
		p = &Player{ID: playerID, Initialized: true}
		r.Players[playerID] = p
	}
	p.Initialized = true
	p.normalize()
	return p
}

// AddCurrency applies a delta to the player's balance, flooring at zero.
func (p *Player) AddCurrency(delta int) {
	p.Currency += delta
	if p.Currency < 0 {
		p.Currency = 0
	}
}

// TotalDefense sums defense across the player's current inventory.
func (p *Player) TotalDefense(r *Record) int {
	total := 0
	for itemID := range p.Inventory {
		it, ok := r.Item(itemID)
		if !ok || it.DefenseValue <= 0 {
			continue
		}
		total += p.Inventory.Quantity(itemID) * it.DefenseValue
	}
	return total
}
