package guild

import (
	"strconv"
	"time"

	"github.com/guildforge/engine/pkg/trigger"
)

// Record is the whole persisted document for one guild. It is loaded,
// mutated in memory, and written back as a unit; there is no sub-document
// isolation (last-write-wins).
type Record struct {
	ID        string                      `json:"id"`
	Items     map[string]*Item            `json:"items,omitempty"`
	Stores    map[string]*Store           `json:"stores,omitempty"`
	Triggers  map[string]*trigger.Trigger `json:"buttons,omitempty"`
	Players   map[string]*Player          `json:"players,omitempty"`
	Round     RoundConfig                 `json:"round_config"`
	Attacks   map[string][]AttackRecord   `json:"attack_queue,omitempty"` // keyed by round number
	UpdatedAt time.Time                   `json:"updated_at,omitempty"`
}

// Normalize initializes missing substructures. Storage calls it on
// every load; nothing downstream may assume a well-formed document.
func (r *Record) Normalize() {
	if r.Items == nil {
		r.Items = make(map[string]*Item)
	}
	if r.Stores == nil {
		r.Stores = make(map[string]*Store)
	}
	if r.Triggers == nil {
		r.Triggers = make(map[string]*trigger.Trigger)
	}
	if r.Players == nil {
		r.Players = make(map[string]*Player)
	}
	if r.Attacks == nil {
		r.Attacks = make(map[string][]AttackRecord)
	}
	for _, p := range r.Players {
		p.normalize()
	}
}

// NewRecord creates an empty normalized guild document.
func NewRecord(id string) *Record {
	r := &Record{ID: id}
	r.Normalize()
	return r
}

// Item looks up an item definition; ok is false for dangling references.
// Callers render placeholders for missing items rather than failing.
func (r *Record) Item(itemID string) (*Item, bool) {
	it, ok := r.Items[itemID]
	return it, ok && it != nil
}

// IsCombatItem reports whether an item carries any combat stat.
func (r *Record) IsCombatItem(itemID string) bool {
	it, ok := r.Item(itemID)
	return ok && (it.AttackValue > 0 || it.DefenseValue > 0)
}

// RoundAttacks returns the attack queue for a round.
func (r *Record) RoundAttacks(round int) []AttackRecord {
	return r.Attacks[roundKey(round)]
}

// AppendAttack queues an attack record under its round.
func (r *Record) AppendAttack(rec AttackRecord) {
	key := roundKey(rec.Round)
	r.Attacks[key] = append(r.Attacks[key], rec)
}

// ClearRoundAttacks drops the attack queue for a round.
func (r *Record) ClearRoundAttacks(round int) {
	delete(r.Attacks, roundKey(round))
}

func roundKey(round int) string {
	return strconv.Itoa(round)
}
