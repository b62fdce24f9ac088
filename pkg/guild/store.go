package guild

// Store is an admin-defined shop holding priced listings.
type Store struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Listings []*Listing `json:"listings,omitempty"`
}

// Listing is one store item with price and optional stock. A nil or -1
// stock means unconstrained, 0 means sold out, n>0 is a limited count.
type Listing struct {
	ItemID       string `json:"item_id"`
	Price        int    `json:"price"`
	Stock        *int   `json:"stock,omitempty"`
	MaxPerPlayer int    `json:"max_per_player,omitempty"`
}

// Listing finds the listing for an item id, or nil.
func (s *Store) Listing(itemID string) *Listing {
	for _, l := range s.Listings {
		if l != nil && l.ItemID == itemID {
			return l
		}
	}
	return nil
}

// Unlimited reports whether the listing has no stock constraint.
func (l *Listing) Unlimited() bool {
	return l.Stock == nil || *l.Stock < 0
}

// HasStock reports whether at least quantity units are available.
func (l *Listing) HasStock(quantity int) bool {
	if l.Unlimited() {
		return true
	}
	return *l.Stock >= quantity
}

// GetStock returns the remaining stock, with -1 meaning unlimited.
func (l *Listing) GetStock() int {
	if l.Unlimited() {
		return -1
	}
	return *l.Stock
}

// UpdateStock sets the stock counter. Negative values clear the
// constraint.
func (l *Listing) UpdateStock(stock int) {
	if stock < 0 {
		l.Stock = nil
		return
	}
	l.Stock = &stock
}

// DecrementStock atomically takes quantity units from stock. It refuses
// without mutation when fewer units remain; callers must treat refusal
// as "cancel and refund the already-debited price".
func (l *Listing) DecrementStock(quantity int) bool {
	if quantity <= 0 {
		return false
	}
	if l.Unlimited() {
		return true
	}
	if *l.Stock < quantity {
		return false
	}
	remaining := *l.Stock - quantity
	l.Stock = &remaining
	return true
}
