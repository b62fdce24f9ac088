package trigger

// LimitKind restricts how often a granting action may be claimed.
type LimitKind string

const (
	LimitUnlimited     LimitKind = "unlimited"
	LimitOncePerPlayer LimitKind = "once_per_player"
	LimitOnceGlobally  LimitKind = "once_globally"
)

// Limit is the claim record attached to currency/item-granting actions.
// Claims are mutated in place on the action instance and matched only
// by the action's stable ID; there is no content-equality fallback.
type Limit struct {
	Kind          LimitKind `json:"kind"`
	ClaimedBy     []string  `json:"claimed_by,omitempty"`      // once_per_player
	ClaimedByUser string    `json:"claimed_by_user,omitempty"` // once_globally
}

// Claimed reports whether the given player is barred from claiming.
func (l *Limit) Claimed(playerID string) bool {
	if l == nil {
		return false
	}
	switch l.Kind {
	case LimitOncePerPlayer:
		for _, id := range l.ClaimedBy {
			if id == playerID {
				return true
			}
		}
		return false
	case LimitOnceGlobally:
		return l.ClaimedByUser != ""
	default:
		return false
	}
}

// Record marks the reward as claimed by the given player.
func (l *Limit) Record(playerID string) {
	if l == nil {
		return
	}
	switch l.Kind {
	case LimitOncePerPlayer:
		for _, id := range l.ClaimedBy {
			if id == playerID {
				return
			}
		}
		l.ClaimedBy = append(l.ClaimedBy, playerID)
	case LimitOnceGlobally:
		if l.ClaimedByUser == "" {
			l.ClaimedByUser = playerID
		}
	}
}
