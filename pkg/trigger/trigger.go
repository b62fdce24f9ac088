package trigger

import (
	"sort"
	"time"
)

// Trigger is a named, user-invocable entry point bound to an ordered
// condition list and an ordered action list. A trigger with no
// conditions always evaluates true.
type Trigger struct {
	ID         string      `json:"id"`
	Label      string      `json:"label"`
	Conditions []Condition `json:"conditions,omitempty"`
	Actions    []Action    `json:"actions,omitempty"`
	UseCount   int         `json:"use_count"`
	CreatedBy  string      `json:"created_by,omitempty"`
	CreatedAt  time.Time   `json:"created_at,omitempty"`
}

// ActionsFor returns the actions gated to the given condition result,
// sorted by their execution order.
func (t *Trigger) ActionsFor(conditionResult bool) []Action {
	var matched []Action
	for _, a := range t.Actions {
		if a.Gated(conditionResult) {
			matched = append(matched, a)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Order < matched[j].Order
	})
	return matched
}

// FindAction returns a pointer into the trigger's action tree for the
// given action ID, descending into conditional branches and random
// outcomes. Claim mutations go through this lookup so they land on the
// stored trigger rather than a stale copy.
func (t *Trigger) FindAction(actionID string) *Action {
	if actionID == "" {
		return nil
	}
	return findAction(t.Actions, actionID)
}

func findAction(actions []Action, actionID string) *Action {
	for i := range actions {
		a := &actions[i]
		if a.ID == actionID {
			return a
		}
		if a.Branch != nil {
			if f := findAction(a.Branch.Then, actionID); f != nil {
				return f
			}
			if f := findAction(a.Branch.Else, actionID); f != nil {
				return f
			}
		}
		for oi := range a.Outcomes {
			if f := findAction(a.Outcomes[oi].Actions, actionID); f != nil {
				return f
			}
		}
	}
	return nil
}
