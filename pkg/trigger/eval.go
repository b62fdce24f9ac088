package trigger

import "log/slog"

// PlayerView provides the minimal interface needed to evaluate
// conditions. This avoids an import cycle with the guild package and
// lets the engine back point/movement predicates with its collaborators.
type PlayerView interface {
	Currency() int
	ItemQuantity(itemID string) int
	HasRole(roleID string) bool
	TriggerUseCount() int
	CooldownExpired(seconds int) bool
	Points() int
	CanMove() bool
	Location() string
}

// EvaluateConditions folds an ordered condition list into a single
// boolean. Each condition's Logic describes how it combines with the
// running result; AND short-circuits on false and OR short-circuits on
// true, so predicates after the decisive pair are never evaluated. An
// empty list is true.
func EvaluateConditions(conds []Condition, view PlayerView, log *slog.Logger) bool {
	if len(conds) == 0 {
		return true
	}

	result := evaluate(conds[0], view, log)
	for i := 1; i < len(conds); i++ {
		switch conds[i-1].logic() {
		case LogicOr:
			if result {
				return true
			}
			result = evaluate(conds[i], view, log)
		default:
			if !result {
				return false
			}
			result = result && evaluate(conds[i], view, log)
		}
	}
	return result
}

func evaluate(c Condition, view PlayerView, log *slog.Logger) bool {
	switch c.Kind {
	case CondCurrencyAtLeast:
		return view.Currency() >= c.Value
	case CondCurrencyAtMost:
		return view.Currency() <= c.Value
	case CondCurrencyZero:
		return view.Currency() == 0
	case CondHasItem:
		return view.ItemQuantity(c.ItemID) >= threshold(c.Value)
	case CondLacksItem:
		return view.ItemQuantity(c.ItemID) < threshold(c.Value)
	case CondHasRole:
		return view.HasRole(c.RoleID)
	case CondLacksRole:
		return !view.HasRole(c.RoleID)
	case CondUseCountAtMost:
		return view.TriggerUseCount() <= c.Value
	case CondCooldownExpired:
		return view.CooldownExpired(c.Value)
	case CondPointsAtLeast:
		return view.Points() >= c.Value
	case CondPointsAtMost:
		return view.Points() <= c.Value
	case CondCanMove:
		return view.CanMove()
	case CondAtLocation:
		return view.Location() == c.Location
	default:
		if log != nil {
			log.Warn("Unknown condition kind", "kind", c.Kind)
		}
		return false
	}
}

// threshold defaults item-quantity comparisons to 1.
func threshold(v int) int {
	if v <= 0 {
		return 1
	}
	return v
}
