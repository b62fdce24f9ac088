package trigger

// ConditionKind identifies one predicate in a trigger's condition list.
// The set is closed: evaluation switches exhaustively over these values
// and treats anything else as false.
type ConditionKind string

const (
	CondCurrencyAtLeast ConditionKind = "currency_at_least"
	CondCurrencyAtMost  ConditionKind = "currency_at_most"
	CondCurrencyZero    ConditionKind = "currency_zero"
	CondHasItem         ConditionKind = "has_item"
	CondLacksItem       ConditionKind = "lacks_item"
	CondHasRole         ConditionKind = "has_role"
	CondLacksRole       ConditionKind = "lacks_role"
	CondUseCountAtMost  ConditionKind = "use_count_at_most"
	CondCooldownExpired ConditionKind = "cooldown_expired"
	CondPointsAtLeast   ConditionKind = "points_at_least"
	CondPointsAtMost    ConditionKind = "points_at_most"
	CondCanMove         ConditionKind = "can_move"
	CondAtLocation      ConditionKind = "at_location"
)

// Logic describes how a condition combines with the previous condition
// in the list. It is a flat left-to-right fold, not an expression tree:
// ordering defines evaluation.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// Condition is one entry in a trigger's ordered condition list.
type Condition struct {
	Kind     ConditionKind `json:"kind"`
	Value    int           `json:"value,omitempty"`    // thresholds, quantities, seconds
	ItemID   string        `json:"item_id,omitempty"`  // has_item / lacks_item
	RoleID   string        `json:"role_id,omitempty"`  // has_role / lacks_role
	Location string        `json:"location,omitempty"` // at_location
	Logic    Logic         `json:"logic,omitempty"`    // combination with the previous condition, default AND
}

func (c Condition) logic() Logic {
	if c.Logic == LogicOr {
		return LogicOr
	}
	return LogicAnd
}
