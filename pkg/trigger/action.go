package trigger

// ActionKind identifies one scripted action type. The set is closed and
// curated; executors switch exhaustively over it.
type ActionKind string

const (
	ActionDisplayText      ActionKind = "display_text"
	ActionGiveCurrency     ActionKind = "give_currency"
	ActionGiveItem         ActionKind = "give_item"
	ActionGiveRole         ActionKind = "give_role"
	ActionRemoveRole       ActionKind = "remove_role"
	ActionFollowUpButton   ActionKind = "follow_up_button"
	ActionConditional      ActionKind = "conditional"
	ActionRandomOutcome    ActionKind = "random_outcome"
	ActionStoreDisplay     ActionKind = "store_display"
	ActionBuyItem          ActionKind = "buy_item"
	ActionCheckPoints      ActionKind = "check_points"
	ActionModifyPoints     ActionKind = "modify_points"
	ActionMovePlayer       ActionKind = "move_player"
	ActionCalculateResults ActionKind = "calculate_results"
)

// ExecuteOn values gate an action against the trigger's aggregate
// condition result. The zero value means "true" for backward
// compatibility with documents written before branching existed.
const (
	ExecuteOnTrue  = "true"
	ExecuteOnFalse = "false"
)

// Action is one entry in a trigger's ordered action list. Kind-specific
// configuration shares one flat struct; unused fields stay zero.
type Action struct {
	ID        string     `json:"id"` // stable identity, claims are matched only by this
	Kind      ActionKind `json:"kind"`
	Order     int        `json:"order"`
	ExecuteOn string     `json:"execute_on,omitempty"`

	// display_text / follow_up_button
	Text     string `json:"text,omitempty"`
	Title    string `json:"title,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Color    string `json:"color,omitempty"`
	Label    string `json:"label,omitempty"`

	// give_currency / modify_points / check_points
	Amount int `json:"amount,omitempty"`

	// give_item / buy_item
	ItemID   string `json:"item_id,omitempty"`
	Quantity int    `json:"quantity,omitempty"`

	// give_role / remove_role
	RoleID string `json:"role_id,omitempty"`

	// follow_up_button
	TargetTriggerID string `json:"target_trigger_id,omitempty"`

	// store_display / buy_item
	StoreID string `json:"store_id,omitempty"`

	// move_player
	Destination string `json:"destination,omitempty"`

	// calculate_results: "self" for the acting player only, anything
	// else aggregates all players
	Scope string `json:"scope,omitempty"`

	// conditional
	Branch *Branch `json:"branch,omitempty"`

	// random_outcome
	Outcomes []Outcome `json:"outcomes,omitempty"`

	// give_currency / give_item claim limits
	Limit *Limit `json:"limit,omitempty"`
}

// Gated reports whether the action should run for the given aggregate
// condition result.
func (a Action) Gated(conditionResult bool) bool {
	on := a.ExecuteOn
	if on == "" {
		on = ExecuteOnTrue
	}
	if conditionResult {
		return on == ExecuteOnTrue
	}
	return on == ExecuteOnFalse
}

// Branch is a nested condition/branch pair for conditional actions.
// Exactly one of the two sub-lists executes.
type Branch struct {
	Conditions []Condition `json:"conditions,omitempty"`
	Then       []Action    `json:"then,omitempty"`
	Else       []Action    `json:"else,omitempty"`
}

// Outcome is one weighted alternative of a random_outcome action.
type Outcome struct {
	Weight  int      `json:"weight,omitempty"` // defaults to 1
	Actions []Action `json:"actions,omitempty"`
}

// EffectiveWeight returns the outcome's selection weight, defaulting
// non-positive weights to 1.
func (o Outcome) EffectiveWeight() int {
	if o.Weight <= 0 {
		return 1
	}
	return o.Weight
}
