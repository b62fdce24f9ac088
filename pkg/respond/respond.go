// Package respond defines the platform-agnostic response descriptors
// the engine hands to the presentation layer. The engine never builds
// chat-platform UI objects; size and count budgeting against platform
// limits is the presenter's problem.
package respond

// ButtonRef is an actionable reference to another trigger, attached to
// a response. Missing marks references to deleted triggers so the
// presenter can render a disabled placeholder.
type ButtonRef struct {
	TriggerID string `json:"trigger_id"`
	Label     string `json:"label"`
	Missing   bool   `json:"missing,omitempty"`
}

// Response is one user-facing output of an engine run.
type Response struct {
	Text      string      `json:"text,omitempty"`
	Title     string      `json:"title,omitempty"`
	ImageURL  string      `json:"image_url,omitempty"`
	Color     string      `json:"color,omitempty"`
	Buttons   []ButtonRef `json:"buttons,omitempty"`
	Ephemeral bool        `json:"ephemeral,omitempty"`
}

// HasContent reports whether the response carries anything worth
// delivering.
func (r Response) HasContent() bool {
	return r.Text != "" || r.Title != "" || r.ImageURL != "" || len(r.Buttons) > 0
}

// Failure builds the generic apologetic response used when an action
// degrades instead of aborting the run.
func Failure() Response {
	return Response{Text: "Something went wrong with part of this action. The rest has been applied.", Ephemeral: true}
}

// Rejection builds a policy-violation response surfaced to the acting
// player, with no side effects applied.
func Rejection(reason string) Response {
	return Response{Text: reason, Ephemeral: true}
}
