package engine

import "errors"

// Sentinel errors for callers that need to distinguish missing data
// from real failures. Policy violations (claims, stock, funds) are not
// errors: they surface as rejection responses with no side effects.
var (
	ErrGuildNotFound   = errors.New("guild not found")
	ErrTriggerNotFound = errors.New("trigger not found")
	ErrRoundNotActive  = errors.New("round not active")
)
