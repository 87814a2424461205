package orchestrator

import "github.com/harrison/delegate/internal/prompt"

// State is a step of the generation state machine.
type State int

const (
	// StatePrimary uses the lead-type routed primary prompt.
	StatePrimary State = iota
	// StateSimplified uses the short personalized fallback prompt.
	StateSimplified
	// StateEmergency uses the static last-resort prompt.
	StateEmergency
	// StateSuccess is terminal: a report was parsed.
	StateSuccess
	// StateExhausted is terminal: every attempt state failed.
	StateExhausted
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StatePrimary:
		return "primary"
	case StateSimplified:
		return "simplified"
	case StateEmergency:
		return "emergency"
	case StateSuccess:
		return "success"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further attempt follows s.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateExhausted
}

// Tier returns the prompt tier an attempt state builds.
func (s State) Tier() (prompt.Tier, bool) {
	switch s {
	case StatePrimary:
		return prompt.TierPrimary, true
	case StateSimplified:
		return prompt.TierSimplified, true
	case StateEmergency:
		return prompt.TierEmergency, true
	default:
		return 0, false
	}
}

// Next is the transition function. A successful attempt moves to
// StateSuccess; a failed one escalates one tier, and a failed emergency
// attempt ends in StateExhausted. Terminal states never move.
func Next(s State, attemptErr error) State {
	if s.Terminal() {
		return s
	}
	if attemptErr == nil {
		return StateSuccess
	}
	switch s {
	case StatePrimary:
		return StateSimplified
	case StateSimplified:
		return StateEmergency
	default:
		return StateExhausted
	}
}
