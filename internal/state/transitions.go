package state

// validTransitions contains the permitted non-reset transitions in the FSM.
// Language and city prompts are reachable from any state because /start,
// "change language" and "change city" are accepted at all times.
var validTransitions = map[State][]State{
	StateIdle: {
		StateAwaitingLanguage,
		StateAwaitingCity,
	},
	StateAwaitingLanguage: {
		StateAwaitingLanguage,
		StateAwaitingCity,
	},
	StateAwaitingCity: {
		StateAwaitingLanguage,
		StateAwaitingCity,
	},
}

// IsTransitionAllowed reports whether moving from one state to another is valid.
// Returning to Idle is always allowed: it is the reset/success path.
func IsTransitionAllowed(from, to State) bool {
	if to == StateIdle {
		return true
	}

	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, state := range allowed {
		if state == to {
			return true
		}
	}

	return false
}
