package state

import "time"

// State represents a conversation state in the per-user finite-state machine.
type State string

const (
	// StateIdle indicates that the bot is waiting for the next command or button.
	StateIdle State = "idle"
	// StateAwaitingLanguage indicates that the bot expects a language selection.
	StateAwaitingLanguage State = "awaiting_language"
	// StateAwaitingCity indicates that the bot expects a city name as free text.
	StateAwaitingCity State = "awaiting_city"
)

// Session captures the transient conversation state for a single user.
// Sessions are never persisted across process restarts.
type Session struct {
	UserID       int64
	CurrentState State
	UpdatedAt    time.Time
}
