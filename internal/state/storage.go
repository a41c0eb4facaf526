// Package state manages transient per-user conversation sessions for the bot.
package state

import "context"

// Storage defines the session persistence contract. Implementations hold
// sessions only for the process lifetime.
type Storage interface {
	// GetSession returns the current session for the specified user.
	GetSession(ctx context.Context, userID int64) (*Session, error)
	// SetSession saves the provided session for the specified user.
	SetSession(ctx context.Context, userID int64, session *Session) error
	// ClearSession removes the session for the specified user.
	ClearSession(ctx context.Context, userID int64) error
	// AllSessions returns every live session.
	AllSessions(ctx context.Context) ([]*Session, error)
}
