package state

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var (
	// ErrInvalidTransition indicates that a requested FSM transition is not allowed.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrSessionNotFound indicates that a user session record does not exist.
	ErrSessionNotFound = errors.New("user session not found")
)

var transitionRecorder = func(from, to string) {}

// RegisterTransitionRecorder allows external packages to observe FSM transitions.
func RegisterTransitionRecorder(recorder func(from, to string)) {
	if recorder == nil {
		transitionRecorder = func(string, string) {}
		return
	}

	transitionRecorder = recorder
}

// Machine describes the operations supported by the session FSM controller.
type Machine interface {
	Current(ctx context.Context, userID int64) (State, error)
	TransitionTo(ctx context.Context, userID int64, newState State) error
	Reset(ctx context.Context, userID int64) error
	AllSessions(ctx context.Context) ([]*Session, error)

	// LockUser serializes processing of concurrent events for the same user.
	// The returned function releases the lock.
	LockUser(userID int64) func()
}

// machine is a concrete Machine backed by Storage with per-user mutexes.
type machine struct {
	storage Storage
	log     *slog.Logger

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

// NewMachine creates a session FSM controller using the provided storage backend.
func NewMachine(storage Storage, log *slog.Logger) Machine {
	if log == nil {
		log = slog.Default()
	}

	return &machine{
		storage: storage,
		log:     log,
		locks:   make(map[int64]*sync.Mutex),
	}
}

// Current returns the user's conversation state, defaulting to Idle for users
// without a session. A session is created implicitly by the first transition,
// never by a read.
func (m *machine) Current(ctx context.Context, userID int64) (State, error) {
	session, err := m.storage.GetSession(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return StateIdle, nil
		}
		return StateIdle, err
	}

	if session == nil || session.CurrentState == "" {
		return StateIdle, nil
	}

	return session.CurrentState, nil
}

// TransitionTo changes the state if the transition is allowed.
func (m *machine) TransitionTo(ctx context.Context, userID int64, newState State) error {
	current, err := m.Current(ctx, userID)
	if err != nil {
		return err
	}

	if !IsTransitionAllowed(current, newState) {
		m.log.Warn("invalid state transition",
			slog.Int64("user_id", userID),
			slog.String("from", string(current)),
			slog.String("to", string(newState)))
		return ErrInvalidTransition
	}

	transitionRecorder(string(current), string(newState))

	return m.storage.SetSession(ctx, userID, &Session{
		UserID:       userID,
		CurrentState: newState,
	})
}

// Reset returns the user's session to Idle. The session record is removed so
// that idle users cost nothing.
func (m *machine) Reset(ctx context.Context, userID int64) error {
	current, err := m.Current(ctx, userID)
	if err != nil {
		return err
	}

	if current != StateIdle {
		transitionRecorder(string(current), string(StateIdle))
	}

	return m.storage.ClearSession(ctx, userID)
}

// AllSessions returns every live session.
func (m *machine) AllSessions(ctx context.Context) ([]*Session, error) {
	return m.storage.AllSessions(ctx)
}

// LockUser acquires a per-user mutex so that rapid double-sends from the same
// user are handled sequentially. Events for different users do not contend.
func (m *machine) LockUser(userID int64) func() {
	m.locksMu.Lock()
	lock, ok := m.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[userID] = lock
	}
	m.locksMu.Unlock()

	lock.Lock()
	return lock.Unlock
}
