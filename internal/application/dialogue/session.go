// Package dialogue implements the multi-step marks collection conversation.
// It owns the ephemeral per-user sessions and the state machine that
// sequences prompts, validates input per stage, and decides whether the
// collected data gets persisted.
//
// Sessions live only in memory: a process restart loses any in-progress
// dialogue, which then has to be restarted from the first stage.
package dialogue

import (
	"sync"

	"github.com/gradehub/gradehub-bot/internal/domain/student"
)

// Stage is the current position in the marks collection dialogue.
type Stage int

const (
	// StageMid1 awaits the first mid-exam score.
	StageMid1 Stage = iota
	// StageMid2 awaits the second mid-exam score.
	StageMid2
	// StageWeeklies awaits the space-separated weekly test scores.
	StageWeeklies
	// StageConfirmSave awaits the yes/no persistence answer.
	StageConfirmSave
	// StageDone is terminal; the session is torn down on reaching it.
	StageDone
)

// String returns the string representation of the stage.
func (s Stage) String() string {
	switch s {
	case StageMid1:
		return "awaiting_mid1"
	case StageMid2:
		return "awaiting_mid2"
	case StageWeeklies:
		return "awaiting_weeklies"
	case StageConfirmSave:
		return "awaiting_save_confirm"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// Session holds the answers accumulated so far for one user.
// Field validity follows the stage: Mid1 is set once past StageMid1,
// Mid2 once past StageMid2, Weeklies and Internals once past StageWeeklies.
type Session struct {
	TelegramID  student.TelegramID
	DisplayName string
	Stage       Stage

	Mid1      float64
	Mid2      float64
	Weeklies  []float64
	Internals float64
}

// Store keeps at most one active session per Telegram ID.
// All methods are safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	sessions map[student.TelegramID]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[student.TelegramID]*Session)}
}

// Begin creates a fresh session at StageMid1, discarding any session the
// user already had (last-writer-wins, no queuing).
func (s *Store) Begin(id student.TelegramID, displayName string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &Session{
		TelegramID:  id,
		DisplayName: displayName,
		Stage:       StageMid1,
	}
	s.sessions[id] = sess
	return sess
}

// Get returns the active session for the user, or nil.
func (s *Store) Get(id student.TelegramID) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

// Active reports whether the user has a session in progress.
func (s *Store) Active(id student.TelegramID) bool {
	return s.Get(id) != nil
}

// End removes the user's session and returns it (nil if none existed).
func (s *Store) End(id student.TelegramID) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessions[id]
	delete(s.sessions, id)
	return sess
}

// Len returns the number of active sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
