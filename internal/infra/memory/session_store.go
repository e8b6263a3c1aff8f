package memory

import (
	"sync"

	"contest-round-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Sessions live for the process lifetime; only Reset removes them.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int]*app.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int]*app.Session),
	}
}

func (s *SessionStore) Put(questionID int, session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[questionID] = session
}

func (s *SessionStore) Get(questionID int) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[questionID]
	return session, ok
}

// All returns a snapshot of the registry; callers may range without holding
// the store lock.
func (s *SessionStore) All() map[int]*app.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int]*app.Session, len(s.sessions))
	for id, session := range s.sessions {
		out[id] = session
	}
	return out
}

// Reset drops every session and reports how many were cleared.
func (s *SessionStore) Reset() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := len(s.sessions)
	s.sessions = make(map[int]*app.Session)
	return count
}
