package storage

import (
	"sync"
	"time"

	"github.com/aliskhannn/quizbank/internal/domain/entities"
	"github.com/aliskhannn/quizbank/internal/metrics"
)

type sessionEntry struct {
	session    *entities.QuizSession
	insertedAt time.Time
}

// QuizStorage provides in-memory storage for in-flight quiz attempts by session ID.
type QuizStorage struct {
	mu       sync.RWMutex
	sessions map[string]sessionEntry
	now      func() time.Time
}

// NewQuizStorage creates a new QuizStorage.
func NewQuizStorage() *QuizStorage {
	return &QuizStorage{
		sessions: make(map[string]sessionEntry),
		now:      time.Now,
	}
}

// Put saves an attempt, replacing any attempt with the same ID.
func (s *QuizStorage) Put(session *entities.QuizSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = sessionEntry{session: session, insertedAt: s.now()}
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
}

// Get retrieves the attempt with the given ID.
func (s *QuizStorage) Get(id string) (*entities.QuizSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return e.session, true
}

// Take removes and returns the attempt with the given ID when it belongs to username.
// Only one caller can take a given attempt.
func (s *QuizStorage) Take(id, username string) (*entities.QuizSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok || e.session.Username != username {
		return nil, false
	}
	delete(s.sessions, id)
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return e.session, true
}

// Delete removes the attempt with the given ID.
func (s *QuizStorage) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
}

// DeleteByUser removes every attempt owned by username and returns how many were removed.
func (s *QuizStorage) DeleteByUser(username string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.sessions {
		if e.session.Username == username {
			delete(s.sessions, id)
			n++
		}
	}
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return n
}

// EvictOlderThan removes attempts inserted more than age ago and returns how many were removed.
func (s *QuizStorage) EvictOlderThan(age time.Duration) int {
	cutoff := s.now().Add(-age)

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.sessions {
		if e.insertedAt.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return n
}

// Len returns the number of stored attempts.
func (s *QuizStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
