package storage

import (
	"sync"
	"time"

	"github.com/aliskhannn/quizbank/internal/domain/entities"
)

// ChatState is what the bot remembers about one chat between updates.
type ChatState struct {
	User      *entities.User
	QuizID    string
	Current   int           // index of the question on screen
	Selected  map[int][]int // question ID -> selected option indices
	MessageID int           // message showing the current question
	UpdatedAt time.Time
}

// InQuiz reports whether the chat has an attempt in progress.
func (st ChatState) InQuiz() bool {
	return st.QuizID != ""
}

// ResetQuiz forgets the attempt but keeps the login.
func (st *ChatState) ResetQuiz() {
	st.QuizID = ""
	st.Current = 0
	st.Selected = nil
	st.MessageID = 0
}

func (st ChatState) clone() ChatState {
	if st.Selected != nil {
		selected := make(map[int][]int, len(st.Selected))
		for k, v := range st.Selected {
			selected[k] = append([]int(nil), v...)
		}
		st.Selected = selected
	}
	return st
}

// ChatStorage keeps bot chat state in memory.
type ChatStorage struct {
	mu     sync.RWMutex
	states map[int64]*ChatState
	now    func() time.Time
}

func NewChatStorage() *ChatStorage {
	return &ChatStorage{
		states: make(map[int64]*ChatState),
		now:    time.Now,
	}
}

// Get returns a copy of the chat state.
func (s *ChatStorage) Get(chatID int64) (ChatState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[chatID]
	if !ok {
		return ChatState{}, false
	}
	return st.clone(), true
}

// Update applies fn to the chat state, creating it if needed, and returns a copy of the result.
func (s *ChatStorage) Update(chatID int64, fn func(st *ChatState)) ChatState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[chatID]
	if !ok {
		st = &ChatState{}
		s.states[chatID] = st
	}
	fn(st)
	st.UpdatedAt = s.now()

	return st.clone()
}

func (s *ChatStorage) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, chatID)
}

// EvictOlderThan drops chats idle for longer than age and returns how many were dropped.
func (s *ChatStorage) EvictOlderThan(age time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-age)
	evicted := 0
	for id, st := range s.states {
		if st.UpdatedAt.Before(cutoff) {
			delete(s.states, id)
			evicted++
		}
	}
	return evicted
}
