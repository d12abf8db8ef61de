package storage

import (
	"testing"
	"time"

	"github.com/aliskhannn/quizbank/internal/domain/entities"
)

func TestQuizStorage_PutGetDelete(t *testing.T) {
	s := NewQuizStorage()
	session := &entities.QuizSession{ID: "a", Username: "alice"}

	s.Put(session)
	got, ok := s.Get("a")
	if !ok || got != session {
		t.Fatalf("Get = %v, %v", got, ok)
	}

	s.Delete("a")
	if _, ok := s.Get("a"); ok {
		t.Fatal("session still present after Delete")
	}
}

func TestQuizStorage_Take(t *testing.T) {
	s := NewQuizStorage()
	session := &entities.QuizSession{ID: "a", Username: "alice"}
	s.Put(session)

	if _, ok := s.Take("a", "bob"); ok {
		t.Fatal("Take by another user succeeded")
	}
	if s.Len() != 1 {
		t.Fatal("failed Take removed the session")
	}

	got, ok := s.Take("a", "alice")
	if !ok || got != session {
		t.Fatalf("Take = %v, %v", got, ok)
	}
	if _, ok := s.Take("a", "alice"); ok {
		t.Error("second Take succeeded")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestQuizStorage_DeleteByUser(t *testing.T) {
	s := NewQuizStorage()
	s.Put(&entities.QuizSession{ID: "1", Username: "alice"})
	s.Put(&entities.QuizSession{ID: "2", Username: "alice"})
	s.Put(&entities.QuizSession{ID: "3", Username: "bob"})

	if n := s.DeleteByUser("alice"); n != 2 {
		t.Errorf("DeleteByUser = %d, want 2", n)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
	if _, ok := s.Get("3"); !ok {
		t.Error("bob's session removed")
	}
}

func TestQuizStorage_EvictOlderThan(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewQuizStorage()
	s.now = func() time.Time { return now }

	s.Put(&entities.QuizSession{ID: "old"})
	now = now.Add(90 * time.Minute)
	s.Put(&entities.QuizSession{ID: "new"})
	now = now.Add(45 * time.Minute)

	if n := s.EvictOlderThan(time.Hour); n != 1 {
		t.Fatalf("EvictOlderThan = %d, want 1", n)
	}
	if _, ok := s.Get("old"); ok {
		t.Error("old session survived eviction")
	}
	if _, ok := s.Get("new"); !ok {
		t.Error("new session was evicted")
	}
}
