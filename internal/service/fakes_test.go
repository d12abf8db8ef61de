package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aliskhannn/quizbank/internal/domain/entities"
)

var errFake = errors.New("fake failure")

type fakeSource struct {
	files map[string]string
}

func (s *fakeSource) Name() string { return "fake" }

func (s *fakeSource) Fetch(_ context.Context, name string) (string, error) {
	text, ok := s.files[name]
	if !ok {
		return "", errFake
	}
	return text, nil
}

type fakeSubmissions struct {
	mu    sync.Mutex
	saved []*entities.QuizResult
	err   error
}

func (f *fakeSubmissions) SaveSubmission(_ context.Context, result *entities.QuizResult, _ *entities.ScoreReport, _ float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, result)
	return nil
}

type fakeResults struct {
	limit int
}

func (f *fakeResults) ListByUsername(_ context.Context, _ string, limit int) ([]*entities.QuizResult, error) {
	f.limit = limit
	return nil, nil
}

type fakeProgress struct {
	records []*entities.SectionProgress
}

func (f *fakeProgress) ListByUser(_ context.Context, username, bank string) ([]*entities.SectionProgress, error) {
	var out []*entities.SectionProgress
	for _, p := range f.records {
		if p.Username == username && p.Bank == bank {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeCredentials struct {
	mu   sync.Mutex
	used map[string]time.Time
}

func (f *fakeCredentials) Consume(_ context.Context, username string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.used == nil {
		f.used = make(map[string]time.Time)
	}
	if _, ok := f.used[username]; ok {
		return false, nil
	}
	f.used[username] = at
	return true, nil
}
