package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/quizbank/internal/domain/entities"
	"github.com/aliskhannn/quizbank/internal/storage"
)

const testBankName = "bank.txt"

type quizFixture struct {
	svc         *QuizService
	store       *storage.QuizStorage
	submissions *fakeSubmissions
	results     *fakeResults
	progress    *fakeProgress
}

func newQuizFixture(bankText string) *quizFixture {
	source := &fakeSource{files: map[string]string{}}
	if bankText != "" {
		source.files[testBankName] = bankText
	}

	f := &quizFixture{
		store:       storage.NewQuizStorage(),
		submissions: &fakeSubmissions{},
		results:     &fakeResults{},
		progress:    &fakeProgress{},
	}
	f.svc = NewQuizService(
		NewBankService(source, time.Second, zap.NewNop()),
		NewQuizComposer(NewRandomizer(), zap.NewNop()),
		f.store,
		f.submissions,
		f.results,
		f.progress,
		QuizConfig{
			Database:       testBankName,
			QuestionCount:  6,
			SectionCount:   3,
			Duration:       10 * time.Minute,
			Grace:          time.Minute,
			SessionTTL:     time.Hour,
			PassPercentage: 70,
		},
		zap.NewNop(),
	)
	return f
}

func allCorrect(s *entities.QuizSession) map[string][]string {
	answers := make(map[string][]string, len(s.Questions))
	for _, q := range s.Questions {
		answers[strconv.Itoa(q.ID)] = q.CorrectAnswers
	}
	return answers
}

func TestQuizService_StartAndGet(t *testing.T) {
	f := newQuizFixture(buildBank([]string{"A", "B"}, []int{5, 5}))
	ctx := context.Background()
	user := &entities.User{Username: "alice"}

	session, err := f.svc.StartQuiz(ctx, user, "", 0)
	if err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}
	if len(session.Questions) != 6 || session.Section != "" || !session.IsActive() {
		t.Fatalf("session = %d questions, section %q, status %s", len(session.Questions), session.Section, session.Status)
	}
	if f.store.Len() != 1 {
		t.Errorf("store has %d sessions, want 1", f.store.Len())
	}

	if _, err := f.svc.GetQuiz(ctx, "alice", session.ID); err != nil {
		t.Errorf("GetQuiz by owner: %v", err)
	}
	if _, err := f.svc.GetQuiz(ctx, "bob", session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("GetQuiz by other user err = %v, want ErrSessionNotFound", err)
	}

	section, err := f.svc.StartQuiz(ctx, user, "B", 0)
	if err != nil {
		t.Fatalf("StartQuiz section: %v", err)
	}
	if len(section.Questions) != 3 {
		t.Errorf("section quiz has %d questions, want 3", len(section.Questions))
	}
	for _, q := range section.Questions {
		if q.Section != "B" {
			t.Errorf("section quiz question from %q", q.Section)
		}
	}
}

func TestQuizService_StartErrors(t *testing.T) {
	bank := buildBank([]string{"A", "B"}, []int{5, 5})

	tests := []struct {
		name    string
		bank    string
		user    *entities.User
		section string
		want    error
	}{
		{"unknown section", bank, &entities.User{Username: "u"}, "Z", ErrSectionNotFound},
		{"section outside allow-list", bank, &entities.User{Username: "u", Sections: []string{"A"}}, "B", ErrSectionNotAllowed},
		{"whole bank for restricted user", bank, &entities.User{Username: "u", Sections: []string{"A"}}, "", ErrSectionNotAllowed},
		{"bank unavailable", "", &entities.User{Username: "u"}, "", ErrNoQuestionsAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newQuizFixture(tt.bank)
			_, err := f.svc.StartQuiz(context.Background(), tt.user, tt.section, 0)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestQuizService_Submit(t *testing.T) {
	f := newQuizFixture(buildBank([]string{"A", "B"}, []int{5, 5}))
	ctx := context.Background()

	session, err := f.svc.StartQuiz(ctx, &entities.User{Username: "alice"}, "", 0)
	if err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}

	outcome, err := f.svc.SubmitQuiz(ctx, "alice", session.ID, allCorrect(session))
	if err != nil {
		t.Fatalf("SubmitQuiz: %v", err)
	}
	if outcome.Report.Score != 6 || outcome.Report.Percentage != 100 {
		t.Errorf("report = %d/%d %.2f%%", outcome.Report.Score, outcome.Report.Total, outcome.Report.Percentage)
	}

	if len(f.submissions.saved) != 1 {
		t.Fatalf("saved %d results, want 1", len(f.submissions.saved))
	}
	saved := f.submissions.saved[0]
	if saved.Username != "alice" || saved.SessionID != session.ID || saved.Score != 6 || saved.Bank != testBankName {
		t.Errorf("saved result = %+v", saved)
	}

	if _, err := f.svc.SubmitQuiz(ctx, "alice", session.ID, allCorrect(session)); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second submit err = %v, want ErrSessionNotFound", err)
	}
}

func TestQuizService_ConcurrentGetAndSubmit(t *testing.T) {
	f := newQuizFixture(buildBank([]string{"A", "B"}, []int{5, 5}))
	ctx := context.Background()

	session, err := f.svc.StartQuiz(ctx, &entities.User{Username: "alice"}, "", 0)
	if err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}
	answers := allCorrect(session)

	const (
		readers    = 4
		submitters = 4
	)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		scored  int
		readErr error
	)

	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 2000; j++ {
				got, err := f.svc.GetQuiz(ctx, "alice", session.ID)
				if errors.Is(err, ErrSessionNotFound) {
					return
				}
				if err == nil && !got.IsActive() {
					err = errors.New("got a finished attempt")
				}
				if err != nil {
					mu.Lock()
					readErr = err
					mu.Unlock()
					return
				}
			}
		}()
	}

	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.SubmitQuiz(ctx, "alice", session.ID, answers)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				scored++
			case !errors.Is(err, ErrSessionNotFound):
				readErr = err
			}
		}()
	}

	wg.Wait()

	if readErr != nil {
		t.Fatalf("unexpected error: %v", readErr)
	}
	if scored != 1 {
		t.Errorf("attempt scored %d times, want 1", scored)
	}
	if len(f.submissions.saved) != 1 {
		t.Errorf("saved %d results, want 1", len(f.submissions.saved))
	}
	if !session.IsActive() || session.CompletedAt != nil {
		t.Errorf("published attempt was modified: status %s", session.Status)
	}
}

func TestQuizService_UsesServiceClock(t *testing.T) {
	f := newQuizFixture(buildBank([]string{"A"}, []int{5}))
	ctx := context.Background()

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return start }

	session, err := f.svc.StartQuiz(ctx, &entities.User{Username: "alice"}, "", 0)
	if err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}
	if !session.StartedAt.Equal(start) || !session.Deadline.Equal(start.Add(10*time.Minute)) {
		t.Errorf("started %v, deadline %v", session.StartedAt, session.Deadline)
	}

	end := start.Add(4 * time.Minute)
	f.svc.now = func() time.Time { return end }

	outcome, err := f.svc.SubmitQuiz(ctx, "alice", session.ID, nil)
	if err != nil {
		t.Fatalf("SubmitQuiz: %v", err)
	}
	if outcome.TimeTaken != 4*time.Minute {
		t.Errorf("TimeTaken = %v, want 4m", outcome.TimeTaken)
	}
	saved := f.submissions.saved[0]
	if !saved.CreatedAt.Equal(end) || saved.TimeTaken != 4*time.Minute {
		t.Errorf("saved result at %v took %v", saved.CreatedAt, saved.TimeTaken)
	}
}

func TestQuizService_SubmitAfterDeadline(t *testing.T) {
	f := newQuizFixture(buildBank([]string{"A"}, []int{5}))
	ctx := context.Background()

	session, err := f.svc.StartQuiz(ctx, &entities.User{Username: "alice"}, "", 0)
	if err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}

	// Within the grace period the attempt is still scored.
	f.svc.now = func() time.Time { return session.Deadline.Add(30 * time.Second) }
	late, err := f.svc.StartQuiz(ctx, &entities.User{Username: "bob"}, "", 0)
	if err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}
	if _, err := f.svc.SubmitQuiz(ctx, "alice", session.ID, nil); err != nil {
		t.Fatalf("submit within grace: %v", err)
	}

	f.svc.now = func() time.Time { return late.Deadline.Add(2 * time.Minute) }
	if _, err := f.svc.SubmitQuiz(ctx, "bob", late.ID, nil); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("late submit err = %v, want ErrSessionExpired", err)
	}
	if _, ok := f.store.Get(late.ID); ok {
		t.Error("expired attempt should be discarded")
	}
	if len(f.submissions.saved) != 1 {
		t.Errorf("saved %d results, want only the one within grace", len(f.submissions.saved))
	}
}

func TestQuizService_SubmitKeepsScoreWhenSaveFails(t *testing.T) {
	f := newQuizFixture(buildBank([]string{"A"}, []int{5}))
	f.submissions.err = errFake
	ctx := context.Background()

	session, err := f.svc.StartQuiz(ctx, &entities.User{Username: "alice"}, "", 0)
	if err != nil {
		t.Fatalf("StartQuiz: %v", err)
	}

	outcome, err := f.svc.SubmitQuiz(ctx, "alice", session.ID, allCorrect(session))
	if err != nil {
		t.Fatalf("SubmitQuiz: %v", err)
	}
	if outcome.Report.Score != outcome.Report.Total {
		t.Errorf("score %d/%d", outcome.Report.Score, outcome.Report.Total)
	}
}

func TestQuizService_Sections(t *testing.T) {
	f := newQuizFixture(buildBank([]string{"A", "B", "C"}, []int{2, 3, 4}))
	f.progress.records = []*entities.SectionProgress{
		{Username: "alice", Bank: testBankName, Section: "B", Attempts: 2, BestPercentage: 80, Completed: true},
		{Username: "bob", Bank: testBankName, Section: "A", Attempts: 1},
	}

	overview, err := f.svc.Sections(context.Background(), &entities.User{Username: "alice", Sections: []string{"A", "B"}})
	if err != nil {
		t.Fatalf("Sections: %v", err)
	}

	want := []entities.SectionOverview{
		{Name: "A", Questions: 2},
		{Name: "B", Questions: 3, Attempts: 2, BestPercentage: 80, Completed: true},
	}
	if len(overview) != len(want) {
		t.Fatalf("overview = %+v", overview)
	}
	for i := range want {
		if overview[i] != want[i] {
			t.Errorf("overview[%d] = %+v, want %+v", i, overview[i], want[i])
		}
	}
}

func TestQuizService_Distribution(t *testing.T) {
	f := newQuizFixture(buildBank([]string{"A", "B", "C"}, []int{2, 3, 4}))

	targets := f.svc.Distribution(context.Background(), 10)
	if len(targets) != 3 {
		t.Fatalf("got %d targets", len(targets))
	}
	total := 0
	for _, tg := range targets {
		total += tg.Target
	}
	if total != 10 || targets[0].Target != 4 || targets[2].Available != 4 {
		t.Errorf("targets = %+v", targets)
	}
}

func TestQuizService_ResultsLimit(t *testing.T) {
	f := newQuizFixture("")

	for _, tt := range []struct{ in, want int }{{0, 20}, {5, 5}, {500, 100}} {
		if _, err := f.svc.Results(context.Background(), "alice", tt.in); err != nil {
			t.Fatalf("Results: %v", err)
		}
		if f.results.limit != tt.want {
			t.Errorf("limit %d became %d, want %d", tt.in, f.results.limit, tt.want)
		}
	}
}

func TestQuizService_EndSessionsAndEvict(t *testing.T) {
	f := newQuizFixture(buildBank([]string{"A"}, []int{5}))
	ctx := context.Background()

	for _, name := range []string{"alice", "alice", "bob"} {
		if _, err := f.svc.StartQuiz(ctx, &entities.User{Username: name}, "", 0); err != nil {
			t.Fatalf("StartQuiz: %v", err)
		}
	}

	if n := f.svc.EndSessions("alice"); n != 2 {
		t.Errorf("EndSessions = %d, want 2", n)
	}
	if n := f.svc.EvictStale(); n != 0 {
		t.Errorf("EvictStale right after start = %d, want 0", n)
	}
	if f.store.Len() != 1 {
		t.Errorf("store has %d sessions, want 1", f.store.Len())
	}
}
