package entities

import (
	"time"
)

// Session statuses.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusExpired   = "expired"
)

// QuizSession represents a single quiz attempt.
// It owns the composed questions, answer keys included, for the attempt's lifetime.
// A session is not modified once it is shared; Completed returns a finished copy.
type QuizSession struct {
	ID          string     // unique attempt ID
	Username    string     // quiz taker
	Bank        string     // question bank the quiz was drawn from
	Section     string     // requested section, empty for a whole-bank quiz
	Questions   []Question // composed questions in presentation order
	Status      string     // "active", "completed" or "expired"
	StartedAt   time.Time  // when the quiz was composed
	Deadline    time.Time  // when the time limit runs out
	CompletedAt *time.Time // when answers were submitted (nullable)
}

// NewQuizSession creates an active attempt started at now that must be submitted within duration.
func NewQuizSession(id, username, bank, section string, questions []Question, now time.Time, duration time.Duration) *QuizSession {
	return &QuizSession{
		ID:        id,
		Username:  username,
		Bank:      bank,
		Section:   section,
		Questions: questions,
		Status:    StatusActive,
		StartedAt: now,
		Deadline:  now.Add(duration),
	}
}

// IsActive reports whether the attempt still accepts answers.
func (qs *QuizSession) IsActive() bool {
	return qs.Status == StatusActive
}

// Completed returns a copy of the attempt marked as submitted at at.
// The copy shares the question slice, which is never modified.
func (qs *QuizSession) Completed(at time.Time) *QuizSession {
	done := *qs
	done.Status = StatusCompleted
	done.CompletedAt = &at
	return &done
}

// Elapsed returns the time spent on the attempt up to at.
func (qs *QuizSession) Elapsed(at time.Time) time.Duration {
	d := at.Sub(qs.StartedAt)
	if d < 0 {
		return 0
	}
	return d
}

// QuestionResult is the scored outcome of one question.
type QuestionResult struct {
	ID             int      `json:"id"`
	Section        string   `json:"section"`
	Question       string   `json:"question"`
	Options        []Option `json:"options"`
	CorrectAnswers []string `json:"correct_answers"`
	UserAnswers    []string `json:"user_answers"`
	IsCorrect      bool     `json:"is_correct"`
}

// SectionScore aggregates correctness for one section.
type SectionScore struct {
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// ScoreReport is the outcome of scoring one attempt.
type ScoreReport struct {
	Score      int                     `json:"score"`
	Total      int                     `json:"total"`
	Percentage float64                 `json:"percentage"`
	Results    []QuestionResult        `json:"results"`
	PerSection map[string]SectionScore `json:"per_section"`
}

// QuizResult is the persisted summary of a submitted attempt.
type QuizResult struct {
	ID         int64         `json:"id"`
	SessionID  string        `json:"session_id"`
	Username   string        `json:"username"`
	Bank       string        `json:"bank"`
	Section    string        `json:"section,omitempty"`
	Score      int           `json:"score"`
	Total      int           `json:"total"`
	Percentage float64       `json:"percentage"`
	TimeTaken  time.Duration `json:"time_taken_ns"`
	CreatedAt  time.Time     `json:"created_at"`
}

// NewQuizResult summarises an attempt scored at now.
func NewQuizResult(s *QuizSession, report *ScoreReport, timeTaken time.Duration, now time.Time) *QuizResult {
	return &QuizResult{
		SessionID:  s.ID,
		Username:   s.Username,
		Bank:       s.Bank,
		Section:    s.Section,
		Score:      report.Score,
		Total:      report.Total,
		Percentage: report.Percentage,
		TimeTaken:  timeTaken,
		CreatedAt:  now,
	}
}
