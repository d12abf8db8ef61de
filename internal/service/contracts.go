package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/quizbank/internal/domain/entities"
)

// BankSource fetches named files (the question bank, the users file) from wherever they live.
type BankSource interface {
	Name() string
	Fetch(ctx context.Context, name string) (string, error)
}

// SessionStore keeps in-flight quiz attempts.
type SessionStore interface {
	Put(session *entities.QuizSession)
	Get(id string) (*entities.QuizSession, bool)
	Take(id, username string) (*entities.QuizSession, bool)
	Delete(id string)
	DeleteByUser(username string) int
	EvictOlderThan(age time.Duration) int
}

type SubmissionRepository interface {
	SaveSubmission(ctx context.Context, result *entities.QuizResult, report *entities.ScoreReport, passMark float64) error
}

type ResultRepository interface {
	ListByUsername(ctx context.Context, username string, limit int) ([]*entities.QuizResult, error)
}

type ProgressRepository interface {
	ListByUser(ctx context.Context, username, bank string) ([]*entities.SectionProgress, error)
}

type CredentialRepository interface {
	Consume(ctx context.Context, username string, at time.Time) (bool, error)
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}
